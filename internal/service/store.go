package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/account_service/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type TokenStore interface {
	IssueRefreshToken(ctx context.Context, next *models.RefreshToken) (int64, error)
	FindRefreshToken(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) (bool, error)
	RevokeDeviceTokens(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error)
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) (int64, error)
	ListActiveTokens(ctx context.Context, userID uuid.UUID, now time.Time, offset, limit int) ([]models.RefreshToken, int64, error)
	RotateRefreshToken(ctx context.Context, oldID uuid.UUID, oldHash string, now time.Time, next *models.RefreshToken) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) (bool, error)
}

func utcNow() time.Time { return time.Now().UTC() }
