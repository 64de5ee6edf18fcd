package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/account_service/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

func revoke(db *gorm.DB) *gorm.DB {
	return db.Model(&models.RefreshToken{}).
		Where("is_revoked = ?", false).
		Update("is_revoked", true)
}

// RevokeRefreshToken revokes one token and reports whether this call was the
// one that revoked it.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, id uuid.UUID) (bool, error) {
	res := revoke(r.DB.WithContext(ctx).Where("id = ?", id))
	if res.Error != nil {
		return false, fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RevokeDeviceTokens revokes every live token of one user on one device.
// Other devices keep their sessions.
func (r *GormRepo) RevokeDeviceTokens(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	res := revoke(r.DB.WithContext(ctx).Where("user_id = ? AND device_id = ?", userID, deviceID))
	if res.Error != nil {
		return 0, fmt.Errorf("revoke device tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepo) RevokeUserTokens(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := revoke(r.DB.WithContext(ctx).Where("user_id = ?", userID))
	if res.Error != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepo) ListActiveTokens(ctx context.Context, userID uuid.UUID, now time.Time, offset, limit int) ([]models.RefreshToken, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, now)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tokens: %w", err)
	}

	var tokens []models.RefreshToken
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tokens).Error; err != nil {
		return nil, 0, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, total, nil
}

// IssueRefreshToken replaces the live session of next's device with next.
// The owning user row is locked first, so concurrent issues for one user run
// one after the other and at most one token per device stays live. It
// reports how many earlier tokens were revoked.
func (r *GormRepo) IssueRefreshToken(ctx context.Context, next *models.RefreshToken) (int64, error) {
	var revoked int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", next.UserID).First(&owner).Error; err != nil {
			return notFound(err)
		}

		txRepo := New(tx)
		n, err := txRepo.RevokeDeviceTokens(ctx, next.UserID, next.DeviceID)
		if err != nil {
			return err
		}
		if err := txRepo.CreateRefreshToken(ctx, next); err != nil {
			return err
		}
		revoked = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return revoked, nil
}

// RotateRefreshToken revokes the presented token and stores next in one
// transaction. The revoke only matches a live row with the given hash, so of
// two concurrent rotations of the same token exactly one succeeds.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldID uuid.UUID, oldHash string, now time.Time, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := revoke(tx.Where("id = ? AND token_hash = ? AND expires_at > ?", oldID, oldHash, now))
		if res.Error != nil {
			return fmt.Errorf("revoke old token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotUsable
		}
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("create next token: %w", err)
		}
		return nil
	})
}
