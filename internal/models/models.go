package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName     string    `gorm:"size:100;not null"             json:"firstName"`
	LastName      string    `gorm:"size:100;not null"             json:"lastName"`
	PasswordHash  string    `gorm:"size:255;not null"             json:"-"`
	EmailVerified bool      `gorm:"not null"                      json:"emailVerified"`
	IsActive      bool      `gorm:"not null"                      json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewUser returns an active, unverified user.
func NewUser(email, firstName, lastName, passwordHash string) *User {
	return &User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProjection is the public view of a user. It has no credential fields.
type UserProjection struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	EmailVerified bool      `json:"emailVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) Projection() *UserProjection {
	return &UserProjection{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"      json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"   json:"-"`
	IPAddress string    `gorm:"size:45;not null"              json:"ipAddress"`
	DeviceID  string    `gorm:"size:255;not null;index"       json:"deviceId"`
	IsRevoked bool      `gorm:"not null"                      json:"isRevoked"`
	TokenHash string    `gorm:"size:255;not null;index"       json:"-"`
	ExpiresAt time.Time `gorm:"not null"                      json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Usable reports whether the token may still be exchanged for a new one.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}

// Revoke is terminal. There is no way back to an unrevoked token.
func (t *RefreshToken) Revoke() { t.IsRevoked = true }

// ExtendExpiry moves the expiry forward. Revocation is left untouched.
func (t *RefreshToken) ExtendExpiry(until time.Time) {
	if until.After(t.ExpiresAt) {
		t.ExpiresAt = until
	}
}

// Session is what a user sees when listing their active tokens.
type Session struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  string    `json:"deviceId"`
	IPAddress string    `json:"ipAddress"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *RefreshToken) Session() Session {
	return Session{
		ID:        t.ID,
		DeviceID:  t.DeviceID,
		IPAddress: t.IPAddress,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}
