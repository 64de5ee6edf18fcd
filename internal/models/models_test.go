package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser("ada@example.com", "Ada", "Lovelace", "$2a$hash")
	assert.True(t, u.IsActive)
	assert.False(t, u.EmailVerified)

	require.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)

	id := u.ID
	require.NoError(t, u.BeforeCreate(nil))
	assert.Equal(t, id, u.ID)
}

func TestUser_ProjectionHasNoPasswordHash(t *testing.T) {
	u := NewUser("ada@example.com", "Ada", "Lovelace", "$2a$secret-hash")
	u.ID = uuid.New()

	for _, v := range []any{u, u.Projection()} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "secret-hash")
		assert.NotContains(t, string(b), "passwordHash")
	}

	var m map[string]any
	b, _ := json.Marshal(u.Projection())
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "ada@example.com", m["email"])
	assert.Equal(t, true, m["isActive"])
}

func TestRefreshToken_Usable(t *testing.T) {
	now := time.Now()
	tok := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(time.Hour)), "expiry is exclusive")
	assert.False(t, tok.Usable(now.Add(2*time.Hour)))

	tok.Revoke()
	assert.False(t, tok.Usable(now))
}

func TestRefreshToken_ExtendNeverUnrevokes(t *testing.T) {
	now := time.Now()
	tok := &RefreshToken{ExpiresAt: now.Add(time.Minute)}
	tok.Revoke()

	tok.ExtendExpiry(now.Add(24 * time.Hour))
	assert.True(t, tok.IsRevoked)
	assert.False(t, tok.Usable(now))
	assert.Equal(t, now.Add(24*time.Hour), tok.ExpiresAt)

	tok.ExtendExpiry(now)
	assert.Equal(t, now.Add(24*time.Hour), tok.ExpiresAt, "expiry never moves backwards")
}
