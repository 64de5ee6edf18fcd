package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(now time.Time) *Signer {
	return &Signer{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Now:           func() time.Time { return now },
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Now()
	s := newSigner(now)

	tok, exp, err := s.CreateAccessToken("user-1", "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), exp, time.Second)

	claims, err := s.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	s := newSigner(time.Now())
	jti := uuid.NewString()

	tok, _, err := s.CreateRefreshToken("user-1", jti, "phone")
	require.NoError(t, err)

	claims, err := s.ParseRefreshToken(tok)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "phone", claims.DeviceID)
}

func TestParse_RejectsWrongSecretAndKind(t *testing.T) {
	s := newSigner(time.Now())
	access, _, err := s.CreateAccessToken("user-1", "a@b.c")
	require.NoError(t, err)

	_, err = s.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newSigner(time.Now())
	other.AccessSecret = []byte("other")
	_, err = other.ParseAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	tok, _, err := newSigner(issued).CreateAccessToken("user-1", "a@b.c")
	require.NoError(t, err)

	_, err = newSigner(time.Now()).ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	s := newSigner(time.Now())
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("access"))
	require.NoError(t, err)

	_, err = s.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(""))
	assert.Len(t, Sha256Hex("token"), 64)
}
