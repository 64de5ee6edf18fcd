package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hashed, err := h.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hashed)

	ok, err := h.CheckPassword(hashed, "Str0ng!Pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.CheckPassword(hashed, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.HashPassword("same")
	require.NoError(t, err)
	b, err := h.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedHash(t *testing.T) {
	ok, err := NewHasher(bcrypt.MinCost).CheckPassword("not-a-hash", "x")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNewHasher_DefaultsLowCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}

func TestHasher_LongestAcceptedPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	pw := "Str0ng!" + strings.Repeat("a", 65)
	require.Len(t, pw, 72)

	hashed, err := h.HashPassword(pw)
	require.NoError(t, err)
	ok, err := h.CheckPassword(hashed, pw)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = h.HashPassword(pw + "a")
	assert.Error(t, err)
}
