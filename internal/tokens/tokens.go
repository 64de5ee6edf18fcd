package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	DeviceID string `json:"did,omitempty"`
	jwt.RegisteredClaims
}

// Signer creates and parses the HS256 tokens handed to clients.
type Signer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (s *Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Signer) CreateAccessToken(userID, email string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.AccessTTL)
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return tok, exp, nil
}

// CreateRefreshToken signs a refresh token whose jti is the id of the
// stored session row.
func (s *Signer) CreateRefreshToken(userID, jti, deviceID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.RefreshTTL)
	claims := RefreshClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return tok, exp, nil
}

func (s *Signer) ParseAccessToken(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(raw, &claims, s.AccessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *Signer) ParseRefreshToken(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(raw, &claims, s.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (s *Signer) parse(raw string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
