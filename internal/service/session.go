package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/account_service/internal/apperr"
	"github.com/Skotchmaster/account_service/internal/events"
	"github.com/Skotchmaster/account_service/internal/logging"
	"github.com/Skotchmaster/account_service/internal/models"
	"github.com/Skotchmaster/account_service/internal/repo"
	"github.com/Skotchmaster/account_service/internal/tokens"
)

// DefaultDeviceID is used when a client does not identify its device.
const DefaultDeviceID = "default"

type SessionService struct {
	Tokens TokenStore
	Users  UserStore
	Signer *tokens.Signer
	Events events.Publisher
	Topic  string
	Now    func() time.Time
}

type Session struct {
	UserID       uuid.UUID
	DeviceID     string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}

func deviceOrDefault(deviceID string) string {
	if deviceID == "" {
		return DefaultDeviceID
	}
	return deviceID
}

func invalidRefresh() *apperr.Error {
	return apperr.NotAuthenticated("Invalid or expired refresh token")
}

// Issue opens a session for one device. A previous session on the same
// device is revoked in the same transaction; sessions on other devices are
// untouched.
func (s *SessionService) Issue(ctx context.Context, user *models.User, ip, deviceID string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "session.issue", "user_id", user.ID)
	deviceID = deviceOrDefault(deviceID)

	row, raw, err := s.newToken(user.ID, ip, deviceID)
	if err != nil {
		l.Error("issue_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}
	replaced, err := s.Tokens.IssueRefreshToken(ctx, row)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("")
		}
		l.Error("issue_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}
	if replaced > 0 {
		l.Info("device_session_replaced", "device_id", deviceID, "revoked", replaced)
	}

	return s.session(user, row, raw)
}

// Rotate exchanges a refresh token for a new pair. Presenting a token that
// was already revoked is treated as theft: every session of the user is
// revoked.
func (s *SessionService) Rotate(ctx context.Context, raw, ip string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "session.rotate")
	now := s.now()

	row, err := s.lookup(ctx, raw)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", err.Error())
		return nil, err
	}
	l = l.With("user_id", row.UserID, "device_id", row.DeviceID)

	if row.IsRevoked {
		n, rerr := s.Tokens.RevokeUserTokens(ctx, row.UserID)
		if rerr != nil {
			l.Error("refresh_failed", "status", 500, "reason", "cannot revoke after reuse", "error", rerr)
			return nil, apperr.Internal(rerr)
		}
		l.Warn("refresh_token_reuse", "status", 401, "revoked", n)
		s.publish(ctx, row.UserID, row.DeviceID, "reuse_detected")
		return nil, apperr.NotAuthenticated("Refresh token reuse detected")
	}
	if !row.Usable(now) {
		l.Warn("refresh_failed", "status", 401, "reason", "expired")
		return nil, invalidRefresh()
	}

	user, err := s.Users.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalidRefresh()
		}
		return nil, apperr.Internal(err)
	}
	if !user.IsActive {
		l.Warn("refresh_failed", "status", 401, "reason", "inactive account")
		return nil, apperr.NotAuthorized("Account is disabled")
	}

	if ip == "" {
		ip = row.IPAddress
	}
	next, nextRaw, err := s.newToken(user.ID, ip, row.DeviceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.Tokens.RotateRefreshToken(ctx, row.ID, row.TokenHash, now, next); err != nil {
		if errors.Is(err, repo.ErrTokenNotUsable) {
			l.Warn("refresh_failed", "status", 401, "reason", "lost rotation race")
			return nil, invalidRefresh()
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	l.Info("refresh_success")
	return s.session(user, next, nextRaw)
}

// Revoke ends the session of the presented token only. Unknown or malformed tokens
// are ignored so logout is idempotent.
func (s *SessionService) Revoke(ctx context.Context, raw string) error {
	l := logging.FromContext(ctx).With("svc", "session.revoke")

	row, err := s.lookup(ctx, raw)
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.IsOperational {
			l.Info("logout_noop", "reason", ae.Message)
			return nil
		}
		return err
	}

	revoked, err := s.Tokens.RevokeRefreshToken(ctx, row.ID)
	if err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return apperr.Internal(err)
	}
	if revoked {
		s.publish(ctx, row.UserID, row.DeviceID, "logout")
	}
	l.Info("logout_success", "user_id", row.UserID, "device_id", row.DeviceID, "revoked", revoked)
	return nil
}

func (s *SessionService) RevokeDevice(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	n, err := s.Tokens.RevokeDeviceTokens(ctx, userID, deviceID)
	if err != nil {
		logging.FromContext(ctx).Error("revoke_device_failed", "status", 500, "error", err)
		return 0, apperr.Internal(err)
	}
	if n > 0 {
		s.publish(ctx, userID, deviceID, "device_revoked")
	}
	return n, nil
}

func (s *SessionService) RevokeAll(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	n, err := s.Tokens.RevokeUserTokens(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("revoke_all_failed", "status", 500, "error", err)
		return 0, apperr.Internal(err)
	}
	s.publish(ctx, userID, "", reason)
	return n, nil
}

func (s *SessionService) Active(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Session, int64, error) {
	rows, total, err := s.Tokens.ListActiveTokens(ctx, userID, s.now(), offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_sessions_failed", "status", 500, "error", err)
		return nil, 0, apperr.Internal(err)
	}
	out := make([]models.Session, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Session())
	}
	return out, total, nil
}

// lookup resolves a raw refresh token to its stored row. The signature, the
// row id carried in jti, the owner and the stored hash must all agree.
func (s *SessionService) lookup(ctx context.Context, raw string) (*models.RefreshToken, error) {
	if raw == "" {
		return nil, apperr.NotAuthenticated("Missing refresh token")
	}
	claims, err := s.Signer.ParseRefreshToken(raw)
	if err != nil {
		return nil, invalidRefresh()
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, invalidRefresh()
	}
	row, err := s.Tokens.FindRefreshToken(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalidRefresh()
		}
		return nil, apperr.Internal(err)
	}
	if row.TokenHash != tokens.Sha256Hex(raw) || row.UserID.String() != claims.Subject {
		return nil, invalidRefresh()
	}
	return row, nil
}

func (s *SessionService) newToken(userID uuid.UUID, ip, deviceID string) (*models.RefreshToken, string, error) {
	id := uuid.New()
	raw, exp, err := s.Signer.CreateRefreshToken(userID.String(), id.String(), deviceID)
	if err != nil {
		return nil, "", err
	}
	return &models.RefreshToken{
		ID:        id,
		UserID:    userID,
		IPAddress: ip,
		DeviceID:  deviceID,
		TokenHash: tokens.Sha256Hex(raw),
		ExpiresAt: exp.UTC(),
	}, raw, nil
}

func (s *SessionService) session(user *models.User, row *models.RefreshToken, raw string) (*Session, error) {
	access, accessExp, err := s.Signer.CreateAccessToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{
		UserID:       user.ID,
		DeviceID:     row.DeviceID,
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: raw,
		RefreshExp:   row.ExpiresAt,
	}, nil
}

func (s *SessionService) publish(ctx context.Context, userID uuid.UUID, deviceID, reason string) {
	if s.Events == nil {
		return
	}
	ev := events.Event{
		Type:       events.SessionRevoked,
		UserID:     userID.String(),
		DeviceID:   deviceID,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if err := s.Events.PublishEvent(ctx, s.Topic, userID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "event", ev.Type, "error", err)
	}
}
