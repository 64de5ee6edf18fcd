package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/account_service/internal/apperr"
	"github.com/Skotchmaster/account_service/internal/events"
	"github.com/Skotchmaster/account_service/internal/logging"
	"github.com/Skotchmaster/account_service/internal/models"
	"github.com/Skotchmaster/account_service/internal/repo"
	"github.com/Skotchmaster/account_service/internal/validate"
)

type AuthService struct {
	Users    UserStore
	Hasher   PasswordHasher
	Sessions *SessionService
	Events   events.Publisher
	Topic    string
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Signup creates an account. The input is expected to have passed the
// signup schema already; the email is normalized again so direct callers
// get the same uniqueness semantics.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.UserProjection, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")
	email := validate.NormalizeEmail(in.Email)

	_, err := s.Users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		l.Warn("signup_failed", "status", 409, "reason", "email already exists")
		return nil, apperr.EmailAlreadyExists()
	case !errors.Is(err, repo.ErrNotFound):
		l.Error("signup_failed", "status", 500, "reason", "cannot check existing user", "error", err)
		return nil, apperr.Internal(err)
	}

	pwHash, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperr.Internal(err)
	}

	user := models.NewUser(email, in.FirstName, in.LastName, pwHash)
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			l.Warn("signup_failed", "status", 409, "reason", "email already exists")
			return nil, apperr.EmailAlreadyExists()
		}
		l.Error("signup_failed", "status", 500, "reason", "cannot create user", "error", err)
		return nil, apperr.Internal(err)
	}

	s.publish(ctx, user.ID.String(), events.Event{
		Type:       events.UserSignedUp,
		UserID:     user.ID.String(),
		Email:      user.Email,
		OccurredAt: user.CreatedAt,
	})
	l.Info("signup_success", "user_id", user.ID)
	return user.Projection(), nil
}

// Login checks credentials and opens a session for the device.
func (s *AuthService) Login(ctx context.Context, email, password, ip, deviceID string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindUserByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, apperr.NotAuthenticated("Invalid email or password")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Internal(err)
	}

	ok, err := s.Hasher.CheckPassword(user.PasswordHash, password)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot compare password", "error", err)
		return nil, apperr.Internal(err)
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, apperr.NotAuthenticated("Invalid email or password")
	}
	if !user.IsActive {
		l.Warn("login_failed", "status", 401, "reason", "inactive account", "user_id", user.ID)
		return nil, apperr.NotAuthorized("Account is disabled")
	}

	sess, err := s.Sessions.Issue(ctx, user, ip, deviceID)
	if err != nil {
		return nil, err
	}
	l.Info("login_success", "user_id", user.ID)
	return sess, nil
}

// ChangePassword replaces the password and revokes every session of the
// user, so other devices have to log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("")
		}
		return apperr.Internal(err)
	}

	ok, err := s.Hasher.CheckPassword(user.PasswordHash, current)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		l.Warn("change_password_failed", "status", 401, "reason", "wrong current password")
		return apperr.NotAuthenticated("Current password is incorrect")
	}

	pwHash, err := s.Hasher.HashPassword(next)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.Users.UpdatePasswordHash(ctx, userID, pwHash); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return apperr.Internal(err)
	}

	if _, err := s.Sessions.RevokeAll(ctx, userID, "password_changed"); err != nil {
		return err
	}
	l.Info("change_password_success")
	return nil
}

func (s *AuthService) publish(ctx context.Context, key string, ev events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, s.Topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "event", ev.Type, "error", err)
	}
}
