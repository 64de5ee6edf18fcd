package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/apperr"
	"github.com/Skotchmaster/account_service/internal/logging"
	"github.com/Skotchmaster/account_service/internal/middleware/auth"
	"github.com/Skotchmaster/account_service/internal/response"
	"github.com/Skotchmaster/account_service/internal/service"
	"github.com/Skotchmaster/account_service/internal/validate"
)

const HeaderDeviceID = "X-Device-ID"

type AuthHTTP struct {
	Svc      *service.AuthService
	Sessions *service.SessionService
	Cookies  Cookies
}

type sessionBody struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
	DeviceID    string    `json:"deviceId"`
}

func (h *AuthHTTP) setSession(c echo.Context, s *service.Session) sessionBody {
	c.SetCookie(h.Cookies.Access(s.AccessToken, s.AccessExp))
	c.SetCookie(h.Cookies.Refresh(s.RefreshToken, s.RefreshExp))
	return sessionBody{
		AccessToken: s.AccessToken,
		ExpiresAt:   s.AccessExp,
		UserID:      s.UserID.String(),
		DeviceID:    s.DeviceID,
	}
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	for _, ck := range h.Cookies.Clear() {
		c.SetCookie(ck)
	}
}

func refreshFromCookie(c echo.Context) string {
	ck, err := c.Cookie(refreshCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	req, ok := validate.Value[validate.SignupRequest](c, validate.Body)
	if !ok {
		return apperr.Validation("Invalid request data")
	}

	user, err := h.Svc.Signup(ctx, service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, user, "User signed up successfully")
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	req, ok := validate.Value[validate.LoginRequest](c, validate.Body)
	if !ok {
		return apperr.Validation("Invalid request data")
	}
	dev, _ := validate.Value[validate.DeviceHeader](c, validate.Header)

	sess, err := h.Svc.Login(ctx, req.Email, req.Password, c.RealIP(), dev.DeviceID)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, h.setSession(c, sess), "Logged in")
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := h.Sessions.Rotate(ctx, refreshFromCookie(c), c.RealIP())
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.IsOperational {
			h.clearSession(c)
		}
		return err
	}
	return response.Success(c, http.StatusOK, h.setSession(c, sess), "Token refreshed")
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Sessions.Revoke(ctx, refreshFromCookie(c)); err != nil {
		return err
	}
	h.clearSession(c)
	return response.Success(c, http.StatusOK, nil, "Logged out")
}

func (h *AuthHTTP) LogoutAll(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	n, err := h.Sessions.RevokeAll(ctx, userID, "logout_all")
	if err != nil {
		return err
	}
	h.clearSession(c)
	logging.FromContext(ctx).Info("logout_all_success", "user_id", userID, "revoked", n)
	return response.Success(c, http.StatusOK, echo.Map{"revoked": n}, "Logged out from every device")
}

func (h *AuthHTTP) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	q, ok := validate.Value[validate.PageQuery](c, validate.Query)
	if !ok {
		return apperr.Validation("Invalid request data")
	}

	sessions, total, err := h.Sessions.Active(ctx, userID, q.Offset(), q.Limit)
	if err != nil {
		return err
	}
	p, err := response.NewPagination(q.Page, q.Limit, total)
	if err != nil {
		return apperr.Internal(err)
	}
	return response.Paginated(c, http.StatusOK, sessions, p, "")
}

func (h *AuthHTTP) RevokeDevice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	p, ok := validate.Value[validate.DeviceParams](c, validate.Params)
	if !ok {
		return apperr.Validation("Invalid request data")
	}

	n, err := h.Sessions.RevokeDevice(ctx, userID, p.DeviceID)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, echo.Map{"revoked": n}, "Session revoked")
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	req, ok := validate.Value[validate.ChangePasswordRequest](c, validate.Body)
	if !ok {
		return apperr.Validation("Invalid request data")
	}

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	h.clearSession(c)
	return response.Success(c, http.StatusOK, nil, "Password changed")
}
