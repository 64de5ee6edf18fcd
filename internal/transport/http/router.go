package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/account_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/account_service/internal/middleware/logging"
	"github.com/Skotchmaster/account_service/internal/tokens"
	"github.com/Skotchmaster/account_service/internal/validate"
)

type Deps struct {
	Logger       *slog.Logger
	FrontendURL  string
	BodyLimit    string
	IsProduction bool

	Signer *tokens.Signer
	Auth   *AuthHTTP
	Health *HealthHTTP
}

// New builds an echo instance with the middleware chain, error handler and
// routes installed.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(d.IsProduction, d.Logger)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.RequestID(),
		loggingmw.RequestLogger(d.Logger),
		middleware.RecoverWithConfig(middleware.RecoverConfig{DisableErrorHandler: true}),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{d.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, HeaderDeviceID},
			AllowCredentials: true,
		}),
		middleware.Gzip(),
	)
	if d.BodyLimit != "" {
		e.Use(middleware.BodyLimit(d.BodyLimit))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	v1 := e.Group("/api/v1")
	v1.GET("", apiIndex)
	v1.GET("/health", d.Health.Health)

	a := v1.Group("/auth")
	a.POST("/signup", d.Auth.Signup, validate.Request[validate.SignupRequest](validate.Body))
	a.POST("/login", d.Auth.Login,
		validate.Request[validate.DeviceHeader](validate.Header),
		validate.Request[validate.LoginRequest](validate.Body),
	)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.Logout)

	// Route level rather than a group: group middleware would also guard
	// the not-found catch-all echo registers for it.
	login := auth.RequireLogin(d.Signer)
	a.GET("/sessions", d.Auth.ListSessions, login, validate.Request[validate.PageQuery](validate.Query))
	a.DELETE("/sessions/:deviceId", d.Auth.RevokeDevice, login, validate.Request[validate.DeviceParams](validate.Params))
	a.POST("/logout-all", d.Auth.LogoutAll, login)
	a.POST("/password", d.Auth.ChangePassword, login, validate.Request[validate.ChangePasswordRequest](validate.Body))

	e.RouteNotFound("/*", RouteNotFound)
}
