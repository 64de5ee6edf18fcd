package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/apperr"
	"github.com/Skotchmaster/account_service/internal/logging"
	"github.com/Skotchmaster/account_service/internal/response"
)

// ConvertError turns any error into an application error. Application
// errors pass through unchanged. Framework HTTP errors keep their status;
// client faults among them are operational. Everything else is an
// unexpected failure.
func ConvertError(err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		if code, ok := clientCode(he.Code); ok {
			status := he.Code
			if code == apperr.CodeRouteNotFound {
				// 405 included: the route does not exist for this method.
				status = code.HTTPStatus()
				msg = code.DefaultMessage()
			}
			return &apperr.Error{StatusCode: status, Message: msg, Code: code, IsOperational: true, Err: err}
		}
		return &apperr.Error{StatusCode: he.Code, Message: msg, Code: apperr.CodeInternal, Err: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	return &apperr.Error{
		StatusCode: http.StatusInternalServerError,
		Message:    msg,
		Code:       apperr.CodeInternal,
		Err:        err,
	}
}

func clientCode(status int) (apperr.Code, bool) {
	switch {
	case status == http.StatusUnauthorized:
		return apperr.CodeUserNotAuthenticated, true
	case status == http.StatusForbidden:
		return apperr.CodeUserNotAuthorized, true
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return apperr.CodeRouteNotFound, true
	case status >= 400 && status < 500:
		return apperr.CodeValidation, true
	default:
		return "", false
	}
}

// NewErrorHandler renders every error through the error envelope. In
// production, non-operational errors leave as a bare 500.
func NewErrorHandler(isProduction bool, base *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		l := base
		if rl := logging.FromContext(c.Request().Context()); rl != slog.Default() {
			l = rl
		}

		ae := ConvertError(err)
		if ae.IsOperational {
			l.Warn("operational_error", "status", ae.StatusCode, "code", ae.Code, "message", ae.Message)
		} else {
			l.Error("unexpected_error", "status", ae.StatusCode, "code", ae.Code, "message", ae.Message, "error", ae.Err)
		}

		status, message, code := ae.StatusCode, ae.Message, ae.Code
		if isProduction && !ae.IsOperational {
			status = http.StatusInternalServerError
			message = apperr.CodeInternal.DefaultMessage()
			code = apperr.CodeInternal
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = response.Error(c, status, message, string(code))
		}
		if werr != nil {
			l.Error("error_response_failed", "error", werr)
		}
	}
}

// RouteNotFound answers every path no route matched.
func RouteNotFound(echo.Context) error {
	return apperr.RouteNotFound()
}
