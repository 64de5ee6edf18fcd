package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/health"
)

type HealthHTTP struct {
	Checker *health.Checker
}

func (h *HealthHTTP) Health(c echo.Context) error {
	report := h.Checker.Check(c.Request().Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}

func apiIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "API is working"})
}
