package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/account_service/internal/logging"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestRequestLogger_InjectsLoggerAndLogsSuccess(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
	e.GET("/ping", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	first := strings.Split(buf.String(), "\n")[0]
	assert.Contains(t, first, `"msg":"inside"`)
	assert.Contains(t, first, `"request_id":"rid-1"`)

	line := lastLine(t, &buf)
	assert.Equal(t, "INFO", line["level"])
	assert.EqualValues(t, 200, line["status"])
	assert.Equal(t, "/ping", line["path"])
}

func TestRequestLogger_RendersErrorOnce(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	calls := 0
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		calls++
		_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.POST("/x", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "dup")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, calls)
	line := lastLine(t, &buf)
	assert.Equal(t, "WARN", line["level"])
	assert.EqualValues(t, 409, line["status"])
	assert.Contains(t, line["error"], "dup")
}

func TestRequestLogger_FailureLineCarriesCause(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.NoContent(http.StatusInternalServerError)
	}
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("dial tcp 10.0.0.5:5432: connection refused")
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	line := lastLine(t, &buf)
	assert.Equal(t, "ERROR", line["level"])
	assert.EqualValues(t, 500, line["status"])
	assert.Equal(t, "dial tcp 10.0.0.5:5432: connection refused", line["error"])
}
