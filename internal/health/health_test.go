package health

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/account_service/internal/cache"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var ok = pingFunc(func(context.Context) error { return nil })

var down = pingFunc(func(context.Context) error { return errors.New("connection refused") })

func TestCheck_AllConnected(t *testing.T) {
	r := NewChecker(ok, ok, "test").Check(context.Background())

	assert.True(t, r.Healthy())
	assert.Equal(t, DepConnected, r.Services.Redis.Status)
	assert.Equal(t, DepConnected, r.Services.Database.Status)
	assert.Equal(t, "running", r.Services.Server.Status)
	assert.Equal(t, "test", r.Environment)
	assert.Regexp(t, regexp.MustCompile(`^\d+ms$`), r.ResponseTime)
	assert.Regexp(t, regexp.MustCompile(`^\d+MB$`), r.Services.Server.Memory.Used)
}

func TestCheck_DatabaseDownCacheUp(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.New(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	r := NewChecker(down, c, "production").Check(context.Background())

	assert.False(t, r.Healthy())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, DepError, r.Services.Database.Status)
	assert.Nil(t, r.Services.Database.ResponseTime)
	assert.Equal(t, DepConnected, r.Services.Redis.Status)
}

func TestCheck_MissingDependencyIsDisconnected(t *testing.T) {
	r := NewChecker(ok, nil, "development").Check(context.Background())
	assert.False(t, r.Healthy())
	assert.Equal(t, DepDisconnected, r.Services.Redis.Status)
}

func TestCheck_SlowDependencyTimesOut(t *testing.T) {
	slow := pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h := NewChecker(ok, slow, "test")
	h.Timeout = 20 * time.Millisecond

	r := h.Check(context.Background())
	assert.Equal(t, DepError, r.Services.Redis.Status)
}

func TestReport_JSONShape(t *testing.T) {
	slow := pingFunc(func(context.Context) error {
		time.Sleep(2 * time.Millisecond)
		return nil
	})
	r := NewChecker(slow, down, "test").Check(context.Background())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	services := m["services"].(map[string]any)
	redis := services["redis"].(map[string]any)
	assert.Equal(t, "error", redis["status"])
	assert.Contains(t, redis, "responseTime")
	assert.Nil(t, redis["responseTime"])

	database := services["database"].(map[string]any)
	assert.Regexp(t, `^\d+ms$`, database["responseTime"])
	assert.Contains(t, m, "uptime")
	assert.Contains(t, m, "timestamp")
}
