package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/account_service/internal/config"
)

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNew_FailsFastWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), Options{Addr: addr})
	assert.ErrorContains(t, err, "ping redis")
}

func TestNew_Auth(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireUserAuth("app", "secret")

	_, err := New(context.Background(), Options{Addr: mr.Addr(), Username: "app", Password: "wrong"})
	assert.Error(t, err)

	c, err := New(context.Background(), Options{Addr: mr.Addr(), Username: "app", Password: "secret"})
	require.NoError(t, err)
	_ = c.Close()
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{Environment: config.EnvProduction}
	cfg.Redis = config.Redis{Host: "cache", Port: 6380, Username: "u", Password: "p"}

	o := OptionsFromConfig(cfg)
	assert.Equal(t, "cache:6380", o.Addr)
	assert.True(t, o.TLS)

	cfg.Environment = config.EnvDevelopment
	assert.False(t, OptionsFromConfig(cfg).TLS)
}
