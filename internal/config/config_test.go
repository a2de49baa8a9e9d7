package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GILII_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.Addr)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, 30*time.Second, cfg.TurnTimeout)
	require.Equal(t, 60*time.Second, cfg.IdleTimeout)
	require.Equal(t, 3*time.Second, cfg.NextRoundDelay)
	require.Equal(t, 5*time.Minute, cfg.RoomSweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GILII_JWT_SECRET", "s3cret")
	t.Setenv("GILII_ADDR", ":9999")
	t.Setenv("GILII_REDIS_ADDR", "localhost:6379")
	t.Setenv("GILII_TURN_TIMEOUT", "10s")
	t.Setenv("GILII_NEXT_ROUND_DELAY", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 10*time.Second, cfg.TurnTimeout)
	require.Equal(t, 500*time.Millisecond, cfg.NextRoundDelay)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("GILII_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("GILII_JWT_SECRET", "s3cret")
	t.Setenv("GILII_TURN_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("GILII_TURN_TIMEOUT", "-5s")
	_, err = Load()
	require.Error(t, err)
}
