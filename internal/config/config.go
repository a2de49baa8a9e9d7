// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the server needs to run. JWTSecret is the only
// required setting.
type Config struct {
	Addr              string
	JWTSecret         string
	RedisAddr         string
	TurnTimeout       time.Duration
	IdleTimeout       time.Duration
	NextRoundDelay    time.Duration
	RoomSweepInterval time.Duration
}

// Load reads configuration from GILII_* environment variables.
func Load() (Config, error) {
	cfg := Config{
		Addr:              getenv("GILII_ADDR", ":4000"),
		JWTSecret:         os.Getenv("GILII_JWT_SECRET"),
		RedisAddr:         os.Getenv("GILII_REDIS_ADDR"),
		TurnTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		NextRoundDelay:    3 * time.Second,
		RoomSweepInterval: 5 * time.Minute,
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("GILII_JWT_SECRET is required")
	}

	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"GILII_TURN_TIMEOUT", &cfg.TurnTimeout},
		{"GILII_IDLE_TIMEOUT", &cfg.IdleTimeout},
		{"GILII_NEXT_ROUND_DELAY", &cfg.NextRoundDelay},
		{"GILII_ROOM_SWEEP_INTERVAL", &cfg.RoomSweepInterval},
	} {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("%s: invalid duration %q", d.env, raw)
		}
		*d.dst = parsed
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
