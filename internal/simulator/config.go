package simulator

import (
	"os"
	"strconv"
	"time"

	"github.com/numan98khan/igflow-simulator/internal/reconcile"
)

// Config carries the simulator's policy knobs. The defaults match the
// behavior operators are used to: one poll per second for fifteen
// seconds, and a four-second echo-correlation window.
type Config struct {
	PollInterval    time.Duration // delay between scheduled re-fetches
	PollAttempts    int           // re-fetch budget per send
	DuplicateWindow time.Duration // optimistic-echo correlation tolerance
	SessionTTL      time.Duration // idle controllers are dropped after this
}

// DefaultConfig returns the stock policy values
func DefaultConfig() Config {
	return Config{
		PollInterval:    time.Second,
		PollAttempts:    15,
		DuplicateWindow: reconcile.DefaultDuplicateWindow,
		SessionTTL:      30 * time.Minute,
	}
}

// ConfigFromEnv builds a Config from SIM_* environment variables,
// falling back to defaults for anything unset or unparsable
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := envInt("SIM_POLL_INTERVAL_MS"); v > 0 {
		cfg.PollInterval = time.Duration(v) * time.Millisecond
	}
	if v := envInt("SIM_POLL_ATTEMPTS"); v > 0 {
		cfg.PollAttempts = v
	}
	if v := envInt("SIM_DUPLICATE_WINDOW_MS"); v > 0 {
		cfg.DuplicateWindow = time.Duration(v) * time.Millisecond
	}
	if v := envInt("SIM_SESSION_TTL_MIN"); v > 0 {
		cfg.SessionTTL = time.Duration(v) * time.Minute
	}

	return cfg
}

func envInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
