// Package logging configures structured logging for foodapp using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Components name the subsystems that log. Each is attached as the
// "component" field.
const (
	ComponentCache   = "cache"
	ComponentSweeper = "sweeper"
	ComponentService = "service"
	ComponentServer  = "server"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	// Unknown values select info.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel converts a level name to zerolog.Level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request cache traffic
//   - Cache hit/miss with region and key
//   - Scheduler wake-ups
//
// Info: normal operation events
//   - Entity created, updated or deleted
//   - Region sweeps with job and duration
//   - User cache warm-up
//   - Server startup/shutdown
//
// Warn: degraded but serving
//   - Backend get/set/delete/clear failures (read becomes a miss)
//   - Undecodable cache entries
//   - Sweeper stop timeout
//
// Error: attention required
//   - A failed refresh whose evict also failed (stale entry possible)
//   - Startup failures (config, Redis ping)
//
// Context Fields:
//   - component: subsystem (cache, sweeper, foods, restaurants, orders, users, server)
//   - region: cache region name
//   - key: key within the region
//   - job: sweep job name
//   - operation: failed backend operation
//   - food_id, restaurant_id, order_id, user_id: entity ids
