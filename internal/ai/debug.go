package ai

import (
	"log/slog"
	"sync/atomic"
)

// debugLoggingEnabled gates per-tick debug logs of the ship controllers.
// Ticks run for every ship every frame, so the check must be a single atomic load
// instead of asking the slog handler for its level.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables controller debug logging.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if controller debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}

// debugLog emits a debug record only when controller debug logging is enabled.
// Callers still guard expensive argument construction with IsDebugEnabled.
func debugLog(msg string, args ...any) {
	if !debugLoggingEnabled.Load() {
		return
	}
	slog.Debug(msg, args...)
}
