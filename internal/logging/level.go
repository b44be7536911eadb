package logging

import (
	"log/slog"
	"strings"
)

// DefaultLevel keeps the CLI quiet: only renderer failures and worse reach
// stderr unless the user asks for more.
const DefaultLevel = slog.LevelWarn

// LevelNames lists the accepted log_level values in increasing severity.
var LevelNames = []string{"debug", "info", "warn", "error"}

// ParseLevel maps a log_level value to a slog.Level. Matching ignores case
// and surrounding space, and "warning" is accepted for "warn". Unknown
// values return (DefaultLevel, false).
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return DefaultLevel, false
	}
}
