// logging.go -- Attempt-scoped logging helpers.
//
// Wraps slog with the attempt id, provider, and current flow state so every
// line of one login can be grepped out of the log.
package auth

import (
	"log/slog"
)

// attemptAttrs returns standard attempt-scoped attributes for logging.
func attemptAttrs(a *attempt) []any {
	return []any{
		"attempt_id", a.id.String(),
		"provider", a.provider,
		"state", a.state.String(),
	}
}

// logDebug logs at debug level with automatic attempt context.
func logDebug(a *attempt, msg string, args ...any) {
	slog.Debug(msg, append(attemptAttrs(a), args...)...)
}

// logInfo logs at info level with automatic attempt context.
func logInfo(a *attempt, msg string, args ...any) {
	slog.Info(msg, append(attemptAttrs(a), args...)...)
}

// logWarn logs at warn level with automatic attempt context.
func logWarn(a *attempt, msg string, args ...any) {
	slog.Warn(msg, append(attemptAttrs(a), args...)...)
}
