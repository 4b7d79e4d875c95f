// Package audit records privileged mutations (event create/update/
// delete, signups, admin bootstrap) as structured log entries so that
// who-did-what questions can be answered after the fact.
package audit

import (
	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("log", "audit").Logger()}
}

func (l *Logger) log(status, action, actor, resourceType, resourceID string, details map[string]string) {
	if l == nil {
		return
	}
	event := l.logger.Info().
		Str("action", action).
		Str("actor", actor).
		Str("status", status)
	if resourceType != "" {
		event = event.Str("resource_type", resourceType)
	}
	if resourceID != "" {
		event = event.Str("resource_id", resourceID)
	}
	for key, value := range details {
		event = event.Str(key, value)
	}
	event.Msg("audit")
}

// LogSuccess records a completed privileged operation.
func (l *Logger) LogSuccess(action, actor, resourceType, resourceID string, details map[string]string) {
	l.log("success", action, actor, resourceType, resourceID, details)
}

// LogFailure records a privileged operation that was attempted but denied or failed.
func (l *Logger) LogFailure(action, actor, resourceType, resourceID string, details map[string]string) {
	l.log("failure", action, actor, resourceType, resourceID, details)
}
