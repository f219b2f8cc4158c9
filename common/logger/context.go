package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and the worker enrich the context once; every slog call made with that
// context then carries workspace/project/task ids without repeating them.
type LogFields struct {
	UserID      *string // Caller identity (identity-provider subject)
	WorkspaceID *string
	ProjectID   *string
	TaskID      *string
	MessageID   *string // Redis stream message ID
	EventName   *string // Event bus name, e.g. "app/task.assigned"
	RequestID   *string
	Component   string // e.g. "planboard.worker"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.UserID != nil {
		result.UserID = new.UserID
	}
	if new.WorkspaceID != nil {
		result.WorkspaceID = new.WorkspaceID
	}
	if new.ProjectID != nil {
		result.ProjectID = new.ProjectID
	}
	if new.TaskID != nil {
		result.TaskID = new.TaskID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.EventName != nil {
		result.EventName = new.EventName
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TaskID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
