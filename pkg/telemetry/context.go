package telemetry

import "context"

type contextKey string

// Context keys read by the telemetry handlers.
const (
	ContextKeyUserID        contextKey = "user_id"
	ContextKeySessionID     contextKey = "session_id"
	ContextKeyRequestSource contextKey = "request_source"
)

// WithRequestSource tags ctx with where a request came from, e.g. "cli" or "http".
func WithRequestSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestSource, source)
}

// WithSession tags ctx with a user and session id.
func WithSession(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

type requestInfo struct {
	userID, sessionID, requestSource string
}

func requestInfoFrom(ctx context.Context) requestInfo {
	var info requestInfo
	if ctx == nil {
		return info
	}
	if v, ok := ctx.Value(ContextKeyUserID).(string); ok {
		info.userID = v
	}
	if v, ok := ctx.Value(ContextKeySessionID).(string); ok {
		info.sessionID = v
	}
	if v, ok := ctx.Value(ContextKeyRequestSource).(string); ok {
		info.requestSource = v
	}
	return info
}
