package models

import "context"

type contextKey string

// SessionContextKey ключ Session в контексте запроса.
const SessionContextKey contextKey = "session"

// ContextWithSession кладет сессию в контекст.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// GetSessionFromContext извлекает сессию, положенную middleware аутентификации.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(Session)
	return s, ok
}
