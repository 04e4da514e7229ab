package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
)

const (
	// HeaderUserID заголовок с идентификатором пользователя, выставляется шлюзом
	HeaderUserID = "X-User-ID"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	requestIDKey contextKey = "requestID"
)

// Auth требует заголовок X-User-ID и кладёт пользователя в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserID кладёт пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID достаёт пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
