package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecologic-brindes/ecologic-backend/internal/platform/httpx"
	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

// Middleware guards routes behind a consultant session.
type Middleware struct {
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// RequireConsultant resolves the bearer token and stores the session in the
// request context; requests without a live session get 401.
func (m Middleware) RequireConsultant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Sessions.Resolve(r.Context(), BearerToken(r))
		if err != nil {
			if !errors.Is(err, shared.ErrSessionExpired) {
				m.Logger.Error("resolve session failed", slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
