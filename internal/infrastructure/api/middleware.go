package api

import (
	"net/http"
	"strings"

	"jarvis-integrations-layer/internal/domain"
)

// userAuthMiddleware extracts the authenticated user's identity from the
// X-User-ID header set by the upstream gateway. Requests without one are
// rejected; webhook and public routes bypass this middleware entirely.
func userAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "Missing user identity")
			return
		}
		ctx := domain.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
