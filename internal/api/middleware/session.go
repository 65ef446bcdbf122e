package middleware

import (
	"net/http"
	"strings"

	"github.com/roomportal/backend/internal/session"
)

// Session stores the gateway-forwarded identity on the request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromRequest(r)
		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
	})
}

// RequireRole wraps next so that only sessions with one of roles reach it.
// Requests without an identity get 401, other roles 403.
func RequireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if s.Anonymous() {
			WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Authentication required")
			return
		}
		if !s.HasRole(roles...) {
			WriteError(w, http.StatusForbidden, ErrForbidden,
				"This endpoint requires one of the roles: "+strings.Join(roles, ", "))
			return
		}
		next.ServeHTTP(w, r)
	})
}
