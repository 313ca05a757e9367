package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// RequireRole admits callers whose token role is one of roles. It must run
// after Auth: a request without claims gets 401, any other role gets 403
// naming the roles that are accepted ("access denied, admin only").
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	denied := "access denied, " + strings.Join(roles, " or ") + " only"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			switch {
			case !ok:
				writeJSONError(w, http.StatusUnauthorized, "access denied, no token provided")
			case !slices.Contains(roles, claims.Role):
				writeJSONError(w, http.StatusForbidden, denied)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
