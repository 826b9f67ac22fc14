package rbac

import (
	"net/http"

	"github.com/mind-engage/mindengage-norms/internal/logging"
)

var defaultChecker = NewChecker(nil)

func guard(allowed func(role string) bool, perms []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role) {
				logging.Log.WithField("role", role).WithField("perms", perms).
					Debug("rbac: denied " + r.Method + " " + r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return defaultChecker.Has(role, perm) }, []string{perm})
}

// RequireAll enforces that the role has all of the permissions.
func RequireAll(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return defaultChecker.All(role, perms...) }, perms)
}
