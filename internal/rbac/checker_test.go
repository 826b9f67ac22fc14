package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker(t *testing.T) {
	c := NewChecker(map[string][]string{
		"clinician": {"dossier:view", "norms:*"},
		"admin":     {"*"},
	})
	assert.True(t, c.Has("clinician", "dossier:view"))
	assert.True(t, c.Has("clinician", "norms:view"))
	assert.False(t, c.Has("clinician", "dossier:delete"))
	assert.True(t, c.Has("admin", "dossier:delete"))
	assert.False(t, c.Has("nobody", "norms:view"))

	assert.True(t, c.Any("clinician", "dossier:delete", "dossier:view"))
	assert.False(t, c.All("clinician", "dossier:delete", "dossier:view"))
}

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Has("clinician", "dossier:create"))
	assert.False(t, c.Has("clinician", "dossier:delete"))
	assert.False(t, c.Has("reviewer", "dossier:create"))
	assert.True(t, c.Has("reviewer", "dossier:score"))
	assert.True(t, c.Has("admin", "dossier:delete"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("dossier:delete")(ok)

	for role, want := range map[string]int{
		"":          http.StatusForbidden,
		"clinician": http.StatusForbidden,
		"admin":     http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/dossiers/x", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequireAll(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireAll("dossier:view", "dossier:score")(ok)

	for role, want := range map[string]int{
		RoleReviewer:  http.StatusNoContent,
		RoleClinician: http.StatusNoContent,
		"guest":       http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/dossiers/x/results", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}
