package main

import (
	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mindengage-norms/internal/api/http"
	"github.com/mind-engage/mindengage-norms/internal/dossier"
	rbac "github.com/mind-engage/mindengage-norms/internal/rbac"
	syncx "github.com/mind-engage/mindengage-norms/internal/sync"
)

// mountAdminRoutes wires compliance APIs under /admin.
func mountAdminRoutes(pr chi.Router, dossiers dossier.Store, events *syncx.EventRepo) {
	pr.Route("/admin", func(r chi.Router) {
		r.With(rbac.Require("admin:compliance")).Get("/dossiers/{id}/export", api.HandleDossierExport(dossiers))
		r.With(rbac.Require("admin:compliance")).Get("/audit", api.HandleAuditLog(events))
	})
}
