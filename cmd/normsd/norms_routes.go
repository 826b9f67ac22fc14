package main

import (
	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mindengage-norms/internal/api/http"
	auth "github.com/mind-engage/mindengage-norms/internal/auth/middleware"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	rbac "github.com/mind-engage/mindengage-norms/internal/rbac"
	storage "github.com/mind-engage/mindengage-norms/internal/storage"
)

// mountNormsRoutes wires /norms. Band metadata is public; the raw table
// files need a token carrying norms:view. bs may be nil.
func mountNormsRoutes(r chi.Router, tables *norms.TableStore, bs storage.BlobStore, authSvc *auth.AuthService) {
	r.Route("/norms", func(nr chi.Router) {
		nr.Get("/bands", api.BandsHandler(tables))
		nr.Get("/bands/eligible", api.EligibleHandler(tables))
		nr.Get("/subtests", api.SubtestsHandler())
		if bs == nil {
			return
		}
		nr.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc), rbac.Require("norms:view"))
			pr.Route("/tables", func(tr chi.Router) { api.MountTables(tr, bs) })
		})
	})
}
