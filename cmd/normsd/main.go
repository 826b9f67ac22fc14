package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-norms/internal/api/http"
	auth "github.com/mind-engage/mindengage-norms/internal/auth/middleware"
	"github.com/mind-engage/mindengage-norms/internal/config"
	"github.com/mind-engage/mindengage-norms/internal/db"
	"github.com/mind-engage/mindengage-norms/internal/dossier"
	"github.com/mind-engage/mindengage-norms/internal/logging"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/norms/registry"
	rbac "github.com/mind-engage/mindengage-norms/internal/rbac"
	"github.com/mind-engage/mindengage-norms/internal/scoring"
	storage "github.com/mind-engage/mindengage-norms/internal/storage"
	syncx "github.com/mind-engage/mindengage-norms/internal/sync"
)

func main() {
	log := logging.Log
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.LogJSON {
		logging.UseJSON()
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	events := syncx.NewEventRepo(dbh)
	dossiers := dossier.NewSQLStore(dbh, events)

	// --- Norms ---
	var bs storage.BlobStore
	if registry.Source(cfg.NormsSource) == registry.SourceDir {
		fs, err := storage.NewFSStore(cfg.NormsDir)
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		bs = fs
	}
	tables, _, err := scoring.LoadStore(ctx, registry.Source(cfg.NormsSource), bs, dbh)
	if err != nil {
		log.Fatalf("load norms: %v", err)
	}
	svc := scoring.NewService(tables, scoring.WithConvention(norms.OverallConvention(cfg.OverallConvention)))

	// --- Auth (local JWT) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	accounts := []auth.Account{{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: rbac.RoleAdmin}}
	if cfg.ClinicianUser != "" {
		accounts = append(accounts, auth.Account{Username: cfg.ClinicianUser, PassHash: cfg.ClinicianPassHash, Role: rbac.RoleClinician})
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, accounts))
	}

	// Public: band metadata and one-off conversions carry no examinee record.
	mountNormsRoutes(r, tables, bs, authSvc)
	r.Post("/convert", api.ConvertHandler(svc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("dossier:create")).
			Post("/dossiers", api.CreateDossierHandler(dossiers))
		pr.With(rbac.Require("dossier:view")).
			Get("/dossiers", api.ListDossiersHandler(dossiers))
		pr.With(rbac.Require("dossier:view")).
			Get("/dossiers/{id}", api.GetDossierHandler(dossiers))
		pr.With(rbac.Require("dossier:create")).
			Put("/dossiers/{id}", api.UpdateDossierHandler(dossiers))
		pr.With(rbac.Require("dossier:delete")).
			Delete("/dossiers/{id}", api.DeleteDossierHandler(dossiers))
		pr.With(rbac.RequireAll("dossier:view", "dossier:score")).
			Get("/dossiers/{id}/results", api.DossierResultsHandler(dossiers, svc))

		mountAdminRoutes(pr, dossiers, events)
	})

	r.Get("/healthz", api.HealthHandler())
	r.Get("/readyz", api.ReadyHandler(tables, dbh))
	r.Handle("/metrics", api.MetricsHandler())

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithField("mode", cfg.Mode).
		WithField("db", cfg.DBDriver).
		WithField("norms", cfg.NormsSource).
		Infof("listening on %s", cfg.HTTPAddr)
	log.Fatal(s.ListenAndServe())
}
