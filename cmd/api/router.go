package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/scantron/internal/config"
	"github.com/crucial707/scantron/internal/handlers"
	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter builds the HTTP handler with all routes. Used by main and by integration tests.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	secret := []byte(cfg.JWTSecret)
	tokenTTL := time.Duration(cfg.JWTExpireHours) * time.Hour
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	// ==========================
	// Repositories
	// ==========================
	auditRepo := repo.NewAuditRepo(db)
	userRepo := repo.NewUserRepo(db)
	engineRepo := repo.NewEngineRepo(db)
	scheduledScanRepo := repo.NewScheduledScanRepo(db)

	// ==========================
	// Handlers
	// ==========================
	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Secret: secret, TokenTTL: tokenTTL}
	userHandler := &handlers.UserHandler{Repo: userRepo, AuditRepo: auditRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}
	configurationHandler := &handlers.ConfigurationHandler{Repo: repo.NewConfigurationRepo(db), AuditRepo: auditRepo}
	engineHandler := &handlers.EngineHandler{Repo: engineRepo, AuditRepo: auditRepo}
	enginePoolHandler := &handlers.EnginePoolHandler{Repo: repo.NewEnginePoolRepo(db), AuditRepo: auditRepo}
	excludedHandler := &handlers.GloballyExcludedTargetHandler{Repo: repo.NewGloballyExcludedTargetRepo(db), AuditRepo: auditRepo}
	scanCommandHandler := &handlers.ScanCommandHandler{Repo: repo.NewScanCommandRepo(db), AuditRepo: auditRepo}
	siteHandler := &handlers.SiteHandler{Repo: repo.NewSiteRepo(db), AuditRepo: auditRepo}
	scanHandler := &handlers.ScanHandler{Repo: repo.NewScanRepo(db), AuditRepo: auditRepo}
	scheduledScanHandler := &handlers.ScheduledScanHandler{Repo: scheduledScanRepo, AuditRepo: auditRepo}
	engineAPIHandler := &handlers.EngineAPIHandler{Engines: engineRepo, Scans: scheduledScanRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ready\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ==========================
		// Auth (public, rate limited)
		// ==========================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimiter().Middleware)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// ==========================
		// Engine-facing routes
		// ==========================
		r.Route("/engine", func(r chi.Router) {
			r.Use(middleware.EngineAuth(engineRepo))
			r.Get("/scheduled_scans", engineAPIHandler.ListScheduledScans)
			r.Patch("/scheduled_scans/{id}", engineAPIHandler.UpdateScheduledScan)
		})

		// ==========================
		// Console routes (JWT; writes need admin)
		// ==========================
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(secret))
			r.Use(middleware.AdminForWrites)

			r.Get("/audit", auditHandler.ListAudit)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Patch("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})

			r.Route("/configuration", func(r chi.Router) {
				r.Get("/", configurationHandler.ListConfigurations)
				r.Get("/{id}", configurationHandler.GetConfiguration)
				r.Put("/{id}", configurationHandler.UpdateConfiguration)
				r.Patch("/{id}", configurationHandler.UpdateConfiguration)
			})

			r.Route("/engines", func(r chi.Router) {
				r.Get("/", engineHandler.ListEngines)
				r.Post("/", engineHandler.CreateEngine)
				r.Get("/{id}", engineHandler.GetEngine)
				r.Put("/{id}", engineHandler.UpdateEngine)
				r.Patch("/{id}", engineHandler.UpdateEngine)
				r.Delete("/{id}", engineHandler.DeleteEngine)
				r.Post("/{id}/rotate_token", engineHandler.RotateToken)
			})

			r.Route("/engine_pools", func(r chi.Router) {
				r.Get("/", enginePoolHandler.ListEnginePools)
				r.Post("/", enginePoolHandler.CreateEnginePool)
				r.Get("/{id}", enginePoolHandler.GetEnginePool)
				r.Put("/{id}", enginePoolHandler.UpdateEnginePool)
				r.Patch("/{id}", enginePoolHandler.UpdateEnginePool)
				r.Delete("/{id}", enginePoolHandler.DeleteEnginePool)
			})

			r.Route("/globally_excluded_targets", func(r chi.Router) {
				r.Get("/", excludedHandler.ListGloballyExcludedTargets)
				r.Post("/", excludedHandler.CreateGloballyExcludedTarget)
				r.Get("/{id}", excludedHandler.GetGloballyExcludedTarget)
				r.Put("/{id}", excludedHandler.UpdateGloballyExcludedTarget)
				r.Patch("/{id}", excludedHandler.UpdateGloballyExcludedTarget)
				r.Delete("/{id}", excludedHandler.DeleteGloballyExcludedTarget)
			})

			r.Route("/scan_commands", func(r chi.Router) {
				r.Get("/", scanCommandHandler.ListScanCommands)
				r.Post("/", scanCommandHandler.CreateScanCommand)
				r.Get("/{id}", scanCommandHandler.GetScanCommand)
				r.Put("/{id}", scanCommandHandler.UpdateScanCommand)
				r.Patch("/{id}", scanCommandHandler.UpdateScanCommand)
				r.Delete("/{id}", scanCommandHandler.DeleteScanCommand)
			})

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", siteHandler.ListSites)
				r.Post("/", siteHandler.CreateSite)
				r.Get("/{id}", siteHandler.GetSite)
				r.Put("/{id}", siteHandler.UpdateSite)
				r.Patch("/{id}", siteHandler.UpdateSite)
				r.Delete("/{id}", siteHandler.DeleteSite)
			})

			r.Route("/scans", func(r chi.Router) {
				r.Get("/", scanHandler.ListScans)
				r.Post("/", scanHandler.CreateScan)
				r.Get("/{id}", scanHandler.GetScan)
				r.Put("/{id}", scanHandler.UpdateScan)
				r.Patch("/{id}", scanHandler.UpdateScan)
				r.Delete("/{id}", scanHandler.DeleteScan)
			})

			r.Route("/scheduled_scans", func(r chi.Router) {
				r.Get("/", scheduledScanHandler.ListScheduledScans)
				r.Get("/{id}", scheduledScanHandler.GetScheduledScan)
				r.Patch("/{id}", scheduledScanHandler.UpdateScheduledScan)
			})
		})
	})

	return r
}
