package http

import (
	"context"
	"net/http"
	"time"

	"prioritizacion/internal/httpx"
	"prioritizacion/internal/observability/logging"
	obsmw "prioritizacion/internal/observability/middleware"
	"prioritizacion/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Credentials service.CredentialVerifier
	Ranking     service.RankingService
	Campaigns   service.CampaignService
	Imports     service.ImportService
	Exports     service.ExportService
	Admin       service.AdminAuthenticator
	Sessions    *Sessions
	// Ready backs /readyz; nil reports ready.
	Ready       func(ctx context.Context) error

	CORSOrigins    []string
	LoginRateLimit int
	MaxUploadBytes int64
	RequestTimeout time.Duration
	// ImportTimeout replaces RequestTimeout on the workbook upload.
	ImportTimeout  time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.LoginRateLimit <= 0 {
		d.LoginRateLimit = 20
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 60 * time.Second
	}
	if d.ImportTimeout <= 0 {
		d.ImportTimeout = 10 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)
	r.Use(cors.Handler(corsOptions(d.CORSOrigins)))
	r.Use(httpx.SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				logging.FromContext(r.Context()).Warn("readiness check failed", "error", err)
				writeFailure(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := &authHandlers{verifier: d.Credentials, admin: d.Admin, sessions: d.Sessions}
	ranking := &rankingHandlers{ranking: d.Ranking, sessions: d.Sessions}
	admin := &adminHandlers{
		campaigns:      d.Campaigns,
		imports:        d.Imports,
		exports:        d.Exports,
		maxUploadBytes: d.MaxUploadBytes,
	}
	loginLimit := httprate.LimitByIP(d.LoginRateLimit, time.Minute)
	timeout := chimw.Timeout(d.RequestTimeout)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(timeout)
		r.With(loginLimit).Post("/login", auth.login)
		r.Post("/logout", auth.logout)
	})

	r.Route("/v1/ranking", func(r chi.Router) {
		r.Use(timeout)
		r.Use(httpx.NoStore)
		r.Use(d.Sessions.RequireApplicant)
		r.Get("/", ranking.list)
		r.Put("/", ranking.save)
		r.Post("/reset", ranking.reset)
		r.Post("/submit", ranking.submit)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.With(timeout, loginLimit).Post("/login", auth.adminLogin)
		r.With(timeout).Post("/logout", auth.adminLogout)

		r.Group(func(r chi.Router) {
			r.Use(httpx.NoStore)
			r.Use(d.Sessions.RequireAdmin)
			r.With(chimw.Timeout(d.ImportTimeout)).Post("/import", admin.importWorkbook)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/campaigns", admin.listCampaigns)
				r.Post("/campaigns", admin.createCampaign)
				r.Put("/campaigns/{id}", admin.updateCampaign)
				r.Delete("/campaigns/{id}", admin.deleteCampaign)
				r.Get("/campaigns/{id}/export", admin.exportCampaign)
			})
		})
	})

	return r
}

// corsOptions allows credentialed requests from origins. An empty list
// refuses every cross-origin request.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return opts
}
