package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prioritizacion/internal/config"
	"prioritizacion/internal/jwtsigner"
	"prioritizacion/internal/observability/logging"
	"prioritizacion/internal/observability/metrics"
	impl "prioritizacion/internal/service/impl"
	"prioritizacion/internal/store"
	transport "prioritizacion/internal/transport/http"
	pkgdb "prioritizacion/pkg/db"
)

const serviceName = "prioritizacion"

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName)

	logger.Info("starting service")

	// 1) DB
	gdb, err := pkgdb.OpenGorm(pkgdb.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := pkgdb.AutoMigrate(gdb); err != nil {
			logger.Error("auto migrate", "error", err)
			os.Exit(1)
		}
		logger.Info("schema migrated")
	}
	st := store.New(gdb)

	// 2) Services
	adminPassword := cfg.AdminPassword
	if !cfg.AdminEnabled() {
		adminPassword = ""
		logger.Warn("ADMIN_PASSWORD not configured, admin login disabled")
	}
	admin, err := impl.NewAdminAuthenticator(adminPassword)
	if err != nil {
		logger.Error("admin authenticator", "error", err)
		os.Exit(1)
	}
	signer, err := jwtsigner.New(cfg.SessionSigningKey, cfg.SessionIssuer)
	if err != nil {
		logger.Error("session signer", "error", err)
		os.Exit(1)
	}

	// 3) HTTP router
	router := transport.NewRouter(transport.Deps{
		Credentials: impl.NewCredentialVerifier(st),
		Ranking:     impl.NewRankingService(st),
		Campaigns:   impl.NewCampaignService(st),
		Imports:     impl.NewImportService(st, impl.NewTokenIssuer(cfg.TokenTTL)),
		Exports:     impl.NewExportService(st),
		Admin:       admin,
		Ready:       st.Ping,
		Sessions: &transport.Sessions{
			Signer:       signer,
			ApplicantTTL: cfg.SessionTTL,
			AdminTTL:     cfg.AdminSessionTTL,
			Secure:       cfg.CookieSecure,
		},
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.RequestTimeout,
		ImportTimeout:  cfg.ImportTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("prioritizacion service listening", "addr", srv.Addr, "issuer", cfg.SessionIssuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
