package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthc/loan-manager-backend/internal/audit"
	"github.com/samarthc/loan-manager-backend/internal/config"
	"github.com/samarthc/loan-manager-backend/internal/domain"
	"github.com/samarthc/loan-manager-backend/internal/identity"
	"github.com/samarthc/loan-manager-backend/internal/infrastructure/postgres"
	"github.com/samarthc/loan-manager-backend/internal/infrastructure/rabbitmq"
	"github.com/samarthc/loan-manager-backend/internal/infrastructure/redis"
	"github.com/samarthc/loan-manager-backend/internal/pkg/logger"
	"github.com/samarthc/loan-manager-backend/internal/security"
	"github.com/samarthc/loan-manager-backend/internal/service"
	"github.com/samarthc/loan-manager-backend/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "loan-manager").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres pool create failed")
	}
	defer dbPool.Close()

	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()

		if err := dbPool.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		log.Info().Msg("postgres connected")
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(rootCtx, cfg.DBDSN); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("migrations applied")
	}

	repo := postgres.New(dbPool)

	// ---- Redis ----
	cache := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()

		// Best-effort; rate limiting fails open and the profile cache is a
		// read-through, so a missing redis only degrades.
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
	}

	// ---- Events (optional) ----
	var events domain.EventPublisher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("event publisher unavailable (continuing without events)")
		} else {
			defer pub.Close()
			events = pub
		}
	}

	// ---- Services ----
	auditLog := audit.New(log)
	provider := identity.NewClient(cfg.IdentityAPIURL, cfg.IdentitySecretKey)
	if !provider.IsConfigured() {
		// config.Load rejects this outside dev; in dev, verify will 404/401
		// at the provider until credentials are set.
		log.Warn().Msg("identity provider credentials incomplete; profile sync will fail")
	}

	loans := service.NewLoanService(repo, events, auditLog)
	review := service.NewReviewService(repo, events, auditLog)
	reports := service.NewReportService(repo)
	accounts := service.NewAccountService(repo, provider, cache, auditLog, cfg.AdminEmails, cfg.ProfileCacheTTL)

	// ---- Router ----
	deps := rest.RouterDeps{
		Handler:        rest.NewHandler(loans, review, reports, accounts),
		Users:          repo,
		Verifier:       security.NewHS256Verifier(cfg.JWTSecret),
		JWTIssuer:      cfg.JWTIssuer,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.RLEnabled {
		deps.Cache = cache
		deps.RLLimit = cfg.RLLimit
		deps.RLWindow = cfg.RLWindow
	}
	httpHandler := rest.NewRouter(deps)

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
