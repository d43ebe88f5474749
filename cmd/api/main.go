package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"atrios.org/internal/ats"
	"atrios.org/internal/audit"
	"atrios.org/internal/auth"
	"atrios.org/internal/config"
	"atrios.org/internal/files"
	"atrios.org/internal/httpapi"
	"atrios.org/internal/obs"
	"atrios.org/internal/settings"
	"atrios.org/internal/store/pg"
)

var version = "1.2.0"

func main() {
	// .env is a development convenience; in production everything arrives
	// through real environment variables.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		obs.Logger().Fatal().Err(err).Msg("load config")
	}

	logger := obs.InitLogger(cfg.LogLevel, cfg.Env == "development", os.Stderr)
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("ATRIOS_BUILD_COMMIT"))

	store, err := pg.Open(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open postgres")
	}
	defer store.Close()

	uploads, err := files.New(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("init upload storage")
	}

	authStore := auth.NewPGStore(store.DB())
	sessions, err := auth.NewService(authStore, cfg.SessionSecret, auth.WithSessionTTL(cfg.SessionTTL))
	if err != nil {
		logger.Fatal().Err(err).Msg("init sessions")
	}
	users := auth.NewUsers(authStore.Users(ctx))
	activity := audit.New(store.DB())
	site := settings.New(store.DB())

	api, err := httpapi.New(httpapi.Config{
		Sessions:       sessions,
		Users:          users,
		Clients:        ats.NewClients(store, users, uploads, activity),
		Jobs:           ats.NewJobs(store, activity),
		Candidates:     ats.NewCandidates(store, uploads, activity),
		Applications:   ats.NewApplications(store, activity),
		Uploads:        uploads,
		Activity:       activity,
		Settings:       site,
		DB:             store.DB(),
		SiteURL:        cfg.SiteURL,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.Env != "development",
		Version:        version,
		MaxBodyBytes:   cfg.Uploads.MaxBytes + 1<<20,
		ApplyRateBurst: cfg.ApplyRateBurst,
		ApplyPerMinute: cfg.ApplyRatePerMinute,
	}, cfg.SessionSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("init http api")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Str("version", version).Msg("starting atrios-ats")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("stopped")
}
