package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pandoorac_backend/internal/adapters"
	"pandoorac_backend/internal/bag"
	"pandoorac_backend/internal/geodata"
	georepository "pandoorac_backend/internal/geodata/repository"
	apphttp "pandoorac_backend/internal/http"
	"pandoorac_backend/internal/http/router"
	"pandoorac_backend/internal/pdok"
	"pandoorac_backend/internal/walkscore"
	"pandoorac_backend/internal/woz"
	"pandoorac_backend/platform/cache"
	"pandoorac_backend/platform/config"
	"pandoorac_backend/platform/db"
	"pandoorac_backend/platform/logger"
	"pandoorac_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure
	// ========================================================================

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
			log.Error("failed to run migrations", "error", err)
			panic("failed to run migrations: " + err.Error())
		}
	} else {
		log.Warn("DATABASE_URL not configured; dossier persistence and duplicate checks disabled")
	}

	lookupCache, err := cache.New(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable; lookup caching disabled", "error", err)
		lookupCache = nil
	}
	if lookupCache != nil {
		defer lookupCache.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Shared validator instance for dependency injection
	val := validator.New()

	pdokModule := pdok.NewModule(log)
	bagModule := bag.NewModule(cfg, log)
	walkScoreModule := walkscore.NewModule(cfg, log)
	wozModule := woz.NewModule(pdokModule.Service(), log)

	deps := geodata.Deps{
		Locator:       adapters.NewPDOKLocator(pdokModule.Service()),
		Height:        adapters.NewPDOKHeightModel(pdokModule.Service()),
		Topography:    adapters.NewPDOKTopography(pdokModule.Service()),
		Parcels:       adapters.NewPDOKParcelSource(pdokModule.Service()),
		Feedback:      adapters.NewPDOKFeedback(pdokModule.Service()),
		Valuations:    adapters.NewWOZValuationAdapter(wozModule.Service()),
		FanOutTimeout: cfg.GetFanOutTimeout(),
	}
	if bagModule.IsEnabled() {
		deps.Building = adapters.NewBAGBuildingResolver(bagModule.Service())
	}
	if walkScoreModule.IsEnabled() {
		deps.Walkability = adapters.NewWalkScoreAdapter(walkScoreModule.Client())
	}
	if pool != nil {
		deps.Repository = georepository.New(pool)
	}
	if lookupCache != nil {
		deps.Cache = lookupCache
	}

	geodataModule := geodata.NewModule(deps, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Modules: []apphttp.Module{geodataModule},
	}
	if pool != nil {
		app.Health = db.NewPoolAdapter(pool)
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.GetHTTPAddr())
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
