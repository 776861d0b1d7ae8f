package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crovpos/internal/config"
	"crovpos/internal/infra"
	"crovpos/internal/repository"
	"crovpos/internal/router"
	"crovpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	// Money goes out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.DefaultTimezone).Msg("invalid DEFAULT_TIMEZONE, using UTC")
		loc = time.UTC
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBAutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	llm, err := infra.NewGeminiCompletion(ctx, infra.GeminiConfig{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.LLMModel,
		Timeout:       time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		RatePerSecond: cfg.LLMRatePerSecond,
		Location:      loc,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create LLM client")
	}

	svcs := router.NewServicios(cfg, db, infra.NewRedisCache(rdb))

	// Worker pool for async tasks (report PDFs, email). Handlers are wired
	// here so the pool has access to every infrastructure dependency.
	dispatcher := worker.NewDispatcher(rdb)
	pool := worker.NewPool(rdb)
	reportWorker := worker.NewReportWorker(
		svcs.Reportes,
		repository.NewSucursalRepository(db),
		dispatcher,
		cfg.Recipients(),
		cfg.ReportStoragePath,
	)
	pool.Register(worker.TipoReporte, reportWorker.Process)
	pool.Register(worker.TipoEmail, worker.NewEmailWorker(infra.NewMailer(cfg)).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	if cfg.ReportsEnabled {
		scheduler, err := worker.NewScheduler(repository.NewSucursalRepository(db), dispatcher, cfg.ReportDailyAt, loc)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid report schedule")
		}
		scheduler.Start(ctx)
	}

	r, err := router.New(ctx, router.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		Servicios: svcs,
		LLM:       llm,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("CROV backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop the workers and the scheduler, then let in-flight jobs finish
	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}

// setupLogger: pretty console output in development, JSON in production.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
