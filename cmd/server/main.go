// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/jobmatch/internal/api"
	"github.com/tomtom215/jobmatch/internal/config"
	"github.com/tomtom215/jobmatch/internal/evaluation"
	"github.com/tomtom215/jobmatch/internal/events"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/promotion"
	"github.com/tomtom215/jobmatch/internal/recommend"
	"github.com/tomtom215/jobmatch/internal/scheduler"
	"github.com/tomtom215/jobmatch/internal/supervisor"
	"github.com/tomtom215/jobmatch/internal/supervisor/services"
)

// trainRequestTimeout bounds a manual training request.
const trainRequestTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run(cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("registry", cfg.Registry.Backend).
		Str("artifacts", cfg.Artifacts.Backend).
		Str("cache", cfg.Cache.Backend).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Msg("Starting Jobmatch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var done cleanup
	defer done.run()

	db, err := openStore(ctx, cfg.Store, logger, &done)
	if err != nil {
		return err
	}
	local, remote, err := openArtifacts(ctx, cfg.Artifacts)
	if err != nil {
		return err
	}
	reg, err := openRegistry(cfg.Registry, remote, logger, &done)
	if err != nil {
		return err
	}
	cache, err := openCache(ctx, cfg.Cache, logger, &done)
	if err != nil {
		return err
	}
	publisher, subscriber := openEvents(cfg.Events, logger, &done)

	trainer := lifecycle.NewTrainer(
		features.New(cfg.Training.PayCeiling),
		evaluation.New(logger),
		lifecycle.TrainerConfig{
			MinSamples:   cfg.Training.MinSamples,
			TestFraction: cfg.Training.TestFraction,
			Optimizer: ml.TrainConfig{
				Epochs:       cfg.Training.Epochs,
				LearningRate: cfg.Training.LearningRate,
				L2:           cfg.Training.L2,
				Seed:         cfg.Training.Seed,
			},
			RidgeL2:      cfg.Training.RidgeL2,
			KNNNeighbors: cfg.Training.KNNNeighbors,
		},
	)

	orch := lifecycle.NewOrchestrator(lifecycle.Options{
		Registry: reg,
		Local:    local,
		Cache:    cache,
		Events:   publisher,
		Policy: promotion.Policy{
			ImprovementThreshold: cfg.Training.ImprovementThreshold,
			TieTolerance:         cfg.Training.TieTolerance,
		},
		Logger:         logger,
		TerminateRetry: cfg.Registry.BreakerTimeout,
	})

	sched, err := scheduler.New(orch, func(mt models.ModelType) lifecycle.TrainFunc {
		return trainer.For(mt, db)
	}, cfg.Scheduler, logger)
	if err != nil {
		return err
	}

	scorer := recommend.NewScorer(recommend.Options{
		Snapshots: db,
		Models:    orch,
		Trainer:   trainer,
		Logger:    logger,
		Seed:      cfg.Training.Seed,
	})

	handler := api.NewHandler(sched, orch, scorer, trainRequestTimeout)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.MiddlewareConfigFromServer(cfg.Server)))

	// No WriteTimeout: a synchronous training request can outlast it.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	if subscriber != nil {
		tree.AddEventService(events.NewModelReloader(subscriber, cfg.Events.Topic, orch, logger))
	}
	tree.AddTrainingService(sched)
	tree.AddTrainingService(services.NewWarmerService(orch, services.WarmerServiceConfig{Interval: cfg.Cache.TTL}, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, services.DefaultShutdownTimeout, logger))

	logger.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = err
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
	return serveErr
}
