package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/fingerprint-quality-go/internal/config"
	"github.com/anime-shed/fingerprint-quality-go/internal/factory"
	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
	"github.com/anime-shed/fingerprint-quality-go/internal/measures"
	"github.com/anime-shed/fingerprint-quality-go/internal/model"
	"github.com/anime-shed/fingerprint-quality-go/internal/observer"
	"github.com/anime-shed/fingerprint-quality-go/internal/repository"
	"github.com/anime-shed/fingerprint-quality-go/internal/service"
	"github.com/anime-shed/fingerprint-quality-go/internal/transport"
	"github.com/anime-shed/fingerprint-quality-go/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	fetcher        *factory.RoutingFetcher
	orchestrator   *measures.Orchestrator
	evaluator      *model.Evaluator
	scores         repository.ScoreRepository
	publisher      *observer.EventPublisher
	scoringService service.ScoringService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := logger.Configure(cfg.LogFile, cfg.LogMaxAge); err != nil {
		return nil, fmt.Errorf("failed to configure log file: %w", err)
	}

	// Build dependency graph
	fetcher, skipped := factory.NewRoutingFetcher(factory.NewStorageFactory(cfg))
	for _, err := range skipped {
		logger.WithError(err).Debug("Storage backend disabled")
	}

	urls := validation.NewURLValidator()
	if cfg.LocalImageRoot != "" {
		urls.AllowScheme("file")
	}
	images := repository.NewFetcherImageRepository(fetcher, urls.ValidateImageURL)

	var scores repository.ScoreRepository
	if cfg.ResultsDBPath != "" {
		repo, err := repository.NewSQLiteScoreRepository(cfg.ResultsDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open results database: %w", err)
		}
		scores = repo
	}

	opts := measures.DefaultOptions().WithMaxWorkers(cfg.MaxWorkers)
	if cfg.CropFrame {
		opts = opts.WithCropFrame()
	}
	if cfg.GaborEnergy {
		opts = opts.WithGaborEnergy()
	}
	orchestrator := measures.NewOrchestrator(opts)

	// A missing model leaves native and quality block scoring available
	evaluator := model.NewEvaluator()
	if err := evaluator.LoadInfo(cfg.ModelInfoPath); err != nil {
		logger.WithError(err).WithField("model_info_path", cfg.ModelInfoPath).
			Warn("Model not loaded, unified scoring disabled")
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	scoringService := service.NewScoringService(service.Dependencies{
		Images:       images,
		Scores:       scores,
		Orchestrator: orchestrator,
		Evaluator:    evaluator,
		Validator:    validation.NewScoreRequestValidator(urls, validation.DefaultRequestLimits()),
		Publisher:    publisher,
		Metrics:      metrics,
	})
	handler := transport.NewHandler(scoringService, cfg)

	logger.WithFields(logrus.Fields{
		"crop_frame":   cfg.CropFrame,
		"max_workers":  cfg.MaxWorkers,
		"model_loaded": evaluator.Loaded(),
		"results_db":   cfg.ResultsDBPath != "",
	}).Info("Container initialized")

	return &Container{
		config:         cfg,
		fetcher:        fetcher,
		orchestrator:   orchestrator,
		evaluator:      evaluator,
		scores:         scores,
		publisher:      publisher,
		scoringService: scoringService,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the scoring service
func (c *Container) Service() service.ScoringService {
	return c.scoringService
}

// Close waits for pending events and releases the worker pool and database.
func (c *Container) Close() error {
	c.publisher.Wait()
	c.orchestrator.Close()
	if c.scores != nil {
		return c.scores.Close()
	}
	return nil
}
