package cmd

import (
	"fmt"

	"bansync/core/config"
	"bansync/core/database"
	"bansync/core/logger"
	"bansync/core/models"
	"bansync/core/notify"
	"bansync/core/storage"
	"bansync/core/store"
	"bansync/feature/export"
	"bansync/feature/importer"
	"bansync/feature/jobs"
	"bansync/feature/profiles"
	"bansync/feature/reputation"
	"bansync/feature/sources"

	"go.uber.org/zap"
)

// app is the wired service graph shared by the commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client storage.Client
	store  *store.Store
	runner *jobs.Runner
}

// bootstrap loads configuration and connects the logger, database and bucket.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logg, client: client, store: store.New(db)}, nil
}

// wireJobs builds every service and registers the standard jobs plus the
// "all" pipeline.
func (a *app) wireJobs() error {
	dispatcher, err := notify.NewDispatcher(a.cfg.Notify, a.logger)
	if err != nil {
		return err
	}

	bucket := a.cfg.Storage.Bucket
	providers := sources.Registry{
		models.ProviderJSONFeed:   sources.NewJSONFeed(a.cfg.Sources, a.logger),
		models.ProviderBucketDump: sources.NewBucketDump(a.client, bucket, a.cfg.Sources, a.logger),
	}
	targets := export.Targets{
		models.ProviderBucketExport: export.NewBucketTarget(a.client, bucket, a.cfg.Export.Prefix),
	}

	std := jobs.Standard(jobs.Services{
		Lists:      a.store,
		Providers:  providers,
		Importer:   importer.New(a.store, a.cfg.Import, a.logger),
		Refresher:  profiles.NewRefresher(a.store, profiles.NewHTTPClient(a.cfg.Profiles), a.cfg.Profiles, a.logger),
		Scorer:     reputation.NewScorer(a.store, a.logger),
		Planner:    export.NewPlanner(a.store, a.logger),
		Propagator: export.NewPropagator(a.store, targets, dispatcher, a.cfg.Export, a.logger),
	})

	a.runner = jobs.NewRunner(a.logger, std...)
	a.runner.Register(jobs.Pipeline(a.runner,
		jobs.NameImport, jobs.NameProfiles, jobs.NameReputation, jobs.NameExport))
	return nil
}
