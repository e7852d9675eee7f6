package integrity

import (
	"context"
	"path"

	"bansync/core/models"
	"bansync/core/storage"
	"bansync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListStore loads the configured lists.
type ListStore interface {
	IngestLists(ctx context.Context) ([]models.BanSourceList, error)
	ExportLists(ctx context.Context) ([]models.BanSourceList, error)
}

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	lists  ListStore
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service. prefix is the export object prefix.
func NewService(client storage.Client, bucket, prefix string, lists ListStore, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		prefix: prefix,
		lists:  lists,
		db:     db,
		logger: logger,
	}
}

// CheckSchema compares the database against the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckStructure returns the export list folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	lists, err := s.lists.ExportLists(ctx)
	if err != nil {
		return nil, err
	}
	folders := make([]string, 0, len(lists))
	for _, l := range lists {
		folders = append(folders, path.Join(s.prefix, l.ID))
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckDumps returns the dump objects of bucket-dump lists that are missing.
func (s *Service) CheckDumps(ctx context.Context) ([]string, error) {
	lists, err := s.lists.IngestLists(ctx)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, l := range lists {
		if l.Provider == models.ProviderBucketDump {
			keys = append(keys, l.URL)
		}
	}
	return checks.CheckObjects(ctx, s.client, s.bucket, keys)
}

// Report is the combined result of every check.
type Report struct {
	Schema    any `json:"schema"`
	Structure any `json:"structure"`
	Dumps     any `json:"dumps"`
}

// CheckAll runs every check. A failing check is reported in place of its result.
func (s *Service) CheckAll(ctx context.Context) Report {
	var r Report

	if schema, err := s.CheckSchema(); err != nil {
		r.Schema = failed(err)
	} else {
		r.Schema = schema
	}

	if missing, err := s.CheckStructure(ctx); err != nil {
		r.Structure = failed(err)
	} else {
		r.Structure = map[string]any{"status": "ok", "missing": missing}
	}

	if missing, err := s.CheckDumps(ctx); err != nil {
		r.Dumps = failed(err)
	} else {
		r.Dumps = map[string]any{"status": "ok", "missing": missing}
	}

	return r
}

func failed(err error) map[string]any {
	return map[string]any{"status": "error", "error": err.Error()}
}
