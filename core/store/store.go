package store

import (
	"context"
	"fmt"

	"bansync/core/models"

	"gorm.io/gorm"
)

// insertBatchSize bounds multi-row INSERT statements.
const insertBatchSize = 500

// Store is the gorm-backed repository for users, lists, bans and export records.
// Every write is idempotent so a retried or re-run job converges to the same state.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
