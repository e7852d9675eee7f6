package store

import (
	"context"
	"fmt"

	"bansync/core/models"

	"gorm.io/gorm/clause"
)

// IngestLists returns every list the importer reads from.
func (s *Store) IngestLists(ctx context.Context) ([]models.BanSourceList, error) {
	var lists []models.BanSourceList
	err := s.db.WithContext(ctx).
		Where("provider <> ?", models.ProviderBucketExport).
		Order("id").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ingest lists: %w", err)
	}
	return lists, nil
}

// ExportLists returns every export target list.
func (s *Store) ExportLists(ctx context.Context) ([]models.BanSourceList, error) {
	var lists []models.BanSourceList
	err := s.db.WithContext(ctx).
		Where("provider = ?", models.ProviderBucketExport).
		Order("id").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load export lists: %w", err)
	}
	return lists, nil
}

// UpsertLists creates or fully overwrites the given lists.
func (s *Store) UpsertLists(ctx context.Context, lists []models.BanSourceList) error {
	if len(lists) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&lists).Error
	if err != nil {
		return fmt.Errorf("failed to upsert lists: %w", err)
	}
	return nil
}
