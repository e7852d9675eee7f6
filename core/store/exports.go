package store

import (
	"context"
	"fmt"

	"bansync/core/models"
)

// ExportRecordsForUsers loads every export record of the given users.
func (s *Store) ExportRecordsForUsers(ctx context.Context, ids []string) ([]models.ExportRecord, error) {
	var recs []models.ExportRecord
	if len(ids) == 0 {
		return recs, nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load export records: %w", err)
	}
	return recs, nil
}

// PendingExports returns every record awaiting propagation, oldest first.
func (s *Store) PendingExports(ctx context.Context) ([]models.ExportRecord, error) {
	var recs []models.ExportRecord
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.ExportStatus{models.ExportPendingCreate, models.ExportPendingDelete}).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending exports: %w", err)
	}
	return recs, nil
}

// CreateExportRecord inserts rec and sets its id.
func (s *Store) CreateExportRecord(ctx context.Context, rec *models.ExportRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create export record: %w", err)
	}
	return nil
}

// SetExportStatus changes the status of one record.
func (s *Store) SetExportStatus(ctx context.Context, id uint, status models.ExportStatus) error {
	err := s.db.WithContext(ctx).Model(&models.ExportRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update export record %d: %w", id, err)
	}
	return nil
}

// DeleteExportRecord removes one record.
func (s *Store) DeleteExportRecord(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.ExportRecord{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete export record %d: %w", id, err)
	}
	return nil
}
