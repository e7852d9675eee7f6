package store

import (
	"context"
	"errors"
	"fmt"

	"bansync/core/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindOrCreateBan returns the stored ban with ban.ID, creating it from ban when
// absent. created reports whether this call inserted the row.
func (s *Store) FindOrCreateBan(ctx context.Context, ban models.Ban) (stored models.Ban, created bool, err error) {
	db := s.db.WithContext(ctx)

	err = db.Where("id = ?", ban.ID).First(&stored).Error
	if err == nil {
		return stored, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return stored, false, fmt.Errorf("failed to load ban %s: %w", ban.ID, err)
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&ban)
	if res.Error != nil {
		return stored, false, fmt.Errorf("failed to create ban %s: %w", ban.ID, res.Error)
	}
	if res.RowsAffected == 1 {
		return ban, true, nil
	}

	// Lost a race against a concurrent insert of the same id.
	if err := db.Where("id = ?", ban.ID).First(&stored).Error; err != nil {
		return stored, false, fmt.Errorf("failed to reload ban %s: %w", ban.ID, err)
	}
	return stored, false, nil
}

// UpdateBan writes the given columns of one ban.
func (s *Store) UpdateBan(ctx context.Context, id string, fields map[string]any) error {
	err := s.db.WithContext(ctx).Model(&models.Ban{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update ban %s: %w", id, err)
	}
	return nil
}

// BansForUsers loads every ban owned by the given users.
func (s *Store) BansForUsers(ctx context.Context, ids []string) ([]models.Ban, error) {
	var out []models.Ban
	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))

		var chunk []models.Ban
		err := s.db.WithContext(ctx).
			Where("user_id IN ?", ids[start:end]).
			Order("user_id, id").
			Find(&chunk).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load bans: %w", err)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// ActiveBanUsers reports which of ids own at least one non-expired ban.
func (s *Store) ActiveBanUsers(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var active []string
	err := s.db.WithContext(ctx).Model(&models.Ban{}).
		Distinct("user_id").
		Where("user_id IN ? AND expired = ?", ids, false).
		Pluck("user_id", &active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active bans: %w", err)
	}
	for _, id := range active {
		out[id] = true
	}
	return out, nil
}

// orphans selects the bans of listID whose id is not in keep. The same scope is
// used for counting, invalidating owners and deleting.
func orphans(listID string, keep []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("list_id = ?", listID)
		if len(keep) > 0 {
			db = db.Where("id NOT IN ?", keep)
		}
		return db
	}
}

// CountOrphans counts bans of listID missing from keep.
func (s *Store) CountOrphans(ctx context.Context, listID string, keep []string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Ban{}).
		Scopes(orphans(listID, keep)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orphans of %s: %w", listID, err)
	}
	return n, nil
}

// InvalidateOrphanOwners nulls the derived timestamps of every user owning an
// orphan of listID.
func (s *Store) InvalidateOrphanOwners(ctx context.Context, listID string, keep []string) error {
	owners := s.db.Model(&models.Ban{}).
		Select("user_id").
		Scopes(orphans(listID, keep))

	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN (?)", owners).
		Updates(invalidation()).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate owners of %s orphans: %w", listID, err)
	}
	return nil
}

// DeleteOrphans removes the bans of listID missing from keep.
func (s *Store) DeleteOrphans(ctx context.Context, listID string, keep []string) (int64, error) {
	res := s.db.WithContext(ctx).
		Scopes(orphans(listID, keep)).
		Delete(&models.Ban{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete orphans of %s: %w", listID, res.Error)
	}
	return res.RowsAffected, nil
}
