package store

import (
	"context"
	"fmt"
	"time"

	"bansync/core/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertUsersIfAbsent creates a bare row for every id that does not exist yet.
// Existing rows are left untouched.
func (s *Store) InsertUsersIfAbsent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(ids))
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, models.User{ID: id})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&users, insertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}
	return nil
}

// InvalidateUser nulls every derived-data timestamp so the next profile,
// reputation and export runs recompute the user.
func (s *Store) InvalidateUser(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(invalidation()).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate user %s: %w", id, err)
	}
	return nil
}

func invalidation() map[string]any {
	return map[string]any{
		"last_refreshed_info":              nil,
		"last_refreshed_reputation_points": nil,
		"last_refreshed_reputation_rank":   nil,
		"last_refreshed_export":            nil,
	}
}

// GetUser returns one user or gorm.ErrRecordNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return u, err
}

// UsersByID loads users keyed by id. Unknown ids are absent from the map.
func (s *Store) UsersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// StaleProfileIDs returns users whose profile was never fetched or was fetched
// before cutoff.
func (s *Store) StaleProfileIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("last_refreshed_info IS NULL OR last_refreshed_info < ?", cutoff).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale profiles: %w", err)
	}
	return ids, nil
}

// ProfileUpdate holds the fields written by the profile refresher.
type ProfileUpdate struct {
	Name         string
	Avatar       string
	AvatarMedium string
	AvatarFull   string
	ProfileURL   string
}

// UpdateProfile writes profile fields and stamps LastRefreshedInfo.
func (s *Store) UpdateProfile(ctx context.Context, id string, p ProfileUpdate, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":                p.Name,
			"avatar":              p.Avatar,
			"avatar_medium":       p.AvatarMedium,
			"avatar_full":         p.AvatarFull,
			"profile_url":         p.ProfileURL,
			"last_refreshed_info": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	return nil
}

// UnscoredUserIDs returns users whose reputation points are stale.
func (s *Store) UnscoredUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("last_refreshed_reputation_points IS NULL").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored users: %w", err)
	}
	return ids, nil
}

// Points holds the three reputation figures of one user.
type Points struct {
	Current     int
	MonthBefore int
	MonthChange int
}

// SavePoints writes reputation figures and stamps LastRefreshedReputationPoints.
func (s *Store) SavePoints(ctx context.Context, id string, p Points, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reputation_points":                p.Current,
			"reputation_points_month_before":   p.MonthBefore,
			"reputation_points_month_change":   p.MonthChange,
			"last_refreshed_reputation_points": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save points for %s: %w", id, err)
	}
	return nil
}

// UserPoints is a projection used for ranking.
type UserPoints struct {
	ID               string
	ReputationPoints int
}

// AllPoints returns every user's current points, highest first.
func (s *Store) AllPoints(ctx context.Context) ([]UserPoints, error) {
	var rows []UserPoints
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "reputation_points").
		Order("reputation_points DESC, id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load points: %w", err)
	}
	return rows, nil
}

// SaveRanks writes every rank with one shared timestamp in a single transaction.
func (s *Store) SaveRanks(ctx context.Context, ranks map[string]int, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, rank := range ranks {
			err := tx.Model(&models.User{}).
				Where("id = ?", id).
				Updates(map[string]any{
					"reputation_rank":                rank,
					"last_refreshed_reputation_rank": at,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to save rank for %s: %w", id, err)
			}
		}
		return nil
	})
}

// UnexportedUsers returns users whose export decision is stale.
func (s *Store) UnexportedUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("last_refreshed_export IS NULL").
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unexported users: %w", err)
	}
	return users, nil
}

// StampExport marks the export decision of ids as current.
func (s *Store) StampExport(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", ids).
		Update("last_refreshed_export", at).Error
	if err != nil {
		return fmt.Errorf("failed to stamp export: %w", err)
	}
	return nil
}
