package reputation

import (
	"context"
	"time"

	"bansync/core/models"
	"bansync/core/store"

	"go.uber.org/zap"
)

// chunkSize bounds the users whose bans are loaded at once.
const chunkSize = 500

// Store is the persistence the scorer needs.
type Store interface {
	UnscoredUserIDs(ctx context.Context) ([]string, error)
	BansForUsers(ctx context.Context, ids []string) ([]models.Ban, error)
	SavePoints(ctx context.Context, id string, p store.Points, at time.Time) error
	AllPoints(ctx context.Context) ([]store.UserPoints, error)
	SaveRanks(ctx context.Context, ranks map[string]int, at time.Time) error
}

// Scorer recomputes reputation points for invalidated users and ranks everyone.
type Scorer struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewScorer creates a scorer.
func NewScorer(store Store, logger *zap.Logger) *Scorer {
	return &Scorer{store: store, logger: logger, now: time.Now}
}

// Report summarizes one scoring run.
type Report struct {
	Scored   int `json:"scored"`
	Failures int `json:"failures"`
	Ranked   int `json:"ranked"`
}

// Run scores every user whose points timestamp is null, then re-ranks the
// whole population with one shared timestamp.
func (s *Scorer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	now := s.now().UTC().Truncate(time.Second)
	cutoff := now.AddDate(0, -1, 0)

	ids, err := s.store.UnscoredUserIDs(ctx)
	if err != nil {
		return report, err
	}

	for start := 0; start < len(ids); start += chunkSize {
		chunk := ids[start:min(start+chunkSize, len(ids))]

		bans, err := s.store.BansForUsers(ctx, chunk)
		if err != nil {
			return report, err
		}
		byUser := make(map[string][]models.Ban, len(chunk))
		for _, b := range bans {
			byUser[b.UserID] = append(byUser[b.UserID], b)
		}

		for _, id := range chunk {
			current := Points(byUser[id])
			before := PointsAsOf(byUser[id], cutoff)
			p := store.Points{Current: current, MonthBefore: before, MonthChange: current - before}

			if err := s.store.SavePoints(ctx, id, p, now); err != nil {
				report.Failures++
				s.logger.Error("Failed to save points", zap.String("user_id", id), zap.Error(err))
				continue
			}
			report.Scored++
		}
	}

	all, err := s.store.AllPoints(ctx)
	if err != nil {
		return report, err
	}
	ranks := Rank(all)
	if err := s.store.SaveRanks(ctx, ranks, now); err != nil {
		return report, err
	}
	report.Ranked = len(ranks)

	s.logger.Info("Reputation scoring finished",
		zap.Int("scored", report.Scored),
		zap.Int("ranked", report.Ranked),
		zap.Int("failures", report.Failures))

	return report, nil
}
