package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bansync/core/store"
	"bansync/core/timeout"

	"go.uber.org/zap"
)

// Store is the persistence the refresher needs.
type Store interface {
	StaleProfileIDs(ctx context.Context, cutoff time.Time) ([]string, error)
	UpdateProfile(ctx context.Context, id string, p store.ProfileUpdate, at time.Time) error
}

// Refresher re-fetches stale profiles in batches.
type Refresher struct {
	store  Store
	api    API
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(store Store, api API, cfg Config, logger *zap.Logger) *Refresher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	return &Refresher{store: store, api: api, cfg: cfg, logger: logger, now: time.Now}
}

// Report summarizes one refresh run.
type Report struct {
	Stale         int `json:"stale"`
	Batches       int `json:"batches"`
	Abandoned     int `json:"abandoned_batches"`
	Updated       int `json:"updated"`
	Missing       int `json:"missing"`
	WriteFailures int `json:"write_failures"`
}

// Run refreshes every user whose profile is missing or older than StaleAfter.
// A rate-limited batch aborts the run and the error is returned; other batch
// failures are logged and the batch stays stale for the next run.
func (r *Refresher) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	ids, err := r.store.StaleProfileIDs(ctx, r.now().Add(-r.cfg.StaleAfter))
	if err != nil {
		return report, err
	}
	report.Stale = len(ids)

	for start := 0; start < len(ids); start += r.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch := ids[start:min(start+r.cfg.BatchSize, len(ids))]
		report.Batches++

		profiles, err := r.fetch(ctx, batch)
		if errors.Is(err, ErrRateLimited) {
			r.logger.Warn("Profile API rate limited, aborting refresh",
				zap.Int("batch", report.Batches),
				zap.Int("updated", report.Updated))
			return report, err
		}
		if err != nil {
			report.Abandoned++
			r.logger.Error("Abandoning profile batch", zap.Strings("ids", batch), zap.Error(err))
			continue
		}

		r.apply(ctx, batch, profiles, report)
	}

	r.logger.Info("Profile refresh finished",
		zap.Int("stale", report.Stale),
		zap.Int("updated", report.Updated),
		zap.Int("abandoned_batches", report.Abandoned))

	return report, nil
}

// fetch calls the API for one batch. Timed out attempts are retried up to
// cfg.Attempts; any other failure is returned at once.
func (r *Refresher) fetch(ctx context.Context, ids []string) ([]Profile, error) {
	var last error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		res := timeout.Do(ctx, r.cfg.Timeout, func(ctx context.Context) ([]Profile, error) {
			return r.api.Summaries(ctx, ids)
		})

		switch res.Outcome {
		case timeout.Succeeded:
			return res.Value, nil
		case timeout.TimedOut:
			last = res.Err
			r.logger.Warn("Profile batch timed out",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.cfg.Attempts))
		default:
			return nil, res.Err
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", r.cfg.Attempts, last)
}

// apply writes the returned profiles that belong to the batch. Ids absent from
// the response are left stale.
func (r *Refresher) apply(ctx context.Context, batch []string, profiles []Profile, report *Report) {
	wanted := make(map[string]struct{}, len(batch))
	for _, id := range batch {
		wanted[id] = struct{}{}
	}

	now := r.now().UTC().Truncate(time.Second)
	for _, p := range profiles {
		if _, ok := wanted[p.ID]; !ok {
			continue
		}
		delete(wanted, p.ID)

		update := store.ProfileUpdate{
			Name:         p.Name,
			Avatar:       p.Avatar,
			AvatarMedium: p.AvatarMedium,
			AvatarFull:   p.AvatarFull,
			ProfileURL:   p.ProfileURL,
		}
		res := timeout.Run(ctx, r.cfg.WriteTimeout, func(ctx context.Context) error {
			return r.store.UpdateProfile(ctx, p.ID, update, now)
		})
		if _, err := res.Unwrap(); err != nil {
			report.WriteFailures++
			r.logger.Error("Failed to update profile", zap.String("user_id", p.ID), zap.Error(err))
			continue
		}
		report.Updated++
	}
	report.Missing += len(wanted)
}
