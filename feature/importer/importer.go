package importer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"bansync/core/models"
	"bansync/core/pool"
	"bansync/core/reconcile"
	"bansync/feature/sources"

	"go.uber.org/zap"
)

// Store is the persistence the importer needs.
type Store interface {
	InsertUsersIfAbsent(ctx context.Context, ids []string) error
	FindOrCreateBan(ctx context.Context, ban models.Ban) (models.Ban, bool, error)
	UpdateBan(ctx context.Context, id string, fields map[string]any) error
	InvalidateUser(ctx context.Context, id string) error

	CountOrphans(ctx context.Context, listID string, keep []string) (int64, error)
	InvalidateOrphanOwners(ctx context.Context, listID string, keep []string) error
	DeleteOrphans(ctx context.Context, listID string, keep []string) (int64, error)
}

// Importer upserts ban batches through a bounded worker pool and reconciles
// orphans once the pool has drained.
type Importer struct {
	store  Store
	cfg    Config
	logger *zap.Logger
}

// New creates an importer.
func New(store Store, cfg Config, logger *zap.Logger) *Importer {
	return &Importer{store: store, cfg: cfg, logger: logger}
}

// Session is one import run: a worker pool plus the touched-list tracker.
type Session struct {
	imp     *Importer
	pool    *pool.Pool
	tracker *reconcile.Tracker
	logger  *zap.Logger

	batches  atomic.Int64
	dropped  atomic.Int64
	queued   atomic.Int64
	created  atomic.Int64
	updated  atomic.Int64
	flipped  atomic.Int64
	failures atomic.Int64
}

// Begin starts a session with its own worker pool.
func (i *Importer) Begin() *Session {
	return &Session{
		imp:     i,
		pool:    pool.New(i.cfg.Concurrency, i.cfg.QueueSize, i.logger),
		tracker: reconcile.NewTracker(),
		logger:  i.logger,
	}
}

// Tracker exposes the session's touched lists and imported ids.
func (s *Session) Tracker() *reconcile.Tracker {
	return s.tracker
}

// QueueBatch makes sure every referenced user exists, records the batch in the
// tracker and enqueues one save per ban. If the user upsert fails the batch is
// dropped and nothing is recorded or enqueued.
func (s *Session) QueueBatch(ctx context.Context, batch []sources.RawBan) error {
	if len(batch) == 0 {
		return nil
	}
	s.batches.Add(1)

	userIDs := make([]string, 0, len(batch))
	for _, raw := range batch {
		userIDs = append(userIDs, raw.UserID)
	}

	if err := s.imp.store.InsertUsersIfAbsent(ctx, userIDs); err != nil {
		s.dropped.Add(1)
		s.logger.Error("Dropping batch, failed to upsert users",
			zap.Int("size", len(batch)),
			zap.Error(err))
		return fmt.Errorf("failed to upsert users: %w", err)
	}

	for _, raw := range batch {
		s.tracker.Touch(raw.ListID, raw.ID)
	}

	for _, raw := range batch {
		if err := s.pool.Submit(ctx, func() { s.saveOne(ctx, raw) }); err != nil {
			return fmt.Errorf("failed to enqueue ban %s: %w", raw.ID, err)
		}
		s.queued.Add(1)
	}
	return nil
}

// saveOne persists one ban. Failures are logged and never affect other saves.
func (s *Session) saveOne(ctx context.Context, raw sources.RawBan) {
	store := s.imp.store
	logger := s.logger.With(zap.String("ban_id", raw.ID), zap.String("list_id", raw.ListID))

	stored, created, err := store.FindOrCreateBan(ctx, raw.Ban())
	if err != nil {
		s.failures.Add(1)
		logger.Error("Failed to save ban", zap.Error(err))
		return
	}

	if created {
		s.created.Add(1)
		if err := store.InvalidateUser(ctx, raw.UserID); err != nil {
			s.failures.Add(1)
			logger.Error("Failed to invalidate user of new ban", zap.String("user_id", raw.UserID), zap.Error(err))
		}
		return
	}

	changes, flipped := diff(stored, raw)
	if len(changes) == 0 {
		return
	}

	if err := store.UpdateBan(ctx, raw.ID, changes); err != nil {
		s.failures.Add(1)
		logger.Error("Failed to update ban", zap.Error(err))
		return
	}
	s.updated.Add(1)

	if flipped {
		s.flipped.Add(1)
		if err := store.InvalidateUser(ctx, stored.UserID); err != nil {
			s.failures.Add(1)
			logger.Error("Failed to invalidate user of changed ban", zap.String("user_id", stored.UserID), zap.Error(err))
		}
	}
}

// diff returns the columns of stored that differ from raw and whether the
// expired flag flipped. expires and expired are always written together.
func diff(stored models.Ban, raw sources.RawBan) (map[string]any, bool) {
	changes := map[string]any{}

	flipped := stored.Expired != raw.Expired
	if flipped || !sameTime(stored.Expires, raw.Expires) {
		changes["expires"] = raw.Expires
		changes["expired"] = raw.Expired
	}
	if stored.Reason != raw.Reason {
		changes["reason"] = raw.Reason
	}
	if stored.RawReason != raw.RawReason {
		changes["raw_reason"] = raw.RawReason
	}
	if stored.RawNote != raw.RawNote {
		changes["raw_note"] = raw.RawNote
	}
	return changes, flipped
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Finish waits for every enqueued save to complete and then reconciles the
// touched lists. It must be called exactly once.
func (s *Session) Finish(ctx context.Context) (*Report, error) {
	s.pool.DrainAndWait()

	report := s.report()

	plan, err := reconcile.BuildPlan(ctx, orphanAdapter{s.imp.store}, s.tracker)
	if err != nil {
		return report, err
	}
	report.Plan = plan

	opts := reconcile.Options{DryRun: s.imp.cfg.DryRun}
	deleted, err := reconcile.ApplyPlan(ctx, orphanAdapter{s.imp.store}, plan, opts)
	report.Deleted = deleted
	report.DryRun = opts.DryRun
	if err != nil {
		return report, err
	}
	if opts.DryRun && plan.Summary.Orphans > 0 {
		s.logger.Info("Dry run, orphans left in place",
			zap.Int("lists", plan.Summary.WithOrphans),
			zap.Int64("orphans", plan.Summary.Orphans))
	}

	s.logger.Info("Import finished",
		zap.Int64("queued", report.Queued),
		zap.Int64("created", report.Created),
		zap.Int64("updated", report.Updated),
		zap.Int64("failures", report.Failures),
		zap.Int64("orphans_deleted", report.Deleted))

	return report, nil
}

func (s *Session) report() *Report {
	return &Report{
		Batches:  s.batches.Load(),
		Dropped:  s.dropped.Load(),
		Queued:   s.queued.Load(),
		Created:  s.created.Load(),
		Updated:  s.updated.Load(),
		Flipped:  s.flipped.Load(),
		Failures: s.failures.Load(),
	}
}

// Report summarizes one import run.
type Report struct {
	Lists       int             `json:"lists"`
	FailedLists []string        `json:"failed_lists"`
	Batches     int64           `json:"batches"`
	Dropped     int64           `json:"dropped_batches"`
	Queued      int64           `json:"queued"`
	Created     int64           `json:"created"`
	Updated     int64           `json:"updated"`
	Flipped     int64           `json:"expired_flips"`
	Failures    int64           `json:"failures"`
	DryRun      bool            `json:"dry_run"`
	Deleted     int64           `json:"orphans_deleted"`
	Plan        *reconcile.Plan `json:"plan,omitempty"`
}
