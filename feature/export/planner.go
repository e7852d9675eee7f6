package export

import (
	"context"
	"time"

	"bansync/core/models"

	"go.uber.org/zap"
)

// PlannerStore is the persistence the planner needs.
type PlannerStore interface {
	UnexportedUsers(ctx context.Context) ([]models.User, error)
	ExportLists(ctx context.Context) ([]models.BanSourceList, error)
	ActiveBanUsers(ctx context.Context, ids []string) (map[string]bool, error)
	ExportRecordsForUsers(ctx context.Context, ids []string) ([]models.ExportRecord, error)
	CreateExportRecord(ctx context.Context, rec *models.ExportRecord) error
	SetExportStatus(ctx context.Context, id uint, status models.ExportStatus) error
	DeleteExportRecord(ctx context.Context, id uint) error
	StampExport(ctx context.Context, ids []string, at time.Time) error
}

// Planner decides, for users whose export decision was invalidated, which
// export lists should carry them and queues the difference as pending records.
type Planner struct {
	store  PlannerStore
	logger *zap.Logger
	now    func() time.Time
}

// NewPlanner creates a planner.
func NewPlanner(store PlannerStore, logger *zap.Logger) *Planner {
	return &Planner{store: store, logger: logger, now: time.Now}
}

// PlanReport summarizes one planning run.
type PlanReport struct {
	Users    int `json:"users"`
	Waiting  int `json:"waiting_for_score"`
	Queued   int `json:"queued_create"`
	Removed  int `json:"queued_delete"`
	Failures int `json:"failures"`
}

// Run plans every unexported user. A user is published to a list when they own
// an active ban and have at least the list's MinPoints. Users whose points are
// not computed yet are left for a later run.
func (p *Planner) Run(ctx context.Context) (*PlanReport, error) {
	report := &PlanReport{}

	all, err := p.store.UnexportedUsers(ctx)
	if err != nil {
		return report, err
	}

	users := make([]models.User, 0, len(all))
	for _, u := range all {
		if u.LastRefreshedReputationPoints == nil {
			report.Waiting++
			continue
		}
		users = append(users, u)
	}
	report.Users = len(users)
	if len(users) == 0 {
		return report, nil
	}

	lists, err := p.store.ExportLists(ctx)
	if err != nil {
		return report, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	active, err := p.store.ActiveBanUsers(ctx, ids)
	if err != nil {
		return report, err
	}

	recs, err := p.store.ExportRecordsForUsers(ctx, ids)
	if err != nil {
		return report, err
	}
	existing := map[string]map[string][]models.ExportRecord{}
	for _, r := range recs {
		if existing[r.UserID] == nil {
			existing[r.UserID] = map[string][]models.ExportRecord{}
		}
		existing[r.UserID][r.ListID] = append(existing[r.UserID][r.ListID], r)
	}

	done := make([]string, 0, len(users))
	for _, u := range users {
		ok := true
		for _, list := range lists {
			want := active[u.ID] && u.ReputationPoints >= list.MinPoints
			if err := p.reconcile(ctx, u.ID, list.ID, want, existing[u.ID][list.ID], report); err != nil {
				ok = false
				report.Failures++
				p.logger.Error("Failed to plan export",
					zap.String("user_id", u.ID),
					zap.String("list_id", list.ID),
					zap.Error(err))
			}
		}
		if ok {
			done = append(done, u.ID)
		}
	}

	if err := p.store.StampExport(ctx, done, p.now().UTC().Truncate(time.Second)); err != nil {
		return report, err
	}

	p.logger.Info("Export planning finished",
		zap.Int("users", report.Users),
		zap.Int("queued_create", report.Queued),
		zap.Int("queued_delete", report.Removed),
		zap.Int("failures", report.Failures))

	return report, nil
}

// reconcile moves the records of one user on one list towards want.
func (p *Planner) reconcile(ctx context.Context, userID, listID string, want bool, recs []models.ExportRecord, report *PlanReport) error {
	if want {
		if len(recs) == 0 {
			rec := &models.ExportRecord{UserID: userID, ListID: listID, Status: models.ExportPendingCreate}
			if err := p.store.CreateExportRecord(ctx, rec); err != nil {
				return err
			}
			report.Queued++
			return nil
		}
		for _, r := range recs {
			// Still published at the target; cancel the pending removal.
			if r.Status == models.ExportPendingDelete {
				if err := p.store.SetExportStatus(ctx, r.ID, models.ExportCreated); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, r := range recs {
		switch r.Status {
		case models.ExportCreated:
			if err := p.store.SetExportStatus(ctx, r.ID, models.ExportPendingDelete); err != nil {
				return err
			}
			report.Removed++
		case models.ExportPendingCreate:
			// Never reached the target.
			if err := p.store.DeleteExportRecord(ctx, r.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
