package export

import (
	"context"
	"fmt"
	"slices"

	"bansync/core/models"
	"bansync/core/notify"

	"go.uber.org/zap"
)

// PropagatorStore is the persistence the propagator needs.
type PropagatorStore interface {
	PendingExports(ctx context.Context) ([]models.ExportRecord, error)
	ExportLists(ctx context.Context) ([]models.BanSourceList, error)
	UsersByID(ctx context.Context, ids []string) (map[string]models.User, error)
	SetExportStatus(ctx context.Context, id uint, status models.ExportStatus) error
	DeleteExportRecord(ctx context.Context, id uint) error
}

// Propagator applies pending export records to their targets and alerts the
// list's notification channel.
type Propagator struct {
	store    PropagatorStore
	targets  Targets
	notifier notify.Notifier
	cfg      Config
	logger   *zap.Logger
}

// NewPropagator creates a propagator.
func NewPropagator(store PropagatorStore, targets Targets, notifier notify.Notifier, cfg Config, logger *zap.Logger) *Propagator {
	if cfg.NotifyCap <= 0 {
		cfg.NotifyCap = 50
	}
	return &Propagator{store: store, targets: targets, notifier: notifier, cfg: cfg, logger: logger}
}

// listTally counts the pending changes of one list and what became of them.
type listTally struct {
	pending int
	created int
	deleted int
	failed  int
}

// PropagateReport summarizes one propagation run.
type PropagateReport struct {
	Pending   int `json:"pending"`
	Created   int `json:"created"`
	Deleted   int `json:"deleted"`
	Failures  int `json:"failures"`
	Alerts    int `json:"alerts"`
	Summaries int `json:"summaries"`
}

// Run processes every PENDING_CREATE and PENDING_DELETE record. A record gets
// an individual alert only while its list has fewer than NotifyCap pending
// changes; lists at or above the cap get exactly one summary alert instead.
func (p *Propagator) Run(ctx context.Context) (*PropagateReport, error) {
	report := &PropagateReport{}

	recs, err := p.store.PendingExports(ctx)
	if err != nil {
		return report, err
	}
	report.Pending = len(recs)
	if len(recs) == 0 {
		return report, nil
	}

	exportLists, err := p.store.ExportLists(ctx)
	if err != nil {
		return report, err
	}
	lists := make(map[string]models.BanSourceList, len(exportLists))
	for _, l := range exportLists {
		lists[l.ID] = l
	}

	userIDs := make([]string, 0, len(recs))
	for _, r := range recs {
		userIDs = append(userIDs, r.UserID)
	}
	slices.Sort(userIDs)
	users, err := p.store.UsersByID(ctx, slices.Compact(userIDs))
	if err != nil {
		return report, err
	}

	tallies := map[string]*listTally{}
	for _, r := range recs {
		t, ok := tallies[r.ListID]
		if !ok {
			t = &listTally{}
			tallies[r.ListID] = t
		}
		t.pending++
	}

	notifyRecord := make(map[uint]bool, len(recs))
	for _, r := range recs {
		notifyRecord[r.ID] = tallies[r.ListID].pending < p.cfg.NotifyCap
	}

	for _, rec := range recs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		tally := tallies[rec.ListID]
		list, ok := lists[rec.ListID]
		if !ok {
			tally.failed++
			report.Failures++
			p.logger.Error("Export record references unknown list",
				zap.Uint("record_id", rec.ID), zap.String("list_id", rec.ListID))
			continue
		}

		user, ok := users[rec.UserID]
		if !ok {
			user = models.User{ID: rec.UserID}
		}

		alert, err := p.apply(ctx, list, rec, user)
		if err != nil {
			tally.failed++
			report.Failures++
			p.logger.Error("Failed to propagate export record",
				zap.Uint("record_id", rec.ID),
				zap.String("list_id", rec.ListID),
				zap.String("user_id", rec.UserID),
				zap.String("status", string(rec.Status)),
				zap.Error(err))
			continue
		}

		if rec.Status == models.ExportPendingCreate {
			tally.created++
			report.Created++
		} else {
			tally.deleted++
			report.Deleted++
		}

		if notifyRecord[rec.ID] && list.NotificationChannel != "" {
			p.notifier.Notify(ctx, list.NotificationChannel, alert)
			report.Alerts++
		}
	}

	listIDs := make([]string, 0, len(tallies))
	for id := range tallies {
		listIDs = append(listIDs, id)
	}
	slices.Sort(listIDs)

	for _, id := range listIDs {
		t := tallies[id]
		list, ok := lists[id]
		if !ok || t.pending < p.cfg.NotifyCap || list.NotificationChannel == "" {
			continue
		}
		p.notifier.Notify(ctx, list.NotificationChannel, summaryAlert(list, t))
		report.Summaries++
	}

	p.logger.Info("Export propagation finished",
		zap.Int("pending", report.Pending),
		zap.Int("created", report.Created),
		zap.Int("deleted", report.Deleted),
		zap.Int("failures", report.Failures),
		zap.Int("summaries", report.Summaries))

	return report, nil
}

// apply performs one record's target call and local state change and returns
// the alert describing it.
func (p *Propagator) apply(ctx context.Context, list models.BanSourceList, rec models.ExportRecord, user models.User) (notify.Alert, error) {
	target, err := p.targets.Get(list)
	if err != nil {
		return notify.Alert{}, err
	}

	switch rec.Status {
	case models.ExportPendingCreate:
		if err := target.Create(ctx, list, user); err != nil {
			return notify.Alert{}, err
		}
		if err := p.store.SetExportStatus(ctx, rec.ID, models.ExportCreated); err != nil {
			return notify.Alert{}, err
		}
		return userAlert(fmt.Sprintf("Added to %s", listName(list)), notify.ColorCreated, user), nil

	case models.ExportPendingDelete:
		if err := target.Delete(ctx, list, user); err != nil {
			return notify.Alert{}, err
		}
		if err := p.store.DeleteExportRecord(ctx, rec.ID); err != nil {
			return notify.Alert{}, err
		}
		return userAlert(fmt.Sprintf("Removed from %s", listName(list)), notify.ColorRemoved, user), nil
	}

	return notify.Alert{}, fmt.Errorf("unexpected status %q", rec.Status)
}

func userAlert(title, color string, user models.User) notify.Alert {
	name := user.Name
	if name == "" {
		name = user.ID
	}
	desc := name
	if user.ProfileURL != "" {
		desc += "\n" + user.ProfileURL
	}
	return notify.Alert{Title: title, Description: desc, Color: color, Thumbnail: user.AvatarFull}
}

func summaryAlert(list models.BanSourceList, t *listTally) notify.Alert {
	return notify.Alert{
		Title: fmt.Sprintf("%d changes to %s", t.pending, listName(list)),
		Description: fmt.Sprintf("Individual alerts were suppressed. Added: %d, removed: %d, failed: %d.",
			t.created, t.deleted, t.failed),
		Color: notify.ColorSummary,
	}
}

func listName(list models.BanSourceList) string {
	if list.Name != "" {
		return list.Name
	}
	return list.ID
}
