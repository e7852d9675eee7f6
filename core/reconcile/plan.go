package reconcile

import (
	"context"
	"fmt"
)

// BuildPlan counts orphans for every list in the tracker's touched set.
// Lists outside the touched set are never scanned.
// It does NOT mutate anything; use ApplyPlan for that.
func BuildPlan(ctx context.Context, adapter Adapter, tracker *Tracker) (*Plan, error) {
	lists := tracker.Lists()
	keep := tracker.Keep()

	plan := &Plan{
		Lists: make([]ListPlan, 0, len(lists)),
		Keep:  keep,
	}
	plan.Summary.Touched = len(lists)

	for _, listID := range lists {
		n, err := adapter.CountOrphans(ctx, listID, keep)
		if err != nil {
			return nil, fmt.Errorf("failed to count orphans for list %s: %w", listID, err)
		}
		plan.Lists = append(plan.Lists, ListPlan{ListID: listID, Orphans: n})
		if n > 0 {
			plan.Summary.WithOrphans++
			plan.Summary.Orphans += n
		}
	}

	return plan, nil
}

// ApplyPlan invalidates the owners of every orphan and then deletes the orphans,
// one list at a time. Lists with no orphans are skipped.
// Returns the number of deleted bans and the first error encountered; a failed
// invalidation leaves that list's orphans in place.
func ApplyPlan(ctx context.Context, adapter Adapter, plan *Plan, opts Options) (deleted int64, err error) {
	if opts.DryRun {
		return 0, nil
	}

	for _, lp := range plan.Lists {
		if lp.Orphans == 0 {
			continue
		}

		if err := adapter.InvalidateOwners(ctx, lp.ListID, plan.Keep); err != nil {
			return deleted, fmt.Errorf("failed to invalidate owners for list %s: %w", lp.ListID, err)
		}

		n, err := adapter.DeleteOrphans(ctx, lp.ListID, plan.Keep)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete orphans for list %s: %w", lp.ListID, err)
		}
		deleted += n
	}

	return deleted, nil
}
