package importer

import (
	"context"

	"bansync/core/reconcile"
)

// orphanAdapter exposes the importer store to the reconciler.
type orphanAdapter struct {
	store Store
}

var _ reconcile.Adapter = orphanAdapter{}

func (a orphanAdapter) CountOrphans(ctx context.Context, listID string, keep []string) (int64, error) {
	return a.store.CountOrphans(ctx, listID, keep)
}

func (a orphanAdapter) InvalidateOwners(ctx context.Context, listID string, keep []string) error {
	return a.store.InvalidateOrphanOwners(ctx, listID, keep)
}

func (a orphanAdapter) DeleteOrphans(ctx context.Context, listID string, keep []string) (int64, error) {
	return a.store.DeleteOrphans(ctx, listID, keep)
}
