package reconcile

import "context"

// Adapter performs the store operations the reconciler needs. Every method
// selects bans with the same predicate: belonging to listID and id not in keep.
type Adapter interface {
	// CountOrphans counts the bans of listID missing from keep.
	CountOrphans(ctx context.Context, listID string, keep []string) (int64, error)

	// InvalidateOwners nulls every derived-data timestamp of the users owning
	// orphans of listID. It must complete before DeleteOrphans runs because
	// deletion removes the join back to those users.
	InvalidateOwners(ctx context.Context, listID string, keep []string) error

	// DeleteOrphans removes the orphans of listID and returns how many were removed.
	DeleteOrphans(ctx context.Context, listID string, keep []string) (int64, error)
}
