package reconcile

import (
	"slices"
	"sync"
)

// Tracker records what an import run touched: the set of source lists and the
// ordered collection of ban ids imported. Duplicate ids are kept as reported.
// It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	lists    map[string]struct{}
	imported []string
}

// NewTracker creates an empty tracker for one run.
func NewTracker() *Tracker {
	return &Tracker{lists: make(map[string]struct{})}
}

// Touch marks listID as touched and appends banIDs to the imported collection.
func (t *Tracker) Touch(listID string, banIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lists[listID] = struct{}{}
	t.imported = append(t.imported, banIDs...)
}

// Forget removes listID from the touched set so it is not reconciled.
func (t *Tracker) Forget(listID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lists, listID)
}

// Lists returns the touched list ids, sorted.
func (t *Tracker) Lists() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.lists))
	for id := range t.lists {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Imported returns the imported ids in arrival order, duplicates included.
func (t *Tracker) Imported() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.imported)
}

// Keep returns the distinct imported ids, sorted. This is the set orphans are
// selected against.
func (t *Tracker) Keep() []string {
	ids := t.Imported()
	slices.Sort(ids)
	return slices.Compact(ids)
}

// ListPlan is the orphan count of one touched list.
type ListPlan struct {
	ListID  string `json:"list_id"`
	Orphans int64  `json:"orphans"`
}

// Plan contains the orphan counts of every touched list.
type Plan struct {
	Lists []ListPlan `json:"lists"`
	// Keep is the id set orphans are selected against.
	Keep []string `json:"-"`
	// Summary aggregates the per-list counts.
	Summary Summary `json:"summary"`
}

// Summary aggregates a plan.
type Summary struct {
	// Touched counts lists considered.
	Touched int `json:"touched"`
	// WithOrphans counts lists that have at least one orphan.
	WithOrphans int `json:"with_orphans"`
	// Orphans counts orphaned bans across all lists.
	Orphans int64 `json:"orphans"`
}

// Options controls ApplyPlan.
type Options struct {
	// DryRun prevents any mutation if true.
	DryRun bool
}
