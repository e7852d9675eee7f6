// Package importer writes fetched ban lists into the store.
//
// A Session is one import run. QueueBatch first inserts every referenced user
// (insert-if-absent), so no ban is written before its owner exists, then hands
// each ban to a bounded worker pool. A save task finds or creates the ban:
//
//   - a new ban invalidates all derived data of its owner
//   - an expired flag flip updates the ban and invalidates its owner
//   - other changes (reason, note, expiry date) are written without invalidation
//
// Finish waits for the pool to drain and then runs the orphan reconciler over
// the lists touched during the session. Importer.Run drives a whole run from the
// source providers.
package importer
