// Package reconcile removes bans that disappeared upstream.
//
// After an import run has drained, every ban stored under a touched list whose
// id was not imported during the run is an orphan. The reconciler works in two
// phases, mirroring a plan/apply workflow:
//
//  1. BuildPlan counts orphans per touched list. Nothing is mutated.
//  2. ApplyPlan, per list with orphans, first invalidates the derived data of
//     every owning user and only then deletes the orphans with the identical
//     selection predicate.
//
// Lists outside the touched set are never scanned, so a list whose fetch failed
// (and was therefore forgotten by the Tracker) keeps its bans.
//
// # Usage
//
//	tracker := reconcile.NewTracker()
//	tracker.Touch("list-a", "ban-1", "ban-2")
//	plan, err := reconcile.BuildPlan(ctx, adapter, tracker)
//	deleted, err := reconcile.ApplyPlan(ctx, adapter, plan, reconcile.Options{})
package reconcile
