// Package export publishes selected users to export lists.
//
// The Planner runs first: for every user whose export timestamp was
// invalidated (and whose points are current) it decides per export list
// whether the user belongs there and records the difference as
// PENDING_CREATE or PENDING_DELETE ExportRecords.
//
// The Propagator then applies pending records to the list's Target
// (bucket-export writes `<prefix>/<list>/<user>.json`) and alerts the list's
// notification channel. When a list has EXPORT_NOTIFY_CAP or more pending
// changes in one run, its individual alerts are suppressed and exactly one
// summary alert is sent instead.
package export
