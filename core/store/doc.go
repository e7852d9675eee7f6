// Package store is the persistence layer shared by every job.
//
// It wraps a *gorm.DB and exposes the handful of operations the jobs need:
// insert-if-absent for users, find-or-create for bans, conditional updates,
// and delete-by-predicate for orphaned bans. Callers depend on narrow
// interfaces declared in their own packages; *Store satisfies all of them.
//
// Production runs on MySQL; tests use an in-memory SQLite database from
// the storetest package.
package store
