// Package pool provides the bounded worker pool used by the importer.
//
// A fixed number of workers consume tasks from a bounded queue. Submission and
// execution overlap: the ingestion loop keeps feeding the queue while workers persist
// records, and Submit applies backpressure once the queue is full. DrainAndWait is the
// run-completion signal: it returns only when every task submitted before it has
// finished, not merely when the submit calls have returned.
//
// # Usage
//
//	p := pool.New(2, 100, logger)
//	for _, item := range items {
//	    item := item
//	    _ = p.Submit(ctx, func() { save(item) })
//	}
//	p.DrainAndWait()
package pool
