// Package jobs runs the sync pipeline on timers and on demand.
//
// The Runner wraps every job in a singleflight group keyed by name, so a
// scheduled tick and an HTTP trigger never run the same job twice at once.
// Each execution gets a logger tagged with `job` and a fresh `run_id`.
//
// Routes:
//
//	GET  /jobs              status of every job
//	POST /jobs/:name        start a job in the background (202, or 409 if running)
//	POST /jobs/:name?wait=true  run and return the job report
//
// Jobs: import, profiles, reputation, export and all (the four in order).
package jobs
