package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"bansync/core/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownJob is returned for a name no job is registered under.
var ErrUnknownJob = errors.New("unknown job")

// Job is a named unit of work. Run returns a JSON-serializable report.
type Job struct {
	Name string
	Run  func(ctx context.Context, logger *zap.Logger) (any, error)
}

// Status is the last known state of a job.
type Status struct {
	Name       string     `json:"name"`
	Running    bool       `json:"running"`
	Runs       int        `json:"runs"`
	LastStart  *time.Time `json:"last_start,omitempty"`
	LastEnd    *time.Time `json:"last_end,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	LastResult any        `json:"last_result,omitempty"`
}

// Runner executes registered jobs. Concurrent requests for the same job share
// a single execution.
type Runner struct {
	jobs   map[string]Job
	group  singleflight.Group
	logger *zap.Logger

	mu     sync.RWMutex
	status map[string]*Status
}

// NewRunner creates a runner for jobs.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	r := &Runner{
		jobs:   make(map[string]Job, len(jobs)),
		logger: logger,
		status: make(map[string]*Status, len(jobs)),
	}
	for _, j := range jobs {
		r.jobs[j.Name] = j
		r.status[j.Name] = &Status{Name: j.Name}
	}
	return r
}

// Run executes the named job, or joins the execution already in flight.
func (r *Runner) Run(ctx context.Context, name string) (any, error) {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		return r.execute(ctx, job)
	})
	return v, err
}

// Running reports whether the named job is executing.
func (r *Runner) Running(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.status[name]
	return ok && s.Running
}

// Has reports whether a job is registered under name.
func (r *Runner) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.jobs[name]
	return ok
}

// Register adds or replaces a job.
func (r *Runner) Register(j Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.Name] = j
	r.status[j.Name] = &Status{Name: j.Name}
}

// Statuses returns a snapshot of every job's status, sorted by name.
func (r *Runner) Statuses() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.status))
	for _, s := range r.status {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Status) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

func (r *Runner) execute(ctx context.Context, job Job) (any, error) {
	l := logger.WithRun(r.logger, job.Name)
	start := time.Now().UTC()

	r.mu.Lock()
	s := r.status[job.Name]
	s.Running = true
	s.LastStart = &start
	r.mu.Unlock()

	l.Info("Job started")
	result, err := job.Run(ctx, l)
	end := time.Now().UTC()

	r.mu.Lock()
	s.Running = false
	s.Runs++
	s.LastEnd = &end
	s.LastResult = result
	s.LastError = ""
	if err != nil {
		s.LastError = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		l.Error("Job failed", zap.Duration("duration", end.Sub(start)), zap.Error(err))
	} else {
		l.Info("Job finished", zap.Duration("duration", end.Sub(start)))
	}
	return result, err
}
