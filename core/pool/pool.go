package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after DrainAndWait has been called.
var ErrClosed = errors.New("pool is draining")

// DefaultConcurrency is the number of workers used when none is given.
const DefaultConcurrency = 2

// Pool is a bounded worker pool. Producers keep submitting while workers consume;
// Submit blocks once the queue is full.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

// New starts a pool with the given number of workers and queue capacity.
func New(concurrency, queueSize int, logger *zap.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		tasks:  make(chan func(), queueSize),
		logger: logger,
	}

	p.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go p.work()
	}

	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run isolates a panicking task so the worker survives.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Pool task panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Submit enqueues a task, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainAndWait stops accepting tasks and blocks until every task submitted
// before the call has finished. It is safe to call more than once.
func (p *Pool) DrainAndWait() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
