package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/timestrainer/internal/logger"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("worker pool stopped")

const (
	defaultWorkers   = 2
	defaultQueueSize = 64
)

// Job is a unit of background work. Name is used in logs only.
type Job interface {
	Run(context.Context) error
	Name() string
}

// Stats is a snapshot of what a pool has done so far.
type Stats struct {
	Queued    int
	Succeeded int64
	Failed    int64
}

// Pool runs jobs on a fixed number of goroutines. Stop drains the queue
// before returning.
type Pool struct {
	size  int
	queue chan Job
	log   *logger.Logger

	closeMu sync.RWMutex
	closed  bool

	running sync.WaitGroup
	cancel  context.CancelFunc

	succeeded atomic.Int64
	failed    atomic.Int64
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Pool{
		size:  workers,
		queue: make(chan Job, queueSize),
		log:   logger.Default().WithPrefix("worker-pool"),
	}
}

// Start launches the workers. Jobs run under a context derived from ctx that
// is cancelled only after Stop has drained the queue.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info("starting %d workers (queue capacity %d)", p.size, cap(p.queue))

	p.running.Add(p.size)
	for id := 1; id <= p.size; id++ {
		go p.work(ctx, p.log.WithField("worker_id", id))
	}
}

func (p *Pool) work(ctx context.Context, log *logger.Logger) {
	defer p.running.Done()
	for job := range p.queue {
		if err := p.execute(ctx, log.WithField("job", job.Name()), job); err != nil {
			p.failed.Add(1)
			continue
		}
		p.succeeded.Add(1)
	}
	log.Debug("queue closed, worker exiting")
}

func (p *Pool) execute(ctx context.Context, log *logger.Logger, job Job) (err error) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			log.Error("job failed after %v: %v", time.Since(started), err)
			return
		}
		log.Debug("job done in %v", time.Since(started))
	}()
	return job.Run(logger.NewContext(ctx, log))
}

// Stop refuses new jobs, waits for queued ones to finish and then cancels the
// context the jobs ran under. It is safe to call more than once.
func (p *Pool) Stop() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.closeMu.Unlock()

	p.log.Info("draining %d queued jobs", len(p.queue))
	p.running.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	st := p.Stats()
	p.log.Info("worker pool stopped (succeeded=%d failed=%d)", st.Succeeded, st.Failed)
}

// Submit queues job, blocking while the queue is full.
func (p *Pool) Submit(job Job) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrStopped
	}
	p.queue <- job
	return nil
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.queue)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Queued:    len(p.queue),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
	}
}
