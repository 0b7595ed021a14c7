package engine

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultThrottle is the delay before a throttled job runs.
const DefaultThrottle = time.Second

// Runner processes a single job.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// Scheduler queues jobs and hands them to the runner one at a time, in the
// order they were enqueued.
type Scheduler struct {
	ctx      context.Context
	runner   Runner
	log      *log.Logger
	throttle time.Duration

	mu      sync.Mutex
	queue   []Job
	running bool          // a drain goroutine owns the queue
	idle    chan struct{} // closed whenever running is false
	done    int
	failed  int
}

// NewScheduler creates a scheduler whose jobs run under ctx. Once ctx is
// cancelled queued jobs are dropped.
func NewScheduler(ctx context.Context, runner Runner, logger *log.Logger, throttle time.Duration) *Scheduler {
	if throttle < 0 {
		throttle = 0
	}
	idle := make(chan struct{})
	close(idle)
	return &Scheduler{
		ctx:      ctx,
		runner:   runner,
		log:      logger,
		throttle: throttle,
		idle:     idle,
	}
}

// Enqueue adds a job to the queue and starts processing when nothing is in
// flight. It never blocks on job execution.
func (s *Scheduler) Enqueue(job Job) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, job)
	s.log.Debug("Job queued", "job", job, "id", job.ID, "pending", len(s.queue))

	if s.running {
		return
	}
	s.running = true
	s.idle = make(chan struct{})
	go s.drain()
}

// InFlight reports whether a job is being processed.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Pending returns the number of queued jobs not yet started.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Stats returns how many jobs completed and how many of those failed.
func (s *Scheduler) Stats() (done, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.failed
}

// Wait blocks until the queue is drained or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) drain() {
	for {
		job, ok := s.next()
		if !ok {
			return
		}

		if job.Throttle && s.throttle > 0 {
			select {
			case <-time.After(s.throttle):
			case <-s.ctx.Done():
			}
		}

		if s.ctx.Err() != nil {
			s.stop()
			return
		}

		start := time.Now()
		err := s.runner.Run(s.ctx, job)

		s.mu.Lock()
		s.done++
		if err != nil {
			s.failed++
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Error("Job failed", "job", job, "id", job.ID, "error", err)
			continue
		}
		s.log.Debug("Job done", "job", job, "id", job.ID, "took", time.Since(start).Round(time.Millisecond))
	}
}

// next pops the head of the queue, or marks the scheduler idle when the
// queue is empty.
func (s *Scheduler) next() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		s.running = false
		close(s.idle)
		return Job{}, false
	}
	job := s.queue[0]
	s.queue = s.queue[1:]
	return job, true
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) > 0 {
		s.log.Debug("Dropping queued jobs", "count", len(s.queue))
	}
	s.queue = nil
	s.running = false
	close(s.idle)
}
