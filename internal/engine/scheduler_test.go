package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recordingRunner struct {
	mu       sync.Mutex
	active   int
	maxSeen  int
	order    []string
	failOn   string
	sleep    time.Duration
	started  chan struct{}
	released chan struct{}
}

func (r *recordingRunner) Run(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.active++
	if r.active > r.maxSeen {
		r.maxSeen = r.active
	}
	r.order = append(r.order, job.AddonID)
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
		<-r.released
	}
	time.Sleep(r.sleep)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()

	if job.AddonID == r.failOn {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler(r Runner, throttle time.Duration) *Scheduler {
	return NewScheduler(context.Background(), r, log.New(io.Discard), throttle)
}

func waitIdle(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait() returned error: %v", err)
	}
}

func TestSchedulerRunsInEnqueueOrder(t *testing.T) {
	r := &recordingRunner{sleep: time.Millisecond}
	s := newTestScheduler(r, 0)

	var want []string
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("job-%02d", i)
		want = append(want, id)
		s.Enqueue(Job{Kind: KindEnabled, AddonID: id})
	}
	waitIdle(t, s)

	if fmt.Sprint(r.order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", r.order, want)
	}
	if done, failed := s.Stats(); done != 20 || failed != 0 {
		t.Errorf("Stats() = %d, %d", done, failed)
	}
}

func TestSchedulerSingleFlightUnderConcurrentEnqueue(t *testing.T) {
	r := &recordingRunner{sleep: 200 * time.Microsecond}
	s := newTestScheduler(r, 0)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				s.Enqueue(Job{Kind: KindEnabled, AddonID: fmt.Sprintf("%d-%d", g, i)})
			}
		}(g)
	}
	wg.Wait()
	waitIdle(t, s)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxSeen != 1 {
		t.Errorf("expected at most one job in flight, saw %d", r.maxSeen)
	}
	if len(r.order) != 200 {
		t.Errorf("expected 200 jobs processed, got %d", len(r.order))
	}
}

func TestSchedulerInFlightState(t *testing.T) {
	r := &recordingRunner{started: make(chan struct{}), released: make(chan struct{})}
	s := newTestScheduler(r, 0)

	if s.InFlight() {
		t.Fatal("new scheduler should be idle")
	}

	s.Enqueue(Job{Kind: KindRebuild, AddonID: "first"})
	<-r.started
	s.Enqueue(Job{Kind: KindRebuild, AddonID: "second"})

	if !s.InFlight() {
		t.Error("expected a job in flight")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}

	r.released <- struct{}{}
	<-r.started
	r.released <- struct{}{}
	waitIdle(t, s)

	if s.InFlight() {
		t.Error("scheduler should be idle after draining")
	}
}

func TestSchedulerContinuesAfterFailure(t *testing.T) {
	r := &recordingRunner{failOn: "bad"}
	s := newTestScheduler(r, 0)

	s.Enqueue(Job{Kind: KindRebuild, AddonID: "bad"})
	s.Enqueue(Job{Kind: KindRebuild, AddonID: "good"})
	waitIdle(t, s)

	if fmt.Sprint(r.order) != "[bad good]" {
		t.Errorf("order = %v", r.order)
	}
	if done, failed := s.Stats(); done != 2 || failed != 1 {
		t.Errorf("Stats() = %d, %d", done, failed)
	}

	// Still accepts work afterwards.
	s.Enqueue(Job{Kind: KindRebuild, AddonID: "later"})
	waitIdle(t, s)
	if len(r.order) != 3 {
		t.Errorf("expected the later job to run, order = %v", r.order)
	}
}

func TestSchedulerThrottlesFlaggedJobs(t *testing.T) {
	const throttle = 50 * time.Millisecond
	r := &recordingRunner{}
	s := newTestScheduler(r, throttle)

	start := time.Now()
	s.Enqueue(Job{Kind: KindRefreshTable, AddonID: "fast"})
	waitIdle(t, s)
	if elapsed := time.Since(start); elapsed >= throttle {
		t.Errorf("unthrottled job took %v", elapsed)
	}

	start = time.Now()
	s.Enqueue(Job{Kind: KindRebuild, AddonID: "slow", Throttle: true})
	waitIdle(t, s)
	if elapsed := time.Since(start); elapsed < throttle {
		t.Errorf("throttled job ran after %v, want at least %v", elapsed, throttle)
	}
}

func TestSchedulerDropsJobsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &recordingRunner{}
	s := NewScheduler(ctx, r, log.New(io.Discard), time.Hour)

	s.Enqueue(Job{Kind: KindRebuild, AddonID: "waiting", Throttle: true})
	cancel()
	waitIdle(t, s)

	if len(r.order) != 0 {
		t.Errorf("no job should run after cancel, got %v", r.order)
	}
}

func TestSchedulerAppliesInterleavedEventsLikeSequentialRuns(t *testing.T) {
	installed := []Job{
		AddonEvent(KindInstalled, userExtension("c@example.com", "C", true)),
		AddonEvent(KindDisabled, userExtension("c@example.com", "C", false)),
		AddonEvent(KindUninstalled, userExtension("c@example.com", "C", false)),
		AddonEvent(KindInstalled, userExtension("c@example.com", "C", true)),
		AddonEvent(KindInstalled, userExtension("d@example.com", "D", true)),
		AddonEvent(KindUninstalled, userExtension("a@example.com", "A", true)),
		AddonEvent(KindUninstalled, userExtension("d@example.com", "D", true)),
		AddonEvent(KindEnabled, userExtension("a@example.com", "A", true)),
	}

	sequential := newFixture(t, userExtension("a@example.com", "A", true))
	sequential.run(t, Job{Kind: KindRebuild})
	for _, job := range installed {
		sequential.run(t, job)
	}

	queued := newFixture(t, userExtension("a@example.com", "A", true))
	s := newTestScheduler(queued.engine, 0)
	s.Enqueue(Job{Kind: KindRebuild})
	for _, job := range installed {
		s.Enqueue(job)
	}
	waitIdle(t, s)

	want := fmt.Sprintf("%+v", sequential.table(t))
	got := fmt.Sprintf("%+v", queued.table(t))
	if got != want {
		t.Errorf("queued table differs from sequential application:\n got: %s\nwant: %s", got, want)
	}
	if keys := tableKeys(queued.table(t)); keys != "[c@example.com]" {
		t.Errorf("table keys = %s", keys)
	}
}
