// Package watcher turns changes of the host profile into reconciliation
// jobs. It polls the installed add-ons, diffs successive listings into
// lifecycle events and fires the periodic rebuild timer.
package watcher

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/compatctl/internal/addons"
	"github.com/bnema/compatctl/internal/engine"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultRebuildInterval = 24 * time.Hour
)

// Enqueuer accepts jobs. *engine.Scheduler implements it.
type Enqueuer interface {
	Enqueue(job engine.Job)
}

// Watcher emits jobs for add-on lifecycle changes and rebuild ticks.
type Watcher struct {
	lister       engine.AddonLister
	log          *log.Logger
	pollEvery    time.Duration
	rebuildEvery time.Duration
	known        map[string]addons.Addon
}

// New creates a watcher. Zero intervals use the defaults.
func New(lister engine.AddonLister, logger *log.Logger, pollEvery, rebuildEvery time.Duration) *Watcher {
	if pollEvery <= 0 {
		pollEvery = DefaultPollInterval
	}
	if rebuildEvery <= 0 {
		rebuildEvery = DefaultRebuildInterval
	}
	return &Watcher{
		lister:       lister,
		log:          logger,
		pollEvery:    pollEvery,
		rebuildEvery: rebuildEvery,
	}
}

// Run enqueues an immediate table refresh, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context, q Enqueuer) error {
	q.Enqueue(engine.Job{Kind: engine.KindRefreshTable})

	if snapshot, err := w.snapshot(ctx); err != nil {
		w.log.Warn("Failed to read installed add-ons", "error", err)
	} else {
		w.known = snapshot
	}

	poll := time.NewTicker(w.pollEvery)
	defer poll.Stop()
	rebuild := time.NewTicker(w.rebuildEvery)
	defer rebuild.Stop()

	w.log.Debug("Watching add-ons", "poll", w.pollEvery, "rebuild", w.rebuildEvery)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rebuild.C:
			w.log.Debug("Rebuild timer fired")
			q.Enqueue(engine.Job{Kind: engine.KindRebuild, Throttle: true})
		case <-poll.C:
			w.Poll(ctx, q)
		}
	}
}

// Poll reads the installed add-ons once and enqueues a job per change since
// the previous poll.
func (w *Watcher) Poll(ctx context.Context, q Enqueuer) {
	next, err := w.snapshot(ctx)
	if err != nil {
		w.log.Warn("Failed to read installed add-ons", "error", err)
		return
	}
	if w.known == nil {
		w.known = next
		return
	}

	for _, job := range Diff(w.known, next) {
		w.log.Info("Add-on changed", "event", job.Kind, "id", job.AddonID)
		q.Enqueue(job)
	}
	w.known = next
}

func (w *Watcher) snapshot(ctx context.Context) (map[string]addons.Addon, error) {
	all, err := w.lister.InstalledAddons(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]addons.Addon)
	for _, a := range addons.UserExtensions(all) {
		out[a.ID] = a
	}
	return out, nil
}

// Diff returns the lifecycle jobs that turn prev into next, ordered by id.
func Diff(prev, next map[string]addons.Addon) []engine.Job {
	ids := make(map[string]struct{}, len(prev)+len(next))
	for id := range prev {
		ids[id] = struct{}{}
	}
	for id := range next {
		ids[id] = struct{}{}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var jobs []engine.Job
	for _, id := range sorted {
		before, had := prev[id]
		after, has := next[id]
		switch {
		case had && !has:
			jobs = append(jobs, engine.AddonEvent(engine.KindUninstalled, before))
		case !had && has:
			jobs = append(jobs, engine.AddonEvent(engine.KindInstalled, after))
		case before.Enabled != after.Enabled:
			kind := engine.KindDisabled
			if after.Enabled {
				kind = engine.KindEnabled
			}
			jobs = append(jobs, engine.AddonEvent(kind, after))
		}
	}
	return jobs
}
