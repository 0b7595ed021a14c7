package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/compatctl/internal/addons"
	"github.com/bnema/compatctl/internal/compat"
	"github.com/bnema/compatctl/internal/report"
	"github.com/bnema/compatctl/internal/store"
)

// DefaultRebuildInterval is how old the cached report may get.
const DefaultRebuildInterval = 24 * time.Hour

// ReportFetcher obtains the remote compatibility report.
type ReportFetcher interface {
	Fetch(ctx context.Context) (*report.Result, error)
}

// AddonLister enumerates the add-ons installed in the host.
type AddonLister interface {
	InstalledAddons(ctx context.Context) ([]addons.Addon, error)
}

// BadgeSink shows the badge to the user.
type BadgeSink interface {
	SetText(text string)
	SetColor(color string)
	Enable()
	Disable()
}

// Options configure an Engine.
type Options struct {
	Cache           *store.Cache
	Fetcher         ReportFetcher
	Lister          AddonLister
	Badge           BadgeSink
	Logger          *log.Logger
	RebuildInterval time.Duration // zero uses DefaultRebuildInterval
	Policy          compat.Policy
	Now             func() time.Time // nil uses time.Now
}

// Engine reconciles the cached compatibility table with the remote report
// and local add-on changes. Run must not be called concurrently; the
// Scheduler guarantees that.
type Engine struct {
	cache    *store.Cache
	fetcher  ReportFetcher
	lister   AddonLister
	badge    BadgeSink
	log      *log.Logger
	interval time.Duration
	policy   compat.Policy
	now      func() time.Time
}

// New creates an engine from opts
func New(opts Options) *Engine {
	e := &Engine{
		cache:    opts.Cache,
		fetcher:  opts.Fetcher,
		lister:   opts.Lister,
		badge:    opts.Badge,
		log:      opts.Logger,
		interval: opts.RebuildInterval,
		policy:   opts.Policy,
		now:      opts.Now,
	}
	if e.interval <= 0 {
		e.interval = DefaultRebuildInterval
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.policy.ESROnlyExperiment == "" {
		e.policy = compat.DefaultPolicy()
	}
	return e
}

// Run processes one job. A failed report fetch returns an error wrapping
// report.ErrFetch and leaves the cache as it was.
func (e *Engine) Run(ctx context.Context, job Job) error {
	cached, err := e.cache.Report()
	if err != nil {
		return err
	}
	table, err := e.cache.Table()
	if err != nil {
		return err
	}
	lastCheck, err := e.cache.LastCheck()
	if err != nil {
		return err
	}

	kind := job.Kind
	if reason := e.staleReason(cached, table, lastCheck); reason != "" && kind != KindRebuild {
		e.log.Debug("Promoting job to rebuild", "job", job, "reason", reason)
		kind = KindRebuild
	}

	var fetched *report.Result
	if kind == KindRebuild {
		e.log.Info("Rebuilding compatibility data", "job", job.ID)
		e.badge.SetText(compat.BadgePending)
		e.badge.SetColor(compat.ColorPending)
		e.badge.Disable()

		fetched, err = e.fetcher.Fetch(ctx)
		if err != nil {
			e.restoreBadge()
			return err
		}
		cached = fetched.Report
	}

	if table == nil || fetched != nil || kind == KindRefreshTable {
		table, err = e.buildTable(ctx, cached)
		if err != nil {
			e.restoreBadge()
			return err
		}
	} else if kind.IsPatch() {
		table = e.patch(table, cached, job, kind)
	}

	// A fetched report is only persisted with the table built from it.
	if fetched != nil {
		err = e.cache.SetRebuilt(fetched.Raw, e.now(), table)
	} else {
		err = e.cache.SetTable(table)
	}
	if err != nil {
		e.restoreBadge()
		return fmt.Errorf("failed to store compatibility data: %w", err)
	}

	status := compat.ReduceStatus(table, e.policy)
	e.log.Debug("Reduced status",
		"addons", status.Total,
		"release_incompatible", status.ReleaseIncompatible,
		"esr_only_experiments", status.ESROnlyExperiment,
		"unknown", status.Unknown)

	e.showBadge(store.BadgeState{Text: status.BadgeText, Color: status.BadgeColor})
	return nil
}

// staleReason returns why the cache needs a rebuild, or "" when it is fresh.
func (e *Engine) staleReason(cached *compat.Report, table compat.Table, lastCheck time.Time) string {
	switch {
	case cached == nil:
		return "no cached report"
	case table == nil:
		return "no cached table"
	case lastCheck.IsZero():
		return "never checked"
	case e.now().Sub(lastCheck) > e.interval:
		return "report outdated"
	}
	return ""
}

// buildTable replaces the table with the currently installed user
// extensions, looked up in the report.
func (e *Engine) buildTable(ctx context.Context, r *compat.Report) (compat.Table, error) {
	installed, err := e.lister.InstalledAddons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed add-ons: %w", err)
	}

	extensions := addons.UserExtensions(installed)
	table := make(compat.Table, len(extensions))
	for _, a := range extensions {
		table[a.ID] = compat.NewRecord(r, a.ID, a.Name, a.Enabled)
	}

	e.log.Debug("Rebuilt compatibility table", "installed", len(installed), "tracked", len(table))
	return table, nil
}

// patch applies a single add-on change to a copy of the table.
func (e *Engine) patch(table compat.Table, r *compat.Report, job Job, kind Kind) compat.Table {
	if job.AddonID == "" {
		e.log.Debug("Ignoring add-on event without id", "job", job)
		return table
	}

	next := table.Clone()
	switch kind {
	case KindEnabled, KindDisabled:
		record, ok := next[job.AddonID]
		if !ok {
			// Likely raced with a rebuild that already dropped it.
			e.log.Debug("Ignoring state change of untracked add-on", "id", job.AddonID)
			return table
		}
		record.Enabled = kind == KindEnabled
		if job.Addon != nil {
			record.Enabled = job.Addon.Enabled
		}
		next[job.AddonID] = record

	case KindInstalled:
		name, enabled := job.AddonID, true
		if job.Addon != nil {
			name, enabled = job.Addon.Name, job.Addon.Enabled
		}
		next[job.AddonID] = compat.NewRecord(r, job.AddonID, name, enabled)

	case KindUninstalled:
		delete(next, job.AddonID)
	}

	e.log.Debug("Patched compatibility table", "job", job)
	return next
}

func (e *Engine) showBadge(b store.BadgeState) {
	e.badge.SetText(b.Text)
	e.badge.SetColor(b.Color)
	if err := e.cache.SetBadge(b); err != nil {
		e.log.Warn("Failed to remember badge", "error", err)
	}
	e.badge.Enable()
}

// restoreBadge puts back the badge shown before the job started.
func (e *Engine) restoreBadge() {
	prev, ok, err := e.cache.Badge()
	if err != nil {
		e.log.Warn("Failed to read previous badge", "error", err)
	}
	if !ok {
		prev = store.BadgeState{Text: "", Color: compat.ColorPending}
	}
	e.badge.SetText(prev.Text)
	e.badge.SetColor(prev.Color)
	e.badge.Enable()
}
