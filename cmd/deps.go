package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bnema/compatctl/internal/addons"
	"github.com/bnema/compatctl/internal/engine"
	"github.com/bnema/compatctl/internal/report"
	"github.com/bnema/compatctl/internal/store"
)

// errOffline is returned by the fetcher used with --offline.
var errOffline = fmt.Errorf("%w: offline mode", report.ErrFetch)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context) (*report.Result, error) {
	return nil, errOffline
}

func resolveProfile() (string, error) {
	if cfg.ProfileDir != "" {
		return cfg.ProfileDir, nil
	}
	return addons.FindDefaultProfile(addons.DefaultProfilesRoot())
}

func openCache() (*store.Cache, error) {
	c, err := store.OpenCache(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

func newManager() (*addons.Manager, error) {
	dir, err := resolveProfile()
	if err != nil {
		return nil, err
	}
	return addons.NewManager(dir, appLogger), nil
}

func newFetcher(offline bool) engine.ReportFetcher {
	switch {
	case offline:
		return offlineFetcher{}
	case cfg.ReportGitURL != "":
		return report.NewGitSource(cfg.ReportGitURL, cfg.ReportGitBranch, cfg.ReportGitPath, appLogger)
	default:
		return report.NewHTTPSource(cfg.ReportURL, appLogger)
	}
}

// newEngine wires the engine for the configured profile and report source.
// Offline engines never consider the cache stale, so only a missing cache
// triggers a (failing) fetch.
func newEngine(cache *store.Cache, manager *addons.Manager, sink engine.BadgeSink, offline bool) *engine.Engine {
	interval := cfg.RebuildInterval
	if offline {
		interval = time.Duration(math.MaxInt64)
	}
	return engine.New(engine.Options{
		Cache:           cache,
		Fetcher:         newFetcher(offline),
		Lister:          manager,
		Badge:           sink,
		Logger:          appLogger,
		RebuildInterval: interval,
		Policy:          cfg.Policy,
	})
}

// recordingRunner keeps the last job error so one-shot commands can report it.
type recordingRunner struct {
	runner engine.Runner
	err    error
}

func (r *recordingRunner) Run(ctx context.Context, job engine.Job) error {
	err := r.runner.Run(ctx, job)
	r.err = err
	return err
}
