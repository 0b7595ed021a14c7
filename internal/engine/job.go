package engine

import (
	"fmt"

	"github.com/bnema/compatctl/internal/addons"
)

// Kind is what triggered a job.
type Kind string

const (
	KindRebuild      Kind = "rebuild"      // refetch the report and rebuild the table
	KindRefreshTable Kind = "refreshTable" // rebuild the table from the cached report
	KindInstalled    Kind = "installed"
	KindUninstalled  Kind = "uninstalled"
	KindEnabled      Kind = "enabled"
	KindDisabled     Kind = "disabled"
)

// IsPatch reports whether the kind only touches a single add-on.
func (k Kind) IsPatch() bool {
	switch k {
	case KindInstalled, KindUninstalled, KindEnabled, KindDisabled:
		return true
	}
	return false
}

// Job is one queued reconciliation request. Jobs only live in the queue.
type Job struct {
	ID       string
	Kind     Kind
	AddonID  string
	Addon    *addons.Addon // add-on as reported by the lifecycle event
	Throttle bool
}

// AddonEvent builds the job for a lifecycle event on a single add-on.
// Lifecycle events are throttled since they tend to arrive in bursts.
func AddonEvent(kind Kind, a addons.Addon) Job {
	return Job{
		Kind:     kind,
		AddonID:  a.ID,
		Addon:    &a,
		Throttle: true,
	}
}

func (j Job) String() string {
	if j.AddonID != "" {
		return fmt.Sprintf("%s(%s)", j.Kind, j.AddonID)
	}
	return string(j.Kind)
}
