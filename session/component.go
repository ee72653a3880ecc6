package session

import (
	"sync"

	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/lifecycle"
	"oss.nandlabs.io/regular/notify"
)

// Component wraps one Run invocation as a lifecycle.Component, so a CLI
// front-end can drive it through the same Start/Stop/State machinery as
// any other long-lived service component even though a session itself
// is a single batch of work with no daemon loop. Start runs the
// session to completion and records its outcomes; Stop is a no-op
// since there is nothing left running once Start returns.
type Component struct {
	*lifecycle.SimpleComponent

	mu       sync.Mutex
	cfg      job.Config
	force    bool
	names    []string
	registry *notify.Registry
	outerEnv map[string]string
	outcomes []Outcome
	err      error
}

// NewComponent builds a Component for one session run. force and names
// mirror Run's parameters: force bypasses the due check (used for
// "run now"), names selects specific jobs (empty means every available
// job, used for "run due --all"/"run now --all").
func NewComponent(id string, cfg job.Config, force bool, names []string, registry *notify.Registry, outerEnv map[string]string) *Component {
	c := &Component{
		cfg:      cfg,
		force:    force,
		names:    names,
		registry: registry,
		outerEnv: outerEnv,
	}
	c.SimpleComponent = &lifecycle.SimpleComponent{
		CompId: id,
		StartFunc: func() error {
			outcomes, err := Run(c.cfg, c.force, c.names, c.registry, c.outerEnv)
			c.mu.Lock()
			c.outcomes = outcomes
			c.err = err
			c.mu.Unlock()
			return err
		},
		StopFunc: func() error { return nil },
	}
	return c
}

// Outcomes returns the results recorded by the most recent Start call.
func (c *Component) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes
}
