package systems

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/graspvr/internal/core/observability/log"
)

type entry struct {
	system  System
	enabled bool
	metrics Metrics
}

// Runner ticks registered systems in registration order. A failing system
// does not stop the others; errors are joined and returned.
type Runner struct {
	entries []*entry
	logger  log.Log
}

func NewRunner(logger log.Log) *Runner {
	return &Runner{logger: logger.With(log.String("component", "systems"))}
}

func (r *Runner) Register(s System) error {
	for _, e := range r.entries {
		if e.system.Name() == s.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
		}
	}
	r.entries = append(r.entries, &entry{system: s, enabled: true})
	r.logger.Debug("System registered", log.String("system", s.Name()), log.Int("order", len(r.entries)))
	return nil
}

// SetEnabled toggles a system by name and reports whether it exists.
func (r *Runner) SetEnabled(name string, enabled bool) bool {
	for _, e := range r.entries {
		if e.system.Name() == name {
			e.enabled = enabled
			return true
		}
	}
	return false
}

func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.system.Name())
	}
	return out
}

func (r *Runner) Metrics(name string) (Metrics, bool) {
	for _, e := range r.entries {
		if e.system.Name() == name {
			return e.metrics, true
		}
	}
	return Metrics{}, false
}

func (r *Runner) Update(dt float64) error {
	return r.run(PhaseUpdate, dt)
}

func (r *Runner) FixedUpdate(dt float64) error {
	return r.run(PhaseFixedUpdate, dt)
}

func (r *Runner) run(phase ExecutionPhase, dt float64) error {
	var all error
	for _, e := range r.entries {
		if !e.enabled {
			continue
		}
		start := time.Now()
		var err error
		if phase == PhaseFixedUpdate {
			err = e.system.FixedUpdate(dt)
		} else {
			err = e.system.Update(dt)
		}
		elapsed := time.Since(start)

		e.metrics.ExecutionCount++
		e.metrics.TotalExecutionTime += elapsed
		if elapsed > e.metrics.MaxExecutionTime {
			e.metrics.MaxExecutionTime = elapsed
		}
		if err != nil {
			e.metrics.ErrorCount++
			e.metrics.LastError = err
			r.logger.Warn("System failed",
				log.String("system", e.system.Name()),
				log.String("phase", phase.String()),
				log.Error(err))
			all = errors.Join(all, &PhaseError{System: e.system.Name(), Phase: phase, Err: err})
		}
	}
	return all
}
