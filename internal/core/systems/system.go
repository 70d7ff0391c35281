// Package systems drives per-frame logic. Every frame runs Update on each
// enabled system, then FixedUpdate, in registration order.
package systems

import (
	"errors"
	"fmt"
	"time"
)

// System represents a game logic processor ticked by the Runner.
type System interface {
	Name() string

	// Update runs once per rendered frame with the frame delta.
	Update(deltaTime float64) error
	// FixedUpdate runs once per physics step with the fixed delta.
	FixedUpdate(fixedDeltaTime float64) error
}

// ExecutionPhase identifies which tick a system ran in.
type ExecutionPhase uint8

const (
	PhaseUpdate ExecutionPhase = iota
	PhaseFixedUpdate
)

func (p ExecutionPhase) String() string {
	if p == PhaseFixedUpdate {
		return "fixed_update"
	}
	return "update"
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}

// PhaseError wraps an error returned by a system.
type PhaseError struct {
	System string
	Phase  ExecutionPhase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("system %s (%s): %v", e.System, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

var ErrDuplicateSystem = errors.New("systems: duplicate system name")

// Stepper advances a physics simulation by a fixed delta.
type Stepper interface {
	Step(dt float64) error
}

// PhysicsStep adapts a Stepper into a System that only runs on fixed ticks.
type PhysicsStep struct {
	Stepper Stepper
}

func (p PhysicsStep) Name() string                 { return "physics" }
func (p PhysicsStep) Update(float64) error         { return nil }
func (p PhysicsStep) FixedUpdate(dt float64) error { return p.Stepper.Step(dt) }

// Funcs builds a System from plain functions. Nil functions are skipped.
type Funcs struct {
	ID      string
	OnFrame func(dt float64) error
	OnFixed func(dt float64) error
}

func (f Funcs) Name() string { return f.ID }

func (f Funcs) Update(dt float64) error {
	if f.OnFrame == nil {
		return nil
	}
	return f.OnFrame(dt)
}

func (f Funcs) FixedUpdate(dt float64) error {
	if f.OnFixed == nil {
		return nil
	}
	return f.OnFixed(dt)
}
