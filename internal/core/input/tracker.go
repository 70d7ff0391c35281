package input

import (
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Tracker polls a Source once per frame and drives the hands with it. Other
// systems read the current and previous controller state from it.
type Tracker struct {
	source   Source
	hands    []*grasp.Hand
	current  Frame
	previous Frame
	frames   uint64
	done     bool
	logger   log.Log
}

func NewTracker(source Source, logger log.Log, hands ...*grasp.Hand) *Tracker {
	return &Tracker{
		source: source,
		hands:  hands,
		logger: logger.With(log.String("component", "input")),
	}
}

func (t *Tracker) Name() string { return "input" }

// Update pulls the next frame. Once the source is exhausted the last frame
// stays in effect with its velocities zeroed.
func (t *Tracker) Update(float64) error {
	t.previous = t.current
	f, ok := t.source.Next()
	if !ok {
		if !t.done {
			t.done = true
			t.logger.Debug("Input source exhausted", log.Uint64("frames", t.frames))
		}
		f = t.current
		f.Left.Linear, f.Left.Angular = spatial.Zero, spatial.Zero
		f.Right.Linear, f.Right.Angular = spatial.Zero, spatial.Zero
	} else {
		t.frames++
	}
	t.current = f

	for _, h := range t.hands {
		apply(h, f.Hand(h.Side()))
	}
	return nil
}

func (t *Tracker) FixedUpdate(float64) error { return nil }

func (t *Tracker) Current(side grasp.Side) HandState  { return t.current.Hand(side) }
func (t *Tracker) Previous(side grasp.Side) HandState { return t.previous.Hand(side) }
func (t *Tracker) Frames() uint64                     { return t.frames }

// Done reports whether the source has run out of frames.
func (t *Tracker) Done() bool { return t.done }

func apply(h *grasp.Hand, s HandState) {
	rot := s.Rotation
	if rot == (spatial.Quat{}) {
		rot = spatial.Identity()
	}
	h.Transform().SetLocalPosition(s.Position)
	h.Transform().SetLocalRotation(rot)
	h.SetMotion(grasp.Motion{
		Linear:           s.Linear,
		Angular:          s.Angular,
		TrackingRotation: s.TrackingRotation,
	})
}
