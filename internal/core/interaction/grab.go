package interaction

import (
	"errors"

	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
)

// DefaultCloseThreshold is the index trigger value above which a hand counts
// as closed.
const DefaultCloseThreshold = 0.5

// GrabSystem is the hand controller: it grasps on the closing edge of the
// index trigger and releases on the opening edge.
type GrabSystem struct {
	controls  Controls
	hands     []*grasp.Hand
	threshold float64
	closed    map[grasp.Side]bool
	logger    log.Log
}

// NewGrabSystem creates a grab system. A hand closes once its index trigger
// exceeds threshold.
func NewGrabSystem(controls Controls, threshold float64, logger log.Log, hands ...*grasp.Hand) *GrabSystem {
	return &GrabSystem{
		controls:  controls,
		hands:     hands,
		threshold: threshold,
		closed:    make(map[grasp.Side]bool, len(hands)),
		logger:    logger.With(log.String("system", "grab")),
	}
}

func (g *GrabSystem) Name() string { return "grab" }

// Closed reports the last observed trigger state of the hand on side.
func (g *GrabSystem) Closed(side grasp.Side) bool { return g.closed[side] }

func (g *GrabSystem) Update(float64) error {
	var errs []error
	for _, h := range g.hands {
		if err := g.handle(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *GrabSystem) FixedUpdate(float64) error { return nil }

func (g *GrabSystem) handle(h *grasp.Hand) error {
	s := g.controls.Current(h.Side())
	if s.ReleaseContained {
		if n := h.ReleaseContained(); n > 0 {
			g.logger.Debug("Released contents", log.String("hand", h.Side().String()), log.Int("count", n))
		}
	}

	closed := s.IndexTrigger > g.threshold
	if closed == g.closed[h.Side()] {
		return nil
	}
	g.closed[h.Side()] = closed

	if closed {
		g.logger.Debug("Hand closed", log.String("hand", h.Side().String()))
		_, err := h.Grasp()
		return err
	}
	_, err := h.Release()
	return err
}
