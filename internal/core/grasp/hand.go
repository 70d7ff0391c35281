package grasp

import (
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/velocity"
	"github.com/zeusync/graspvr/pkg/sequence"
)

// Motion is the controller motion reported by the input runtime for the last
// frame.
type Motion struct {
	Linear           spatial.Vec3
	Angular          spatial.Vec3
	TrackingRotation spatial.Quat
}

// Hand is one manipulator. It holds at most one top-level object.
type Hand struct {
	side      Side
	transform *spatial.Transform
	world     *World
	grasped   *Anchor
	motion    Motion
	logger    log.Log
}

func (h *Hand) Side() Side                    { return h.side }
func (h *Hand) Transform() *spatial.Transform { return h.transform }
func (h *Hand) Grasped() *Anchor              { return h.grasped }
func (h *Hand) Motion() Motion                { return h.motion }

// SetMotion stores the latest controller motion. A zero tracking rotation is
// read as identity.
func (h *Hand) SetMotion(m Motion) {
	if m.TrackingRotation == (spatial.Quat{}) {
		m.TrackingRotation = spatial.Identity()
	}
	h.motion = m
}

// Nearest returns the free anchor whose bounds are closest to the hand and
// within that anchor's grasping radius. Exact ties keep the anchor that comes
// first in registry order.
func (h *Hand) Nearest() (*Anchor, float64, bool) {
	pos := h.transform.Position()
	inReach := h.world.registry.Iter().Filter(func(a *Anchor) bool {
		return a.Available() && a.Distance(pos) <= a.radius
	})
	return sequence.Min(inReach, func(a *Anchor) float64 { return a.Distance(pos) })
}

// Grasp attaches the nearest available anchor. It returns nil when nothing is
// in reach or the hand already holds an object.
func (h *Hand) Grasp() (*Anchor, error) {
	if h.grasped != nil {
		return nil, nil
	}
	best, dist, ok := h.Nearest()
	if !ok {
		h.logger.Debug("Nothing in reach")
		return nil, nil
	}
	attached, err := best.Attach(h)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, nil
	}
	h.logger.Info("Grasped",
		log.String("object", best.object.name),
		log.String("anchor", best.name),
		log.Float64("distance", dist))
	return best, nil
}

// Release detaches the grasped object, throwing it with the averaged hand
// velocity.
func (h *Hand) Release() (bool, error) {
	if h.grasped == nil {
		return false, nil
	}
	a := h.grasped
	ok, err := a.Detach(h)
	if err != nil {
		return false, err
	}
	h.grasped = nil
	if ok {
		h.logger.Info("Released", log.String("object", a.object.name))
	}
	return ok, nil
}

// ReleaseContained drops the contents of a held container while keeping the
// container itself in hand. Contents do not settle back until the container
// is grasped again.
func (h *Hand) ReleaseContained() int {
	if h.grasped == nil || h.grasped.object.container == nil {
		return 0
	}
	return h.grasped.object.container.DetachAll(h)
}

// sample pushes one velocity sample for anchor a held by h.
func (h *Hand) sample(a *Anchor, conv velocity.Convention, speedFactor float64) {
	s := velocity.Sample{
		HandPosition:     h.transform.Position(),
		HandRotation:     h.transform.Rotation(),
		TrackingRotation: h.motion.TrackingRotation,
		Linear:           h.motion.Linear,
		Angular:          h.motion.Angular,
		ObjectPosition:   a.Position(),
	}
	a.estimator.Push(velocity.Compute(s, conv, speedFactor))
}
