package grasp

import (
	"errors"

	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/velocity"
)

// Anchor is one grab point of an object.
type Anchor struct {
	name      string
	object    *Object
	collider  *physics.Collider
	radius    float64
	holder    *Hand
	main      bool
	estimator *velocity.Estimator
}

// Name is unique among the anchors of one object.
func (a *Anchor) Name() string { return a.name }

// Object is the object the anchor belongs to.
func (a *Anchor) Object() *Object { return a.object }

// Collider is the hitbox a hand's grasp sphere has to touch.
func (a *Anchor) Collider() *physics.Collider { return a.collider }

// GraspingRadius is how close a hand must be, measured from the anchor.
func (a *Anchor) GraspingRadius() float64 { return a.radius }

// Holder is the hand attached to the anchor, or nil.
func (a *Anchor) Holder() *Hand { return a.holder }

// IsMain reports whether this anchor was grabbed first and so drives the
// object's pose while it is held.
func (a *Anchor) IsMain() bool { return a.main }

// Available reports whether no hand holds the anchor.
func (a *Anchor) Available() bool { return a.holder == nil }

// Estimator tracks the anchor's velocity for throws.
func (a *Anchor) Estimator() *velocity.Estimator { return a.estimator }

// ID is stable for the lifetime of the anchor.
func (a *Anchor) ID() string {
	return a.object.id.String() + "/" + a.name
}

// State is StateHeld while a hand holds the anchor.
func (a *Anchor) State() State {
	if a.holder != nil {
		return StateHeld
	}
	return StateFree
}

// Position is the world-space center of the anchor's collider.
func (a *Anchor) Position() spatial.Vec3 {
	b, ok := a.collider.Bounds()
	if !ok {
		return a.object.transform.Position()
	}
	return b.Center
}

// Distance is measured to the closest point of the anchor's bounds, not to
// its center.
func (a *Anchor) Distance(p spatial.Vec3) float64 {
	b, ok := a.collider.Bounds()
	if !ok {
		return p.Sub(a.Position()).Len()
	}
	return b.Distance(p)
}

// Attach moves the anchor's object into hand h and makes it the hand's
// grasped object. It returns false without error when the anchor is already
// held or h already holds something. Missing collaborators are reported
// before any state changes.
func (a *Anchor) Attach(h *Hand) (bool, error) {
	if h == nil || h.grasped != nil || !a.Available() || a.object.destroyed {
		return false, nil
	}
	o := a.object
	if err := o.checkGraspable(); err != nil {
		return false, err
	}
	if o.container != nil {
		if err := o.container.checkContents(); err != nil {
			return false, err
		}
	}

	displacement := o.grab(h, a, false, spatial.Zero)
	h.grasped = a
	if o.container != nil {
		o.container.AttachAll(h, displacement)
	}

	o.world.logger.Debug("Anchor attached",
		log.String("object", o.name),
		log.String("anchor", a.name),
		log.String("hand", h.side.String()),
		log.Vec3("displacement", displacement))
	o.world.publish(EventAttached, h.side.String(), Attached{Hand: h, Object: o, Anchor: a, Displacement: displacement})
	return true, nil
}

// attachContained is the container cascade: like Attach but the main anchor
// moves by the container's displacement and the hand's grasped object stays
// the container.
func (a *Anchor) attachContained(h *Hand, shift spatial.Vec3) bool {
	if !a.Available() || a.object.destroyed || a.object.checkGraspable() != nil {
		return false
	}
	o := a.object
	o.grab(h, a, true, shift)
	o.world.publish(EventAttached, h.side.String(), Attached{Hand: h, Object: o, Anchor: a, Displacement: shift, Contained: true})
	return true
}

// Detach releases the anchor's object from h. Requests from any hand other
// than the holder are ignored.
func (a *Anchor) Detach(h *Hand) (bool, error) {
	if h == nil || a.holder != h {
		return false, nil
	}
	o := a.object
	if o.body == nil {
		return false, &CapabilityError{Object: o.name, Capability: CapabilityBody}
	}

	v := o.release(h)
	if h.grasped != nil && h.grasped.object == o {
		h.grasped = nil
	}

	o.world.logger.Debug("Anchor detached",
		log.String("object", o.name),
		log.String("hand", h.side.String()),
		log.Vec3("velocity", v))
	o.world.publish(EventDetached, h.side.String(), Detached{Hand: h, Object: o, Velocity: v})
	return true, nil
}

// IsCapabilityError reports whether err is a missing collaborator error.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}
