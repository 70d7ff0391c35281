package grasp

import (
	"github.com/google/uuid"

	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Object is a grabbable entity. It owns its anchors and, for containers, the
// container state.
type Object struct {
	id            uuid.UUID
	name          string
	kind          Kind
	typ           string
	world         *World
	transform     *spatial.Transform
	initialParent *spatial.Transform
	body          physics.Body
	handle        *spatial.Transform
	anchors       []*Anchor
	container     *Container
	hitboxes      []*physics.Collider
	attractable   bool
	destroyed     bool
}

func (o *Object) ID() uuid.UUID                     { return o.id }
func (o *Object) Name() string                      { return o.name }
func (o *Object) Kind() Kind                        { return o.kind }
func (o *Object) Type() string                      { return o.typ }
func (o *Object) Transform() *spatial.Transform     { return o.transform }
func (o *Object) Body() physics.Body                { return o.body }
func (o *Object) Handle() *spatial.Transform        { return o.handle }
func (o *Object) Container() *Container             { return o.container }
func (o *Object) InitialParent() *spatial.Transform { return o.initialParent }
func (o *Object) Destroyed() bool                   { return o.destroyed }

// Anchors returns a copy of the object's anchors in declaration order.
func (o *Object) Anchors() []*Anchor {
	out := make([]*Anchor, len(o.anchors))
	copy(out, o.anchors)
	return out
}

// Primary is the first anchor declared on the object.
func (o *Object) Primary() *Anchor {
	if len(o.anchors) == 0 {
		return nil
	}
	return o.anchors[0]
}

// Held reports whether any anchor of the object is held.
func (o *Object) Held() bool {
	return o.Holder() != nil
}

// Holder is the hand holding any anchor of the object, or nil.
func (o *Object) Holder() *Hand {
	for _, a := range o.anchors {
		if a.holder != nil {
			return a.holder
		}
	}
	return nil
}

// Main returns the main anchor while the object is held.
func (o *Object) Main() *Anchor {
	for _, a := range o.anchors {
		if a.main {
			return a
		}
	}
	return nil
}

// Attractable objects can be pulled towards a hand from a distance.
func (o *Object) Attractable() bool { return o.attractable && !o.destroyed }

func (o *Object) SetAttractable(v bool) { o.attractable = v }

// Colliders lists the anchor colliders followed by the hitboxes.
func (o *Object) Colliders() []*physics.Collider {
	out := make([]*physics.Collider, 0, len(o.anchors)+len(o.hitboxes))
	for _, a := range o.anchors {
		out = append(out, a.collider)
	}
	return append(out, o.hitboxes...)
}

// SetCollidersTrigger turns every collider of the object into a trigger or
// back into a solid. Colliders that are triggers by construction keep their
// state.
func (o *Object) SetCollidersTrigger(trigger bool) {
	for _, c := range o.Colliders() {
		c.SetTrigger(trigger)
	}
}

// Center is the world position of the object's root.
func (o *Object) Center() spatial.Vec3 {
	return o.transform.Position()
}

func (o *Object) checkGraspable() error {
	if o.body == nil {
		return &CapabilityError{Object: o.name, Capability: CapabilityBody}
	}
	if o.kind == KindBlade && o.handle == nil {
		return &CapabilityError{Object: o.name, Capability: CapabilityHandle}
	}
	return nil
}

// grab attaches every anchor of the object to h. first becomes main unless a
// sibling already is. With fromContainer the main anchor moves by
// containerShift instead of snapping in front of the hand. It returns the
// displacement applied to the object.
func (o *Object) grab(h *Hand, first *Anchor, fromContainer bool, containerShift spatial.Vec3) spatial.Vec3 {
	first.main = o.Main() == nil
	first.holder = h

	o.body.SetKinematic(true)
	o.transform.SetParent(h.transform)

	var displacement spatial.Vec3
	if first.main {
		if fromContainer {
			displacement = containerShift
		} else {
			displacement = o.snapTo(h, first)
		}
		o.transform.Translate(displacement)
	}

	for _, a := range o.anchors {
		if a.holder == nil {
			a.holder = h
		}
	}
	return displacement
}

// snapTo returns how far the object has to move so that it sits in the hand.
// Blades are also rotated so the handle lines up with the grip.
func (o *Object) snapTo(h *Hand, a *Anchor) spatial.Vec3 {
	settings := o.world.settings
	switch o.kind {
	case KindBlade:
		o.transform.SetRotation(h.transform.Rotation().Mul(spatial.YawRotation(90)))
		return h.transform.Position().Sub(o.handle.Position())
	case KindIngredient, KindContainer, KindUtensil:
		target := h.transform.Position().Add(h.transform.Forward().Mul(settings.DistanceFromHand))
		return target.Sub(a.Position())
	default:
		return spatial.Zero
	}
}

// release frees every anchor of the object held by h and returns the velocity
// applied to the body.
func (o *Object) release(h *Hand) spatial.Vec3 {
	o.transform.SetParent(o.initialParent)
	o.body.SetKinematic(false)

	if o.container != nil {
		o.container.DetachAll(h)
	}

	velocity := o.body.Velocity()
	if main := o.Main(); main != nil {
		velocity = main.estimator.Average()
		o.body.SetVelocity(velocity)
		if o.container != nil {
			o.container.ApplyVelocity(velocity)
		}
	}

	for _, a := range o.anchors {
		a.holder = nil
		a.main = false
		a.estimator.Reset()
	}
	return velocity
}
