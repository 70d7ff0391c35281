package physics

import (
	"math"

	"github.com/zeusync/graspvr/internal/core/spatial"
)

type ColliderID uint64

// Shape is the geometry behind a collider. dir passed to Raycast is
// normalized.
type Shape interface {
	Raycast(origin, dir spatial.Vec3, maxDist float64) (float64, bool)
	// Bounds returns false for unbounded shapes such as planes.
	Bounds() (spatial.Bounds, bool)
}

// Box is an axis-aligned box following a transform. Offset is expressed in
// the transform's local frame; Extents are world-aligned half sizes.
type Box struct {
	Transform *spatial.Transform
	Offset    spatial.Vec3
	Extents   spatial.Vec3
}

func (b Box) Bounds() (spatial.Bounds, bool) {
	center := b.Offset
	if b.Transform != nil {
		center = b.Transform.TransformPoint(b.Offset)
	}
	return spatial.Bounds{Center: center, Extents: b.Extents}, true
}

func (b Box) Raycast(origin, dir spatial.Vec3, maxDist float64) (float64, bool) {
	bounds, _ := b.Bounds()
	return bounds.IntersectRay(origin, dir, maxDist)
}

// Plane is a one-sided infinite plane; rays only hit its front face.
type Plane struct {
	Point  spatial.Vec3
	Normal spatial.Vec3
}

func (p Plane) Bounds() (spatial.Bounds, bool) { return spatial.Bounds{}, false }

func (p Plane) Raycast(origin, dir spatial.Vec3, maxDist float64) (float64, bool) {
	n, ok := spatial.Normalize(p.Normal)
	if !ok {
		return 0, false
	}
	denom := dir.Dot(n)
	if denom >= -1e-12 {
		return 0, false
	}
	t := p.Point.Sub(origin).Dot(n) / denom
	if t < 0 || t > maxDist || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}

// Collider binds a shape to a layer, a surface tag and an owner. Owner is
// opaque to the physics package; the grasp layer stores its anchors there.
type Collider struct {
	id      ColliderID
	Shape   Shape
	Layer   Layer
	Surface Surface
	// Static colliders stop falling bodies in Space.Step.
	Static bool
	// Trigger colliders are ignored by raycasts and sweeps.
	Trigger bool
	// BaseTrigger marks colliders that are trigger volumes by construction;
	// SetTrigger never changes them.
	BaseTrigger bool
	Owner       any
}

func (c *Collider) ID() ColliderID { return c.id }

func (c *Collider) SetTrigger(v bool) {
	if c.BaseTrigger {
		return
	}
	c.Trigger = v
}

func (c *Collider) IsTrigger() bool { return c.Trigger || c.BaseTrigger }

func (c *Collider) Bounds() (spatial.Bounds, bool) {
	if c.Shape == nil {
		return spatial.Bounds{}, false
	}
	return c.Shape.Bounds()
}
