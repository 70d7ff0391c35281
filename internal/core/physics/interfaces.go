// Package physics describes what the interaction core needs from the host
// physics engine (bodies, colliders, raycasts, trigger volumes) and ships a
// small in-memory Space implementing it for headless runs and tests.
package physics

import (
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Body is a simulated rigid body. Kinematic bodies are moved only by their
// transform hierarchy and ignore gravity and collisions.
type Body interface {
	Kinematic() bool
	SetKinematic(bool)
	Velocity() spatial.Vec3
	SetVelocity(spatial.Vec3)
}

// Caster answers ray queries against the environment.
type Caster interface {
	// Raycast returns the nearest non-trigger collider whose layer is in mask
	// along dir (need not be normalized) within maxDist.
	Raycast(origin, dir spatial.Vec3, maxDist float64, mask LayerMask) (Hit, bool)
}

// TriggerListener receives overlap changes for a trigger volume.
type TriggerListener interface {
	OnTriggerEnter(other *Collider)
	OnTriggerExit(other *Collider)
}

// Hit describes the first collider struck by a ray.
type Hit struct {
	Point    spatial.Vec3
	Distance float64
	Collider *Collider
}

// Surface is the gameplay tag of the struck collider, SurfaceNone when empty.
func (h Hit) Surface() Surface {
	if h.Collider == nil {
		return SurfaceNone
	}
	return h.Collider.Surface
}

// Layer is a collision category.
type Layer uint8

const (
	LayerDefault Layer = iota
	LayerKnife
	LayerFloor
	LayerGrab
	LayerPlayer
)

func (l Layer) String() string {
	switch l {
	case LayerDefault:
		return "default"
	case LayerKnife:
		return "knife"
	case LayerFloor:
		return "floor"
	case LayerGrab:
		return "grab"
	case LayerPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// LayerMask selects a set of layers.
type LayerMask uint32

func MaskOf(layers ...Layer) LayerMask {
	var m LayerMask
	for _, l := range layers {
		m |= 1 << l
	}
	return m
}

func (m LayerMask) Has(l Layer) bool { return m&(1<<l) != 0 }

// Surface tags colliders for gameplay decisions such as valid teleport
// targets.
type Surface uint8

const (
	SurfaceNone Surface = iota
	SurfaceFloor
	SurfaceWall
	SurfaceCounter
	SurfaceScreen
	SurfaceObject
)

func (s Surface) String() string {
	switch s {
	case SurfaceNone:
		return "none"
	case SurfaceFloor:
		return "floor"
	case SurfaceWall:
		return "wall"
	case SurfaceCounter:
		return "counter"
	case SurfaceScreen:
		return "screen"
	case SurfaceObject:
		return "object"
	default:
		return "unknown"
	}
}

// ParseSurface is the inverse of Surface.String.
func ParseSurface(name string) (Surface, bool) {
	for s := SurfaceNone; s <= SurfaceObject; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return SurfaceNone, false
}

// ParseLayer is the inverse of Layer.String.
func ParseLayer(name string) (Layer, bool) {
	for l := LayerDefault; l <= LayerPlayer; l++ {
		if l.String() == name {
			return l, true
		}
	}
	return LayerDefault, false
}
