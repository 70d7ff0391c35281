package grasp

import "github.com/zeusync/graspvr/internal/core/spatial"

// Event types published on the world's bus.
const (
	EventAttached  = "grasp.attached"
	EventDetached  = "grasp.detached"
	EventSpawned   = "object.spawned"
	EventDestroyed = "object.destroyed"
)

// Attached is the payload of EventAttached. Contained is set when the attach
// came from a container cascade.
type Attached struct {
	Hand         *Hand
	Object       *Object
	Anchor       *Anchor
	Displacement spatial.Vec3
	Contained    bool
}

// Detached carries the release velocity of a thrown object.
type Detached struct {
	Hand     *Hand
	Object   *Object
	Velocity spatial.Vec3
}

// Spawned is published once the object is in the world.
type Spawned struct {
	Object *Object
}

// Destroyed is published after the object left the world.
type Destroyed struct {
	Object *Object
}
