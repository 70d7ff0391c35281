// Package interaction implements the player-facing features built on top of
// grasping: hand controllers, attraction, teleportation, the container speed
// killer, held-object tracking and the kitchen loop of cutting, dispensing
// and meal delivery. Every per-frame feature is a systems.System.
package interaction

import (
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/input"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Controls exposes the controller state of the current and previous frame.
type Controls interface {
	Current(side grasp.Side) input.HandState
	Previous(side grasp.Side) input.HandState
}

// Scene answers ray queries and reports gravity.
type Scene interface {
	physics.Caster
	Gravity() spatial.Vec3
}

// TriggerHost registers extra trigger volumes.
type TriggerHost interface {
	AddCollider(c *physics.Collider) physics.ColliderID
	RemoveCollider(c *physics.Collider)
	Watch(volume *physics.Collider, l physics.TriggerListener) error
}

// Event types published by the interaction systems.
const (
	EventAttracted      = "interaction.attracted"
	EventScreenSelected = "interaction.screen_selected"
	EventTeleported     = "interaction.teleported"
	EventSpeedKilled    = "interaction.speed_killed"
	EventCut            = "interaction.cut"
	EventDispensed      = "interaction.dispensed"
	EventMealDelivered  = "interaction.meal_delivered"
	EventMealExpired    = "interaction.meal_expired"
)

type Attracted struct {
	Hand     *grasp.Hand
	Object   *grasp.Object
	Velocity spatial.Vec3
}

type ScreenSelected struct {
	Hand     *grasp.Hand
	Collider *physics.Collider
}

type Teleported struct {
	Hand *grasp.Hand
	From spatial.Vec3
	To   spatial.Vec3
}

type SpeedKilled struct {
	Container *grasp.Container
	Object    *grasp.Object
	Before    spatial.Vec3
	After     spatial.Vec3
}

// Cut is published after the halves have spawned; Object is already
// destroyed.
type Cut struct {
	Blade  *grasp.Object
	Object *grasp.Object
	Halves []*grasp.Object
}

type Dispensed struct {
	Dispenser string
	Object    *grasp.Object
}

// Meal is the payload of EventMealDelivered and EventMealExpired. Ingredients
// counts the contents destroyed with the plate.
type Meal struct {
	Plate       *grasp.Object
	Recipe      []string
	Ingredients int
}

func cooldownSubject(h *grasp.Hand) string { return "hand/" + h.Side().String() }
