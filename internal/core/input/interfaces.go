// Package input turns controller state into hand poses and motion samples.
package input

import (
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Source produces one Frame per rendered frame. It reports false once it has
// nothing more to deliver.
type Source interface {
	Next() (Frame, bool)
}

// Buttons are the digital inputs of one controller.
type Buttons struct {
	// Grab is the face button used to confirm an attraction (A on the right
	// controller, X on the left).
	Grab bool
	// ReleaseContained drops the contents of a held container (B or Y).
	ReleaseContained bool
	StickClick       bool
}

// HandState is the controller state of one hand. Position and Rotation are
// local to the player rig; velocities are reported by the tracking runtime in
// tracking space.
type HandState struct {
	Position         spatial.Vec3
	Rotation         spatial.Quat
	Linear           spatial.Vec3
	Angular          spatial.Vec3
	TrackingRotation spatial.Quat

	IndexTrigger float64
	HandTrigger  float64
	StickX       float64
	StickY       float64

	Buttons
}

// Frame holds both controllers for one rendered frame.
type Frame struct {
	Left  HandState
	Right HandState
}

// Hand returns the state of the controller on side.
func (f Frame) Hand(side grasp.Side) HandState {
	if side == grasp.SideLeft {
		return f.Left
	}
	return f.Right
}

// SetHand replaces the state of the controller on side.
func (f *Frame) SetHand(side grasp.Side, s HandState) {
	if side == grasp.SideLeft {
		f.Left = s
		return
	}
	f.Right = s
}
