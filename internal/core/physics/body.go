package physics

import "github.com/zeusync/graspvr/internal/core/spatial"

var _ Body = (*RigidBody)(nil)

// RigidBody is the reference Body. It moves the transform it is bound to.
type RigidBody struct {
	transform  *spatial.Transform
	velocity   spatial.Vec3
	kinematic  bool
	UseGravity bool
}

func NewRigidBody(t *spatial.Transform) *RigidBody {
	return &RigidBody{transform: t, UseGravity: true}
}

func (b *RigidBody) Transform() *spatial.Transform { return b.transform }

func (b *RigidBody) Kinematic() bool { return b.kinematic }

func (b *RigidBody) SetKinematic(k bool) { b.kinematic = k }

func (b *RigidBody) Velocity() spatial.Vec3 { return b.velocity }

func (b *RigidBody) SetVelocity(v spatial.Vec3) { b.velocity = v }
