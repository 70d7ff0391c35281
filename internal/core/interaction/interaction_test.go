package interaction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/input"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/trajectory"
)

type fakeControls struct {
	now    input.Frame
	before input.Frame
}

func (c *fakeControls) Current(s grasp.Side) input.HandState  { return c.now.Hand(s) }
func (c *fakeControls) Previous(s grasp.Side) input.HandState { return c.before.Hand(s) }

type env struct {
	space    *physics.Space
	sched    *schedule.Scheduler
	bus      bus.EventBus
	world    *grasp.World
	rig      *spatial.Transform
	left     *grasp.Hand
	right    *grasp.Hand
	controls *fakeControls
}

func newEnv(t *testing.T, gravity spatial.Vec3) *env {
	t.Helper()
	e := &env{
		space:    physics.NewSpace(gravity),
		sched:    schedule.New(),
		bus:      bus.New(),
		rig:      spatial.NewTransform("rig"),
		controls: &fakeControls{},
	}
	e.world = grasp.NewWorld(grasp.DefaultSettings(), e.space, e.bus, e.sched, log.NewNop())

	lt := spatial.NewTransform("left")
	lt.SetParent(e.rig)
	lt.SetLocalPosition(spatial.Vec3{0, 1, 0})
	e.left = e.world.AddHand(grasp.SideLeft, lt)

	rt := spatial.NewTransform("right")
	rt.SetParent(e.rig)
	rt.SetLocalPosition(spatial.Vec3{10, 1, 0})
	e.right = e.world.AddHand(grasp.SideRight, rt)
	return e
}

func (e *env) spawn(t *testing.T, spec grasp.ObjectSpec) *grasp.Object {
	t.Helper()
	o, err := e.world.Spawn(spec)
	require.NoError(t, err)
	return o
}

func (e *env) record(t *testing.T, eventType string) *[]bus.Event {
	t.Helper()
	var got []bus.Event
	_, err := e.bus.Subscribe(eventType, func(ev bus.Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	return &got
}

func (e *env) edit(side grasp.Side, fn func(s *input.HandState)) {
	s := e.controls.now.Hand(side)
	fn(&s)
	e.controls.now.SetHand(side, s)
}

func tomato(name string, pos spatial.Vec3) grasp.ObjectSpec {
	return grasp.ObjectSpec{
		Name:        name,
		Kind:        grasp.KindIngredient,
		Position:    pos,
		Attractable: true,
		Anchors:     []grasp.AnchorSpec{{Extents: spatial.Vec3{0.05, 0.05, 0.05}}},
	}
}

func bowl(name string, pos spatial.Vec3) grasp.ObjectSpec {
	return grasp.ObjectSpec{
		Name:        name,
		Kind:        grasp.KindContainer,
		Position:    pos,
		Attractable: true,
		Anchors:     []grasp.AnchorSpec{{Extents: spatial.Vec3{0.1, 0.1, 0.1}}},
		Volume:      &grasp.BoxSpec{Extents: spatial.Vec3{0.3, 0.3, 0.3}},
	}
}

func TestGrabSystemEdges(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 0.2}))
	g := NewGrabSystem(e.controls, DefaultCloseThreshold, log.NewNop(), e.left, e.right)

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.IndexTrigger = 0.8 })
	require.NoError(t, g.Update(0.01))
	require.NotNil(t, e.left.Grasped())
	assert.Same(t, o, e.left.Grasped().Object())
	assert.True(t, g.Closed(grasp.SideLeft))
	assert.False(t, g.Closed(grasp.SideRight))

	// Holding the trigger is not an edge.
	e.edit(grasp.SideLeft, func(s *input.HandState) { s.IndexTrigger = 1 })
	require.NoError(t, g.Update(0.01))
	assert.True(t, o.Held())

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.IndexTrigger = 0.5 })
	require.NoError(t, g.Update(0.01))
	assert.Nil(t, e.left.Grasped())
	assert.False(t, o.Held())
}

func TestGrabSystemReportsCapabilityErrors(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	e.spawn(t, grasp.ObjectSpec{
		Name:     "knife",
		Kind:     grasp.KindBlade,
		Position: spatial.Vec3{0, 1, 0.2},
		Anchors:  []grasp.AnchorSpec{{Extents: spatial.Vec3{0.05, 0.05, 0.05}}},
	})
	g := NewGrabSystem(e.controls, DefaultCloseThreshold, log.NewNop(), e.left)

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.IndexTrigger = 1 })
	err := g.Update(0.01)
	require.Error(t, err)
	assert.True(t, grasp.IsCapabilityError(err))
	assert.Nil(t, e.left.Grasped())
}

func TestGrabSystemReleasesContents(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 0.45}))
	require.NoError(t, e.space.Step(0.02))
	require.True(t, b.Container().Contains(o))

	g := NewGrabSystem(e.controls, DefaultCloseThreshold, log.NewNop(), e.left)
	e.edit(grasp.SideLeft, func(s *input.HandState) { s.IndexTrigger = 1 })
	require.NoError(t, g.Update(0.01))
	require.True(t, b.Held())
	require.True(t, o.Held())

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.ReleaseContained = true })
	require.NoError(t, g.Update(0.01))
	assert.True(t, b.Held())
	assert.False(t, o.Held())
}

func TestAttractLaunchesTowardHand(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	o := e.spawn(t, grasp.ObjectSpec{
		Name:        "tomato",
		Kind:        grasp.KindIngredient,
		Position:    spatial.Vec3{0, 1, 5},
		Attractable: true,
		Anchors:     []grasp.AnchorSpec{{Extents: spatial.Vec3{0.1, 0.1, 0.1}}},
	})
	events := e.record(t, EventAttracted)
	a := NewAttractSystem(DefaultAttractSettings(), e.controls, e.space, e.sched, e.bus, log.NewNop(), e.left, e.right)

	e.edit(grasp.SideLeft, func(s *input.HandState) {
		s.HandTrigger = 1
		s.Grab = true
	})
	e.edit(grasp.SideRight, func(s *input.HandState) { s.HandTrigger = 1 })
	require.NoError(t, a.Update(0.01))

	want, err := trajectory.LaunchVelocity(spatial.Vec3{0, 0, -5}, physics.DefaultGravity.Len(), 15)
	require.NoError(t, err)
	got := o.Body().Velocity()
	assert.InDelta(t, want.X(), got.X(), 1e-9)
	assert.InDelta(t, want.Y(), got.Y(), 1e-9)
	assert.InDelta(t, want.Z(), got.Z(), 1e-9)
	assert.Less(t, got.Z(), 0.0)

	hit, ok := a.Pointing(grasp.SideLeft)
	require.True(t, ok)
	assert.InDelta(t, 4.9, hit.Point.Z(), 1e-9)
	_, ok = a.Pointing(grasp.SideRight)
	assert.False(t, ok)

	require.Len(t, *events, 1)
	assert.Same(t, o, (*events)[0].Data().(Attracted).Object)

	assert.False(t, o.Attractable())
	assert.True(t, a.CoolingDown(e.left))
	for _, c := range o.Colliders() {
		assert.True(t, c.IsTrigger())
	}

	// Cooling down: nothing happens.
	o.Body().SetVelocity(spatial.Zero)
	require.NoError(t, a.Update(0.01))
	assert.Equal(t, spatial.Zero, o.Body().Velocity())

	e.sched.Advance(0.3)
	for _, c := range o.Colliders() {
		assert.False(t, c.IsTrigger())
	}
	assert.False(t, o.Attractable())

	e.sched.Advance(2)
	assert.True(t, o.Attractable())
	assert.False(t, a.CoolingDown(e.left))
	require.NoError(t, a.Update(0.01))
	assert.NotEqual(t, spatial.Zero, o.Body().Velocity())
	assert.Len(t, *events, 2)
}

func TestAttractNeedsGrabButton(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 3}))
	a := NewAttractSystem(DefaultAttractSettings(), e.controls, e.space, e.sched, e.bus, log.NewNop(), e.left)

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.HandTrigger = 1 })
	require.NoError(t, a.Update(0.01))
	_, ok := a.Pointing(grasp.SideLeft)
	assert.True(t, ok)
	assert.Equal(t, spatial.Zero, o.Body().Velocity())

	e.edit(grasp.SideLeft, func(s *input.HandState) {
		s.HandTrigger = 0.5
		s.Grab = true
	})
	require.NoError(t, a.Update(0.01))
	_, ok = a.Pointing(grasp.SideLeft)
	assert.False(t, ok)
	assert.Equal(t, spatial.Zero, o.Body().Velocity())
}

func TestAttractContainerCarriesContents(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 4}))
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 4.2}))
	b.Container().Add(o)

	a := NewAttractSystem(DefaultAttractSettings(), e.controls, e.space, e.sched, e.bus, log.NewNop(), e.left)
	e.edit(grasp.SideLeft, func(s *input.HandState) {
		s.HandTrigger = 1
		s.Grab = true
	})
	require.NoError(t, a.Update(0.01))

	v := b.Body().Velocity()
	assert.NotEqual(t, spatial.Zero, v)
	assert.Equal(t, v, o.Body().Velocity())
}

func TestAttractScreen(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	screen := &physics.Collider{
		Shape:   physics.Box{Offset: spatial.Vec3{10, 1, 5}, Extents: spatial.Vec3{1, 1, 0.1}},
		Layer:   physics.LayerDefault,
		Surface: physics.SurfaceScreen,
		Static:  true,
	}
	e.space.AddCollider(screen)
	events := e.record(t, EventScreenSelected)

	a := NewAttractSystem(DefaultAttractSettings(), e.controls, e.space, e.sched, e.bus, log.NewNop(), e.right)
	e.edit(grasp.SideRight, func(s *input.HandState) {
		s.HandTrigger = 1
		s.Grab = true
	})
	require.NoError(t, a.Update(0.01))
	require.NoError(t, a.Update(0.01))

	require.Len(t, *events, 1)
	assert.Same(t, screen, (*events)[0].Data().(ScreenSelected).Collider)
	assert.True(t, a.CoolingDown(e.right))
}

func floor(s *physics.Space) {
	s.AddCollider(&physics.Collider{
		Shape:   physics.Plane{Point: spatial.Zero, Normal: spatial.Up},
		Layer:   physics.LayerFloor,
		Surface: physics.SurfaceFloor,
		Static:  true,
	})
}

func TestTeleportToFloor(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	floor(e.space)
	events := e.record(t, EventTeleported)
	tp := NewTeleportSystem(DefaultTeleportSettings(), e.controls, e.space, e.rig, e.sched, e.bus, log.NewNop(), e.left, e.right)

	// Not preparing: no arc.
	require.NoError(t, tp.Update(0.01))
	_, ok := tp.Arc(grasp.SideLeft)
	assert.False(t, ok)

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.StickY = 1 })
	require.NoError(t, tp.Update(0.01))
	arc, ok := tp.Arc(grasp.SideLeft)
	require.True(t, ok)
	require.True(t, arc.Landed)
	assert.Equal(t, physics.SurfaceFloor, arc.Hit.Surface())

	// Horizontal throw at 10 m/s from 1 m.
	wantZ := 10 * math.Sqrt(2/physics.DefaultGravity.Len())
	end, _ := arc.End()
	assert.InDelta(t, wantZ, end.Z(), 0.05)
	assert.InDelta(t, 0, end.Y(), 1e-9)

	// Aiming alone does not move the player.
	require.NoError(t, tp.FixedUpdate(0.02))
	assert.Equal(t, spatial.Zero, e.rig.Position())

	e.edit(grasp.SideLeft, func(s *input.HandState) { s.StickClick = true })
	require.NoError(t, tp.FixedUpdate(0.02))
	pos := e.rig.Position()
	assert.InDelta(t, end.Z(), pos.Z(), 1e-9)
	assert.InDelta(t, 0, pos.Y(), 1e-9)
	assert.InDelta(t, end.Z(), e.left.Transform().Position().Z(), 1e-9)
	require.Len(t, *events, 1)
	assert.True(t, tp.CoolingDown())

	require.NoError(t, tp.Update(0.01))
	_, ok = tp.Arc(grasp.SideLeft)
	assert.False(t, ok)
	require.NoError(t, tp.FixedUpdate(0.02))
	assert.Len(t, *events, 1)

	e.sched.Advance(0.3)
	assert.False(t, tp.CoolingDown())
	require.NoError(t, tp.Update(0.01))
	_, ok = tp.Arc(grasp.SideLeft)
	assert.True(t, ok)
}

func TestTeleportIgnoresNonFloorLanding(t *testing.T) {
	e := newEnv(t, physics.DefaultGravity)
	floor(e.space)
	e.space.AddCollider(&physics.Collider{
		Shape:   physics.Box{Offset: spatial.Vec3{0, 0.5, 3.05}, Extents: spatial.Vec3{0.5, 0.5, 0.5}},
		Layer:   physics.LayerDefault,
		Surface: physics.SurfaceCounter,
		Static:  true,
	})
	tp := NewTeleportSystem(DefaultTeleportSettings(), e.controls, e.space, e.rig, e.sched, e.bus, log.NewNop(), e.left)

	e.edit(grasp.SideLeft, func(s *input.HandState) {
		s.StickY = 1
		s.StickClick = true
	})
	require.NoError(t, tp.Update(0.01))
	arc, ok := tp.Arc(grasp.SideLeft)
	require.True(t, ok)
	require.True(t, arc.Landed)
	assert.Equal(t, physics.SurfaceCounter, arc.Hit.Surface())

	require.NoError(t, tp.FixedUpdate(0.02))
	assert.Equal(t, spatial.Zero, e.rig.Position())
	assert.False(t, tp.CoolingDown())
}

func TestSpeedKillerSlowsIncomingIngredient(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 0.5, 0}))
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 0.5, 2}))
	k, err := NewSpeedKiller(DefaultSpeedKillerSettings(), b.Container(), e.space, e.sched, e.bus, log.NewNop())
	require.NoError(t, err)
	events := e.record(t, EventSpeedKilled)

	o.Body().SetVelocity(spatial.Vec3{0, 0, -10})
	o.SetCollidersTrigger(true)
	for i := 0; i < 8; i++ {
		require.NoError(t, e.space.Step(0.02))
	}

	assert.Equal(t, 1, k.Killed())
	assert.False(t, b.Container().Contains(o))
	v := o.Body().Velocity()
	assert.InDelta(t, 0.5, v.Len(), 1e-9)
	assert.Less(t, v.Z(), 0.0)
	for _, c := range o.Colliders() {
		assert.False(t, c.IsTrigger())
	}
	require.Len(t, *events, 1)
	assert.InDelta(t, 10, (*events)[0].Data().(SpeedKilled).Before.Len(), 1e-9)
}

func TestSpeedKillerConditions(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 3}))
	k, err := NewSpeedKiller(DefaultSpeedKillerSettings(), b.Container(), e.space, e.sched, e.bus, log.NewNop())
	require.NoError(t, err)
	anchor := o.Primary().Collider()

	// At rest.
	k.OnTriggerEnter(anchor)
	assert.Equal(t, 0, k.Killed())

	// Not an anchor.
	o.Body().SetVelocity(spatial.Vec3{0, 0, -3})
	k.OnTriggerEnter(&physics.Collider{Owner: o})
	assert.Equal(t, 0, k.Killed())

	// Already contained.
	b.Container().Add(o)
	k.OnTriggerEnter(anchor)
	assert.Equal(t, 0, k.Killed())
	b.Container().Remove(o)

	// On cooldown after leaving.
	k.OnTriggerExit(anchor)
	assert.True(t, k.CoolingDown(o))
	k.OnTriggerEnter(anchor)
	assert.Equal(t, 0, k.Killed())
	e.sched.Advance(1.1)
	assert.False(t, k.CoolingDown(o))

	// Container in hand.
	_, err = e.left.Grasp()
	require.NoError(t, err)
	require.True(t, b.Held())
	k.OnTriggerEnter(anchor)
	assert.Equal(t, 0, k.Killed())
	_, err = e.left.Release()
	require.NoError(t, err)

	o.Body().SetVelocity(spatial.Vec3{0, 0, -3})
	k.OnTriggerEnter(anchor)
	assert.Equal(t, 1, k.Killed())
	assert.InDelta(t, 0.5, o.Body().Velocity().Len(), 1e-9)
}

func TestSpeedKillerRemovedWithContainer(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0}))
	k, err := NewSpeedKiller(DefaultSpeedKillerSettings(), b.Container(), e.space, e.sched, e.bus, log.NewNop())
	require.NoError(t, err)
	volume := k.Volume()
	require.Contains(t, e.space.Colliders(), volume)

	e.world.Destroy(b)
	assert.NotContains(t, e.space.Colliders(), volume)
	assert.Nil(t, k.Volume())
	assert.NoError(t, k.Close())
}

func TestHeldTracker(t *testing.T) {
	e := newEnv(t, spatial.Zero)
	ht, err := NewHeldTracker(e.bus)
	require.NoError(t, err)

	b := e.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	o := e.spawn(t, tomato("tomato", spatial.Vec3{0, 1, 0.45}))
	require.NoError(t, e.space.Step(0.02))
	require.True(t, b.Container().Contains(o))

	_, err = e.left.Grasp()
	require.NoError(t, err)
	assert.Equal(t, 2, ht.Len())
	assert.True(t, ht.IsHeld(b))
	assert.True(t, ht.IsHeld(o))

	assert.Equal(t, 1, e.left.ReleaseContained())
	assert.Equal(t, []*grasp.Object{b}, ht.Objects())

	e.world.Destroy(b)
	assert.Equal(t, 0, ht.Len())

	require.NoError(t, ht.Close())
	t2 := e.spawn(t, tomato("t2", spatial.Vec3{0, 1, 0.1}))
	_, err = e.left.Grasp()
	require.NoError(t, err)
	assert.True(t, t2.Held())
	assert.False(t, ht.IsHeld(t2))
}
