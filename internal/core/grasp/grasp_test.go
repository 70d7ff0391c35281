package grasp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

type fixture struct {
	space *physics.Space
	sched *schedule.Scheduler
	bus   bus.EventBus
	world *World
	left  *Hand
	right *Hand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		space: physics.NewSpace(spatial.Zero),
		sched: schedule.New(),
		bus:   bus.New(),
	}
	f.world = NewWorld(DefaultSettings(), f.space, f.bus, f.sched, log.NewNop())

	lt := spatial.NewTransform("left")
	lt.SetPosition(spatial.Vec3{0, 1, 0})
	f.left = f.world.AddHand(SideLeft, lt)

	rt := spatial.NewTransform("right")
	rt.SetPosition(spatial.Vec3{10, 1, 0})
	f.right = f.world.AddHand(SideRight, rt)
	return f
}

func (f *fixture) spawn(t *testing.T, spec ObjectSpec) *Object {
	t.Helper()
	o, err := f.world.Spawn(spec)
	require.NoError(t, err)
	return o
}

func (f *fixture) fixedSteps(n int, linear spatial.Vec3) {
	f.left.SetMotion(Motion{Linear: linear})
	for i := 0; i < n; i++ {
		f.world.FixedUpdate(0.02)
	}
}

func small() spatial.Vec3 { return spatial.Vec3{0.05, 0.05, 0.05} }

func ingredient(name string, pos spatial.Vec3) ObjectSpec {
	return ObjectSpec{
		Name:     name,
		Kind:     KindIngredient,
		Position: pos,
		Anchors:  []AnchorSpec{{Extents: small()}},
	}
}

func bowl(name string, pos spatial.Vec3) ObjectSpec {
	return ObjectSpec{
		Name:     name,
		Kind:     KindContainer,
		Position: pos,
		Anchors:  []AnchorSpec{{Extents: spatial.Vec3{0.1, 0.1, 0.1}}},
		Volume:   &BoxSpec{Extents: spatial.Vec3{0.3, 0.3, 0.3}},
	}
}

func near(t *testing.T, want, got spatial.Vec3) {
	t.Helper()
	assert.True(t, spatial.Near(want, got, 1e-9), "want %v, got %v", want, got)
}

func TestGraspAndReleaseEndToEnd(t *testing.T) {
	f := newFixture(t)
	tomato := f.spawn(t, ingredient("tomato", spatial.Vec3{0, 1, 0.3}))
	anchor := tomato.Primary()

	got, err := f.left.Grasp()
	require.NoError(t, err)
	require.Same(t, anchor, got)

	assert.Equal(t, StateHeld, anchor.State())
	assert.Same(t, f.left, anchor.Holder())
	assert.True(t, anchor.IsMain())
	assert.Same(t, f.left.Transform(), tomato.Transform().Parent())
	assert.True(t, tomato.Body().Kinematic())
	near(t, spatial.Vec3{0, 1, 0.1}, tomato.Transform().Position())

	f.left.Transform().Translate(spatial.Vec3{1, 0, 0})
	near(t, spatial.Vec3{1, 1, 0.1}, tomato.Transform().Position())

	f.fixedSteps(5, spatial.Vec3{1, 0, 0})
	ok, err := f.left.Release()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, StateFree, anchor.State())
	assert.False(t, anchor.IsMain())
	assert.Nil(t, tomato.Transform().Parent())
	assert.False(t, tomato.Body().Kinematic())
	near(t, spatial.Vec3{1.5, 0, 0}, tomato.Body().Velocity())
	near(t, spatial.Vec3{1, 1, 0.1}, tomato.Transform().Position())
	assert.Nil(t, f.left.Grasped())
	near(t, spatial.Zero, anchor.Estimator().Average())
}

func TestReleaseAveragesPartialBuffer(t *testing.T) {
	f := newFixture(t)
	tomato := f.spawn(t, ingredient("tomato", spatial.Vec3{0, 1, 0.3}))
	_, err := f.left.Grasp()
	require.NoError(t, err)

	f.fixedSteps(3, spatial.Vec3{1, 0, 0})
	_, err = f.left.Release()
	require.NoError(t, err)
	near(t, spatial.Vec3{0.9, 0, 0}, tomato.Body().Velocity())
}

func TestAttachOnHeldAnchorIsNoop(t *testing.T) {
	f := newFixture(t)
	tomato := f.spawn(t, ingredient("tomato", spatial.Vec3{0, 1, 0.3}))
	a := tomato.Primary()

	ok, err := a.Attach(f.left)
	require.NoError(t, err)
	require.True(t, ok)
	pos := tomato.Transform().Position()

	ok, err = a.Attach(f.left)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = a.Attach(f.right)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Same(t, f.left, a.Holder())
	near(t, pos, tomato.Transform().Position())
}

func TestDetachByOtherHandIsNoop(t *testing.T) {
	f := newFixture(t)
	tomato := f.spawn(t, ingredient("tomato", spatial.Vec3{0, 1, 0.3}))
	a, err := f.left.Grasp()
	require.NoError(t, err)

	ok, err := a.Detach(f.right)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateHeld, a.State())
	assert.Same(t, f.left.Transform(), tomato.Transform().Parent())
	assert.True(t, tomato.Body().Kinematic())

	ok, err = a.Detach(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOneMainAnchorPerHeldObject(t *testing.T) {
	f := newFixture(t)
	spec := ObjectSpec{
		Name:     "baguette",
		Kind:     KindIngredient,
		Position: spatial.Vec3{0, 1, 0.5},
		Anchors: []AnchorSpec{
			{Name: "near", Offset: spatial.Vec3{0, 0, -0.2}, Extents: small()},
			{Name: "far", Offset: spatial.Vec3{0, 0, 0.2}, Extents: small()},
		},
	}
	baguette := f.spawn(t, spec)

	got, err := f.left.Grasp()
	require.NoError(t, err)
	assert.Equal(t, "near", got.Name())

	mains := 0
	for _, a := range baguette.Anchors() {
		assert.Equal(t, StateHeld, a.State())
		if a.IsMain() {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
	assert.Same(t, got, baguette.Main())

	far := baguette.Anchors()[1]
	ok, err := far.Attach(f.right)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.left.Release()
	require.NoError(t, err)
	for _, a := range baguette.Anchors() {
		assert.True(t, a.Available())
		assert.False(t, a.IsMain())
	}
}

func TestNearestUsesClosestPointAndScanOrder(t *testing.T) {
	f := newFixture(t)
	first := f.spawn(t, ingredient("first", spatial.Vec3{0.3, 1, 0}))
	f.spawn(t, ingredient("second", spatial.Vec3{-0.3, 1, 0}))

	a, dist, ok := f.left.Nearest()
	require.True(t, ok)
	assert.Same(t, first.Primary(), a)
	assert.InDelta(t, 0.25, dist, 1e-12)
}

func TestNothingInReach(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, ingredient("far", spatial.Vec3{0, 1, 2}))
	a, err := f.left.Grasp()
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestHandHoldsOneObject(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, ingredient("a", spatial.Vec3{0, 1, 0.2}))
	b := f.spawn(t, ingredient("b", spatial.Vec3{0.2, 1, 0}))

	_, err := f.left.Grasp()
	require.NoError(t, err)
	again, err := f.left.Grasp()
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, b.Primary().Available())
}

func TestMissingCapabilities(t *testing.T) {
	f := newFixture(t)
	spec := ingredient("plate", spatial.Vec3{0, 1, 0.3})
	spec.Static = true
	plate := f.spawn(t, spec)

	ok, err := plate.Primary().Attach(f.left)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrMissingCapability)
	var ce *CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CapabilityBody, ce.Capability)
	assert.True(t, plate.Primary().Available())
	assert.Nil(t, plate.Transform().Parent())

	blade := ingredient("knife", spatial.Vec3{5, 1, 0})
	blade.Kind = KindBlade
	knife := f.spawn(t, blade)
	_, err = knife.Primary().Attach(f.right)
	require.ErrorIs(t, err, ErrMissingCapability)
	assert.True(t, IsCapabilityError(err))
	assert.True(t, knife.Primary().Available())
}

func TestBladeAlignsHandle(t *testing.T) {
	f := newFixture(t)
	handle := spatial.Vec3{0, 0, -0.1}
	knife := f.spawn(t, ObjectSpec{
		Name:     "knife",
		Kind:     KindBlade,
		Position: spatial.Vec3{0, 1, 0.3},
		Anchors:  []AnchorSpec{{Extents: small()}},
		Handle:   &handle,
	})

	_, err := f.left.Grasp()
	require.NoError(t, err)
	near(t, f.left.Transform().Position(), knife.Handle().Position())
	near(t, spatial.Vec3{1, 0, 0}, knife.Transform().Forward())
}

func TestContainerDeduplicatesByObject(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 0, 5}))
	carrot := f.spawn(t, ingredient("carrot", spatial.Vec3{0, 0, 9}))
	c := b.Container()

	assert.True(t, c.Add(carrot))
	assert.False(t, c.Add(carrot))
	assert.Equal(t, 1, c.Len())

	assert.False(t, c.Remove(carrot))
	assert.True(t, c.Contains(carrot))
	assert.True(t, c.Remove(carrot))
	assert.False(t, c.Contains(carrot))
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Add(b))
}

func TestContainerTriggerMembership(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 0, 5}))
	f.spawn(t, ObjectSpec{
		Name:     "leek",
		Kind:     KindIngredient,
		Position: spatial.Vec3{0, 0.1, 5},
		Anchors: []AnchorSpec{
			{Offset: spatial.Vec3{-0.05, 0, 0}, Extents: small()},
			{Offset: spatial.Vec3{0.05, 0, 0}, Extents: small()},
		},
	})

	require.NoError(t, f.space.Step(0.01))
	assert.Equal(t, 1, b.Container().Len())
}

func TestApplyVelocityOverwrites(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 0, 5}))
	x := f.spawn(t, ingredient("x", spatial.Vec3{3, 0, 5}))
	y := f.spawn(t, ingredient("y", spatial.Vec3{4, 0, 5}))
	x.Body().SetVelocity(spatial.Vec3{9, 9, 9})
	b.Container().Add(x)
	b.Container().Add(y)

	v := spatial.Vec3{0, 2, -1}
	b.Container().ApplyVelocity(v)
	assert.Equal(t, v, x.Body().Velocity())
	assert.Equal(t, v, y.Body().Velocity())
}

func TestContainerCascade(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	carrot := f.spawn(t, ObjectSpec{
		Name:     "carrot",
		Kind:     KindIngredient,
		Position: spatial.Vec3{0, 1.1, 0.3},
		Anchors:  []AnchorSpec{{Extents: spatial.Vec3{0.02, 0.02, 0.02}}},
	})
	pan := f.spawn(t, bowl("pan", spatial.Vec3{8, 0, 0}))
	require.NoError(t, f.space.Step(0.01))
	require.True(t, b.Container().Contains(carrot))
	b.Container().Add(pan)

	var attached []Attached
	_, err := f.bus.Subscribe(EventAttached, func(e bus.Event) error {
		attached = append(attached, e.Data().(Attached))
		return nil
	})
	require.NoError(t, err)

	got, err := f.left.Grasp()
	require.NoError(t, err)
	require.Same(t, b.Primary(), got)

	assert.Same(t, f.left, carrot.Holder())
	assert.True(t, carrot.Primary().IsMain())
	assert.True(t, carrot.Body().Kinematic())
	near(t, spatial.Vec3{0, 1.1, 0.1}, carrot.Transform().Position())
	assert.True(t, pan.Primary().Available(), "nested containers are not cascaded")
	require.Len(t, attached, 2)
	assert.True(t, attached[0].Contained)
	near(t, spatial.Vec3{0, 0, -0.2}, attached[0].Displacement)

	f.fixedSteps(5, spatial.Vec3{0, 0, 2})
	_, err = f.left.Release()
	require.NoError(t, err)

	assert.True(t, carrot.Primary().Available())
	assert.False(t, carrot.Body().Kinematic())
	near(t, spatial.Vec3{0, 0, 3}, b.Body().Velocity())
	near(t, spatial.Vec3{0, 0, 3}, carrot.Body().Velocity())
	near(t, spatial.Vec3{0, 0, 3}, pan.Body().Velocity())
}

func TestReleaseContainedKeepsContainer(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	carrot := f.spawn(t, ingredient("carrot", spatial.Vec3{0, 1.1, 0.3}))
	b.Container().Add(carrot)

	_, err := f.left.Grasp()
	require.NoError(t, err)
	require.False(t, carrot.Primary().Available())

	assert.Equal(t, 1, f.left.ReleaseContained())
	assert.True(t, carrot.Primary().Available())
	assert.False(t, b.Primary().Available())

	f.world.FixedUpdate(0.02)
	f.sched.Advance(1)
	assert.True(t, carrot.Primary().Available(), "contents do not settle after an explicit drop")
}

func TestSettleReattachesAfterDelay(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	carrot := f.spawn(t, ingredient("carrot", spatial.Vec3{5, 0, 0}))

	_, err := f.left.Grasp()
	require.NoError(t, err)
	b.Container().Add(carrot)

	f.world.FixedUpdate(0.02)
	assert.True(t, b.Container().Settling(carrot))
	f.world.FixedUpdate(0.02)
	assert.Equal(t, 1, f.sched.Len())

	f.sched.Advance(0.4)
	assert.True(t, carrot.Primary().Available())
	f.sched.Advance(0.2)
	assert.Same(t, f.left, carrot.Holder())
	assert.False(t, b.Container().Settling(carrot))
}

func TestSettleCancelledOnRelease(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("bowl", spatial.Vec3{0, 1, 0.3}))
	carrot := f.spawn(t, ingredient("carrot", spatial.Vec3{5, 0, 0}))

	_, err := f.left.Grasp()
	require.NoError(t, err)
	b.Container().Add(carrot)
	f.world.FixedUpdate(0.02)
	require.True(t, b.Container().Settling(carrot))

	_, err = f.left.Release()
	require.NoError(t, err)
	assert.False(t, b.Container().Settling(carrot))
	f.sched.Advance(1)
	assert.True(t, carrot.Primary().Available())
}

func TestDestroyAllContained(t *testing.T) {
	f := newFixture(t)
	b := f.spawn(t, bowl("plate", spatial.Vec3{0, 0, 5}))
	x := f.spawn(t, ingredient("x", spatial.Vec3{3, 0, 5}))
	y := f.spawn(t, ingredient("y", spatial.Vec3{4, 0, 5}))
	b.Container().Add(x)
	b.Container().Add(y)
	require.Equal(t, 3, f.world.Registry().Len())

	var destroyed int
	_, _ = f.bus.Subscribe(EventDestroyed, func(bus.Event) error { destroyed++; return nil })

	assert.Equal(t, 2, b.Container().DestroyAllContained())
	assert.Equal(t, 1, f.world.Registry().Len())
	assert.Len(t, f.world.Objects(), 1)
	assert.True(t, x.Destroyed())
	assert.True(t, y.Destroyed())
	assert.Equal(t, 0, b.Container().Len())
	assert.Equal(t, 2, destroyed)
	assert.Len(t, f.space.Colliders(), 2)
}

func TestDestroyHeldObjectReleasesHand(t *testing.T) {
	f := newFixture(t)
	tomato := f.spawn(t, ingredient("tomato", spatial.Vec3{0, 1, 0.3}))
	_, err := f.left.Grasp()
	require.NoError(t, err)

	f.world.Destroy(tomato)
	assert.Nil(t, f.left.Grasped())
	assert.Equal(t, 0, f.world.Registry().Len())
	assert.True(t, tomato.Destroyed())

	ok, err := tomato.Primary().Attach(f.left)
	require.NoError(t, err)
	assert.False(t, ok)
	f.world.Destroy(tomato)
}

func TestSpawnValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.world.Spawn(ObjectSpec{Name: "ghost"})
	assert.ErrorIs(t, err, ErrNoAnchors)

	spec := bowl("bowl", spatial.Zero)
	spec.Volume = nil
	_, err = f.world.Spawn(spec)
	assert.ErrorIs(t, err, ErrContainerVolume)

	o, ok := f.world.Object("ghost")
	assert.False(t, ok)
	assert.Nil(t, o)
}

func TestCollidersTriggerRespectsBaseTriggers(t *testing.T) {
	f := newFixture(t)
	spec := ingredient("onion", spatial.Vec3{0, 0, 3})
	spec.Hitboxes = []BoxSpec{
		{Extents: small(), Layer: physics.LayerDefault},
		{Extents: small(), BaseTrigger: true},
	}
	onion := f.spawn(t, spec)

	onion.SetCollidersTrigger(true)
	for _, c := range onion.Colliders() {
		assert.True(t, c.IsTrigger())
	}
	onion.SetCollidersTrigger(false)
	cs := onion.Colliders()
	assert.False(t, cs[0].IsTrigger())
	assert.False(t, cs[1].IsTrigger())
	assert.True(t, cs[2].IsTrigger())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindIngredient, KindBlade, KindContainer, KindUtensil} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("spoon")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestAttachKeepsOneObjectPerHand(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, ingredient("a", spatial.Vec3{0, 1, 0.3}))
	b := f.spawn(t, ingredient("b", spatial.Vec3{0.3, 1, 0}))
	c := f.spawn(t, ingredient("c", spatial.Vec3{10, 1, 0.3}))

	got, err := f.left.Grasp()
	require.NoError(t, err)
	require.Same(t, a.Primary(), got)

	ok, err := b.Primary().Attach(f.left)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, b.Primary().Available())
	assert.False(t, b.Body().Kinematic())
	assert.Same(t, a.Primary(), f.left.Grasped())

	ok, err = c.Primary().Attach(f.right)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, c.Primary(), f.right.Grasped())

	ok, err = f.right.Release()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.Primary().Available())
	assert.False(t, c.Body().Kinematic())
	assert.Nil(t, c.Transform().Parent())
	assert.Nil(t, f.right.Grasped())
}
