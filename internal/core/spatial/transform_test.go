package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.True(t, Near(want, got, 1e-9), "want %v, got %v", want, got)
}

func TestSetParentKeepsWorldPose(t *testing.T) {
	hand := NewTransform("hand")
	hand.SetPosition(Vec3{1, 1, 0})
	hand.SetRotation(YawRotation(90))

	obj := NewTransform("tomato")
	obj.SetPosition(Vec3{2, 1, 0})

	require.True(t, obj.SetParent(hand))
	vecNear(t, Vec3{2, 1, 0}, obj.Position())
	assert.Same(t, hand, obj.Parent())
	assert.Len(t, hand.Children(), 1)

	hand.Translate(Vec3{0, 0, 5})
	vecNear(t, Vec3{2, 1, 5}, obj.Position())

	require.True(t, obj.SetParent(nil))
	assert.Nil(t, obj.Parent())
	assert.Empty(t, hand.Children())
	vecNear(t, Vec3{2, 1, 5}, obj.Position())
}

func TestSetParentRejectsCycle(t *testing.T) {
	a := NewTransform("a")
	b := NewTransform("b")
	require.True(t, b.SetParent(a))
	assert.False(t, a.SetParent(b))
	assert.Nil(t, a.Parent())
}

func TestForwardFollowsRotation(t *testing.T) {
	tr := NewTransform("hand")
	vecNear(t, Forward, tr.Forward())
	tr.SetRotation(YawRotation(90))
	vecNear(t, Vec3{1, 0, 0}, tr.Forward())
}

func TestTransformPoint(t *testing.T) {
	tr := NewTransform("knife")
	tr.SetPosition(Vec3{0, 1, 0})
	tr.SetRotation(YawRotation(90))
	vecNear(t, Vec3{1, 1, 0}, tr.TransformPoint(Vec3{0, 0, 1}))
}

func TestBoundsClosestPoint(t *testing.T) {
	b := Bounds{Center: Vec3{0, 0, 0}, Extents: Vec3{1, 1, 1}}
	vecNear(t, Vec3{1, 0, 0}, b.ClosestPoint(Vec3{3, 0, 0}))
	vecNear(t, Vec3{0.5, 0.5, 0}, b.ClosestPoint(Vec3{0.5, 0.5, 0}))
	assert.InDelta(t, 2.0, b.Distance(Vec3{3, 0, 0}), 1e-12)
	assert.Zero(t, b.Distance(Vec3{0.2, 0, 0}))
}

func TestBoundsIntersectRay(t *testing.T) {
	b := Bounds{Center: Vec3{0, 0, 5}, Extents: Vec3{1, 1, 1}}

	d, ok := b.IntersectRay(Vec3{0, 0, 0}, Forward, 10)
	require.True(t, ok)
	assert.InDelta(t, 4.0, d, 1e-12)

	_, ok = b.IntersectRay(Vec3{0, 0, 0}, Forward, 3)
	assert.False(t, ok)

	_, ok = b.IntersectRay(Vec3{0, 5, 0}, Forward, 10)
	assert.False(t, ok)
}

func TestBoundsIntersects(t *testing.T) {
	a := Bounds{Center: Vec3{0, 0, 0}, Extents: Vec3{1, 1, 1}}
	assert.True(t, a.Intersects(Bounds{Center: Vec3{1.5, 0, 0}, Extents: Vec3{1, 1, 1}}))
	assert.False(t, a.Intersects(Bounds{Center: Vec3{3, 0, 0}, Extents: Vec3{0.5, 0.5, 0.5}}))
}

func TestNormalizeZero(t *testing.T) {
	_, ok := Normalize(Zero)
	assert.False(t, ok)
	n, ok := Normalize(Vec3{0, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, 1.0, n.Len(), 1e-12)
}

func TestNearToleratesRoundingAroundZero(t *testing.T) {
	got := YawRotation(90).Rotate(Forward)
	assert.True(t, Near(Vec3{1, 0, 0}, got, 1e-9), "got %v", got)
	assert.True(t, Near(Vec3{1, 1, 0}, Vec3{1, 1, 2.220446049250313e-16}, 1e-9))
	assert.False(t, Near(Vec3{1, 1, 0}, Vec3{1, 1, 1e-6}, 1e-9))
}
