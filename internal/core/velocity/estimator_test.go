package velocity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/graspvr/internal/core/spatial"
)

func near(t *testing.T, want, got spatial.Vec3) {
	t.Helper()
	assert.True(t, spatial.Near(want, got, 1e-9), "want %v, got %v", want, got)
}

func TestAverageOfConstantSamples(t *testing.T) {
	e := NewEstimator(5)
	v := spatial.Vec3{1.5, -2, 0.25}
	for i := 0; i < e.Len(); i++ {
		e.Push(v)
	}
	near(t, v, e.Average())

	for i := 0; i < 7; i++ {
		e.Push(v)
	}
	near(t, v, e.Average())
}

func TestAverageIncludesUnwrittenSlots(t *testing.T) {
	e := NewEstimator(4)
	e.Push(spatial.Vec3{4, 0, 0})
	near(t, spatial.Vec3{1, 0, 0}, e.Average())

	e.Reset()
	near(t, spatial.Zero, e.Average())
}

func TestDefaultFrames(t *testing.T) {
	assert.Equal(t, DefaultFrames, NewEstimator(0).Len())
}

func TestComputeLinearOnly(t *testing.T) {
	s := Sample{
		HandRotation:     mgl64.QuatIdent(),
		TrackingRotation: mgl64.QuatIdent(),
		Linear:           spatial.Vec3{1, 0, 0},
		ObjectPosition:   spatial.Vec3{0, 0, 1},
	}
	near(t, spatial.Vec3{1.5, 0, 0}, Compute(s, ConventionLocal, 1.5))
}

func TestComputeAngularConventions(t *testing.T) {
	s := Sample{
		HandRotation:     mgl64.QuatIdent(),
		TrackingRotation: mgl64.QuatIdent(),
		Angular:          spatial.Vec3{0, 1, 0},
		ObjectPosition:   spatial.Vec3{0, 0, 1},
	}
	// Spinning about +Y moves a point on +Z towards +X.
	near(t, spatial.Vec3{1, 0, 0}, Compute(s, ConventionLocal, 1))
	near(t, spatial.Vec3{-1, 0, 0}, Compute(s, ConventionMirrored, 1))

	s.HandRotation = spatial.YawRotation(90)
	s.TrackingRotation = spatial.YawRotation(90)
	s.Angular = spatial.Vec3{0, 0, 1}
	// Rotating by the hand and undoing the tracking rotation cancel out.
	near(t, spatial.Vec3{0, 0, -1}.Cross(spatial.Vec3{0, 0, 1}), Compute(s, ConventionMirrored, 1))
}

func TestParseConvention(t *testing.T) {
	c, err := ParseConvention("mirrored")
	require.NoError(t, err)
	assert.Equal(t, ConventionMirrored, c)
	assert.Equal(t, "mirrored", c.String())

	_, err = ParseConvention("quest")
	assert.Error(t, err)
}
