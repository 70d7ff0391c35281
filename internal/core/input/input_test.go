package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

func TestScriptedRepeatsKeyframes(t *testing.T) {
	var a, b Frame
	a.Left.IndexTrigger = 1
	b.Right.StickY = 1

	s := NewScripted(Keyframe{Frame: a, Repeat: 2}, Keyframe{Frame: b})
	assert.Equal(t, 3, s.Frames())

	var got []Frame
	for f, ok := s.Next(); ok; f, ok = s.Next() {
		got = append(got, f)
	}
	require.Len(t, got, 3)
	assert.Equal(t, a, got[0])
	assert.Equal(t, a, got[1])
	assert.Equal(t, b, got[2])

	_, ok := s.Next()
	assert.False(t, ok)

	s.Rewind()
	f, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, a, f)
}

func TestFrameHand(t *testing.T) {
	var f Frame
	f.SetHand(grasp.SideLeft, HandState{IndexTrigger: 0.2})
	f.SetHand(grasp.SideRight, HandState{IndexTrigger: 0.7})
	assert.Equal(t, 0.2, f.Hand(grasp.SideLeft).IndexTrigger)
	assert.Equal(t, 0.7, f.Hand(grasp.SideRight).IndexTrigger)
}

func TestTrackerDrivesHands(t *testing.T) {
	world := grasp.NewWorld(grasp.DefaultSettings(), physics.NewSpace(spatial.Zero), bus.New(), schedule.New(), log.NewNop())

	rig := spatial.NewTransform("rig")
	rig.SetPosition(spatial.Vec3{5, 0, 0})
	lt := spatial.NewTransform("left")
	lt.SetParent(rig)
	left := world.AddHand(grasp.SideLeft, lt)

	var f Frame
	f.Left = HandState{
		Position:     spatial.Vec3{0, 1, 0},
		Linear:       spatial.Vec3{1, 0, 0},
		IndexTrigger: 0.8,
	}
	tr := NewTracker(NewScripted(Keyframe{Frame: f}), log.NewNop(), left)
	assert.Equal(t, "input", tr.Name())

	require.NoError(t, tr.Update(0.01))
	assert.InDelta(t, 5, lt.Position().X(), 1e-9)
	assert.InDelta(t, 1, lt.Position().Y(), 1e-9)
	assert.Equal(t, spatial.Vec3{1, 0, 0}, left.Motion().Linear)
	assert.Equal(t, spatial.Identity(), left.Motion().TrackingRotation)
	assert.Equal(t, 0.8, tr.Current(grasp.SideLeft).IndexTrigger)
	assert.Equal(t, 0.0, tr.Previous(grasp.SideLeft).IndexTrigger)
	assert.False(t, tr.Done())

	// Exhausted: pose holds, motion stops.
	require.NoError(t, tr.Update(0.01))
	assert.True(t, tr.Done())
	assert.Equal(t, uint64(1), tr.Frames())
	assert.InDelta(t, 1, lt.Position().Y(), 1e-9)
	assert.Equal(t, spatial.Zero, left.Motion().Linear)
	assert.Equal(t, 0.8, tr.Current(grasp.SideLeft).IndexTrigger)
}
