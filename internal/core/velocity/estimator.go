// Package velocity estimates the release velocity of a held object from the
// motion of the hand holding it.
package velocity

import (
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/pkg/generic"
)

const DefaultFrames = 5

// Estimator keeps the last few per-step velocity samples of a held anchor.
type Estimator struct {
	frames *generic.Ring[spatial.Vec3]
}

// NewEstimator creates an estimator with the given number of frames.
// Non-positive sizes fall back to DefaultFrames.
func NewEstimator(frames int) *Estimator {
	if frames <= 0 {
		frames = DefaultFrames
	}
	return &Estimator{frames: generic.NewRing[spatial.Vec3](frames)}
}

func (e *Estimator) Push(v spatial.Vec3) {
	e.frames.Push(v)
}

// Average is the arithmetic mean of every slot, including slots not yet
// written since the last Reset.
func (e *Estimator) Average() spatial.Vec3 {
	var sum spatial.Vec3
	e.frames.Each(func(v spatial.Vec3) {
		sum = sum.Add(v)
	})
	return sum.Mul(1 / float64(e.frames.Cap()))
}

func (e *Estimator) Reset() {
	e.frames.Reset()
}

func (e *Estimator) Len() int {
	return e.frames.Cap()
}
