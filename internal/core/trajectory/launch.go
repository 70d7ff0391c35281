// Package trajectory solves ballistic paths under constant gravity: the
// closed-form launch used to fling objects at the player and the stepped arc
// used to aim teleports.
package trajectory

import (
	"math"

	"github.com/zeusync/graspvr/internal/core/spatial"
)

// LaunchAngle is the fixed elevation of LaunchVelocity, in radians.
const LaunchAngle = math.Pi / 4

// LaunchVelocity returns the initial velocity that carries a projectile
// launched at 45 degrees across offset, where offset X/Z is the horizontal
// displacement to the target and offset Y the target's height above the
// launch point. g is the gravity magnitude. A positive speedCap rescales the
// result so its length never exceeds the cap.
func LaunchVelocity(offset spatial.Vec3, g, speedCap float64) (spatial.Vec3, error) {
	dx, dy, dz := offset.X(), offset.Y(), offset.Z()
	d := math.Hypot(dx, dz)
	if d == 0 || g <= 0 || !spatial.IsFinite(offset) || math.IsNaN(g) || math.IsInf(g, 0) {
		return spatial.Zero, ErrNoTrajectory
	}

	half := g / 2
	t := math.Sqrt(math.Abs(math.Sin(LaunchAngle)*d+dy) / half)
	if t == 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return spatial.Zero, ErrNoTrajectory
	}

	horizontal := d / t
	v := spatial.Vec3{
		horizontal * dx / d,
		(dy + half*t*t) / t,
		horizontal * dz / d,
	}

	if speedCap > 0 && v.Len() > speedCap {
		v = v.Normalize().Mul(speedCap)
	}
	return v, nil
}
