// Package spatial holds the 3D math shared by the interaction core: vector
// aliases over mgl64, a parent/child transform hierarchy and axis-aligned
// bounds.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

var (
	Zero    = Vec3{}
	Up      = Vec3{0, 1, 0}
	Forward = Vec3{0, 0, 1}
)

// Normalize returns v scaled to unit length, or false for a zero vector.
func Normalize(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero, false
	}
	return v.Mul(1 / l), true
}

// Near compares component-wise with an absolute tolerance, so values that
// should be zero but carry rounding noise still match.
func Near(a, b Vec3, tol float64) bool {
	return a.ApproxFuncEqual(b, func(x, y float64) bool { return math.Abs(x-y) <= tol })
}

// Horizontal drops the Y component.
func Horizontal(v Vec3) Vec3 {
	return Vec3{v.X(), 0, v.Z()}
}

func Identity() Quat {
	return mgl64.QuatIdent()
}

// YawRotation rotates about the world up axis by deg degrees.
func YawRotation(deg float64) Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
}

// Euler builds a rotation from pitch (X), yaw (Y) and roll (Z) in degrees,
// applied in Y, X, Z order.
func Euler(pitch, yaw, roll float64) Quat {
	return mgl64.AnglesToQuat(mgl64.DegToRad(yaw), mgl64.DegToRad(pitch), mgl64.DegToRad(roll), mgl64.YXZ)
}

// IsFinite reports whether every component is a real number.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
