package spatial

import "math"

// Bounds is an axis-aligned box given by its center and half-size.
type Bounds struct {
	Center  Vec3
	Extents Vec3
}

func (b Bounds) Min() Vec3 { return b.Center.Sub(b.Extents) }

func (b Bounds) Max() Vec3 { return b.Center.Add(b.Extents) }

// ClosestPoint clamps p onto the box. Points inside are returned unchanged.
func (b Bounds) ClosestPoint(p Vec3) Vec3 {
	lo, hi := b.Min(), b.Max()
	return Vec3{
		clamp(p.X(), lo.X(), hi.X()),
		clamp(p.Y(), lo.Y(), hi.Y()),
		clamp(p.Z(), lo.Z(), hi.Z()),
	}
}

// Distance is the distance from p to the closest point on the box.
func (b Bounds) Distance(p Vec3) float64 {
	return p.Sub(b.ClosestPoint(p)).Len()
}

func (b Bounds) Contains(p Vec3) bool {
	lo, hi := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}

func (b Bounds) Intersects(o Bounds) bool {
	alo, ahi := b.Min(), b.Max()
	blo, bhi := o.Min(), o.Max()
	for i := 0; i < 3; i++ {
		if ahi[i] < blo[i] || bhi[i] < alo[i] {
			return false
		}
	}
	return true
}

// IntersectRay runs a slab test. dir must be normalized; the returned
// distance is along dir and never exceeds maxDist. Rays starting inside the
// box report no hit.
func (b Bounds) IntersectRay(origin, dir Vec3, maxDist float64) (float64, bool) {
	if b.Contains(origin) {
		return 0, false
	}
	lo, hi := b.Min(), b.Max()
	tmin, tmax := 0.0, maxDist
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (lo[i] - origin[i]) * inv
		t2 := (hi[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
