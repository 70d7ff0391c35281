package trajectory

import (
	"math"

	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// ArcParams describes a stepped ballistic cast.
type ArcParams struct {
	Origin   spatial.Vec3
	Velocity spatial.Vec3
	Gravity  spatial.Vec3
	Step     float64
	MaxSteps int
	Mask     physics.LayerMask
}

// Arc is the result of CastArc. Points starts at the origin. When Landed is
// true the last point is the hit point and Hit describes the collider.
type Arc struct {
	Points []spatial.Vec3
	Landed bool
	Hit    physics.Hit
}

// End returns the last point of the arc.
func (a Arc) End() (spatial.Vec3, bool) {
	if len(a.Points) == 0 {
		return spatial.Zero, false
	}
	return a.Points[len(a.Points)-1], true
}

// PointAt evaluates origin + v*t + g*t*t/2.
func (p ArcParams) PointAt(t float64) spatial.Vec3 {
	return p.Origin.Add(p.Velocity.Mul(t)).Add(p.Gravity.Mul(0.5 * t * t))
}

func (p ArcParams) validate() error {
	if p.Step <= 0 || math.IsNaN(p.Step) || math.IsInf(p.Step, 0) || p.MaxSteps <= 0 {
		return ErrInvalidParams
	}
	if !spatial.IsFinite(p.Origin) || !spatial.IsFinite(p.Velocity) || !spatial.IsFinite(p.Gravity) {
		return ErrInvalidParams
	}
	return nil
}

// CastArc steps the projectile described by p and raycasts every segment
// against caster, stopping at the first hit or after MaxSteps segments. buf is
// reused for the point list when it has capacity.
func CastArc(caster physics.Caster, p ArcParams, buf []spatial.Vec3) (Arc, error) {
	if err := p.validate(); err != nil {
		return Arc{}, err
	}

	points := append(buf[:0], p.Origin)
	prev := p.Origin
	for i := 1; i <= p.MaxSteps; i++ {
		next := p.PointAt(float64(i) * p.Step)
		seg := next.Sub(prev)
		if length := seg.Len(); length > 0 {
			if hit, ok := caster.Raycast(prev, seg, length, p.Mask); ok {
				points = append(points, hit.Point)
				return Arc{Points: points, Landed: true, Hit: hit}, nil
			}
		}
		points = append(points, next)
		prev = next
	}
	return Arc{Points: points}, nil
}
