package velocity

import (
	"fmt"

	"github.com/zeusync/graspvr/internal/core/spatial"
)

// Convention selects how the controller's angular velocity is brought into
// world space. Input runtimes disagree here, so it is configured per source.
type Convention uint8

const (
	// ConventionLocal: angular velocity is in the controller frame.
	ConventionLocal Convention = iota
	// ConventionMirrored: angular velocity is negated and expressed in the
	// tracking frame, so the tracking rotation must be undone first.
	ConventionMirrored
)

func (c Convention) String() string {
	switch c {
	case ConventionLocal:
		return "local"
	case ConventionMirrored:
		return "mirrored"
	default:
		return "unknown"
	}
}

func ParseConvention(name string) (Convention, error) {
	switch name {
	case "local", "":
		return ConventionLocal, nil
	case "mirrored":
		return ConventionMirrored, nil
	default:
		return ConventionLocal, fmt.Errorf("velocity: unknown convention %q", name)
	}
}

// Sample is one physics step of hand motion relative to a held object.
type Sample struct {
	HandPosition     spatial.Vec3
	HandRotation     spatial.Quat
	TrackingRotation spatial.Quat
	Linear           spatial.Vec3
	Angular          spatial.Vec3
	ObjectPosition   spatial.Vec3
}

// AngularWorld converts the sample's angular velocity to world space.
func (s Sample) AngularWorld(c Convention) spatial.Vec3 {
	switch c {
	case ConventionMirrored:
		return s.HandRotation.Rotate(s.TrackingRotation.Inverse().Rotate(s.Angular.Mul(-1)))
	default:
		return s.HandRotation.Rotate(s.Angular)
	}
}

// Compute returns speedFactor times the linear velocity plus the tangential
// velocity the hand's rotation induces at the object position.
func Compute(s Sample, c Convention, speedFactor float64) spatial.Vec3 {
	lever := s.ObjectPosition.Sub(s.HandPosition)
	tangential := s.AngularWorld(c).Cross(lever)
	return s.Linear.Add(tangential).Mul(speedFactor)
}
