package trajectory

import "errors"

var (
	ErrNoTrajectory  = errors.New("trajectory: no valid trajectory")
	ErrInvalidParams = errors.New("trajectory: invalid arc parameters")
)
