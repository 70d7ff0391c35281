package physics

import "errors"

var (
	ErrUnknownCollider = errors.New("physics: unknown collider")
	ErrNotTrigger      = errors.New("physics: collider is not a trigger volume")
	ErrInvalidStep     = errors.New("physics: step must be positive")
)
