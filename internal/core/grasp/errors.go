package grasp

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCapability = errors.New("grasp: missing capability")
	ErrNoAnchors         = errors.New("grasp: object has no anchors")
	ErrUnknownKind       = errors.New("grasp: unknown object kind")
	ErrContainerVolume   = errors.New("grasp: container needs a trigger volume")
	ErrDestroyed         = errors.New("grasp: object was destroyed")
)

// Capabilities an object may lack.
const (
	CapabilityBody   = "body"
	CapabilityHandle = "handle"
)

// CapabilityError reports which collaborator an object is missing. It matches
// ErrMissingCapability with errors.Is.
type CapabilityError struct {
	Object     string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("grasp: object %q has no %s", e.Object, e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return ErrMissingCapability
}
