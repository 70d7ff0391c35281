package grasp

import "fmt"

// Kind is the closed set of grabbable object categories.
type Kind uint8

const (
	KindIngredient Kind = iota
	KindBlade
	KindContainer
	KindUtensil
)

func (k Kind) String() string {
	switch k {
	case KindIngredient:
		return "ingredient"
	case KindBlade:
		return "blade"
	case KindContainer:
		return "container"
	case KindUtensil:
		return "utensil"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String. Unknown names match ErrUnknownKind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "ingredient":
		return KindIngredient, nil
	case "blade":
		return KindBlade, nil
	case "container":
		return KindContainer, nil
	case "utensil":
		return KindUtensil, nil
	default:
		return KindIngredient, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Side tells the two hands apart.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// State of a single anchor.
type State uint8

const (
	StateFree State = iota
	StateHeld
)

func (s State) String() string {
	if s == StateHeld {
		return "held"
	}
	return "free"
}
