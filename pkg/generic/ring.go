package generic

// Ring is a fixed-capacity circular buffer. Every slot always holds a value;
// unwritten slots hold the zero value of T.
type Ring[T any] struct {
	slots []T
	head  int
}

// NewRing creates a ring with size slots. Sizes below one are raised to one.
func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{slots: make([]T, size), head: size - 1}
}

// Push advances the write head and overwrites the oldest slot.
func (r *Ring[T]) Push(value T) {
	r.head = (r.head + 1) % len(r.slots)
	r.slots[r.head] = value
}

// Latest returns the most recently written slot.
func (r *Ring[T]) Latest() T {
	return r.slots[r.head]
}

func (r *Ring[T]) Cap() int {
	return len(r.slots)
}

// Each visits every slot, oldest first.
func (r *Ring[T]) Each(fn func(T)) {
	n := len(r.slots)
	for i := 1; i <= n; i++ {
		fn(r.slots[(r.head+i)%n])
	}
}

// Reset zeroes every slot.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.slots {
		r.slots[i] = zero
	}
	r.head = len(r.slots) - 1
}
