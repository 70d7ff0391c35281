package sequence

import (
	"iter"
	"slices"
)

// Iterator wraps an iter.Seq so lookups over registry snapshots and slices
// can be chained without intermediate allocations. It is re-iterable as long
// as the underlying sequence is.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From iterates data in index order. The slice is not copied.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

// Of wraps an existing sequence.
func Of[T any](seq iter.Seq[T]) *Iterator[T] {
	return &Iterator[T]{seq: seq}
}

func (i *Iterator[T]) Seq() iter.Seq[T] { return i.seq }

func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

func (i *Iterator[T]) Collect() []T {
	return slices.Collect(i.seq)
}

func (i *Iterator[T]) Filter(keep func(T) bool) *Iterator[T] {
	src := i.seq
	return Of(func(yield func(T) bool) {
		for v := range src {
			if keep(v) && !yield(v) {
				return
			}
		}
	})
}

// Find stops at the first match.
func (i *Iterator[T]) Find(match func(T) bool) (T, bool) {
	for v := range i.seq {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (i *Iterator[T]) Any(match func(T) bool) bool {
	_, ok := i.Find(match)
	return ok
}

func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}

// Min returns the element with the smallest key. On equal keys the earliest
// element wins.
func Min[T any](i *Iterator[T], key func(T) float64) (T, float64, bool) {
	var (
		best  T
		score float64
		found bool
	)
	for v := range i.seq {
		if k := key(v); !found || k < score {
			best, score, found = v, k, true
		}
	}
	return best, score, found
}

// Map lazily converts every element.
func Map[T, R any](i *Iterator[T], fn func(T) R) *Iterator[R] {
	src := i.seq
	return Of(func(yield func(R) bool) {
		for v := range src {
			if !yield(fn(v)) {
				return
			}
		}
	})
}
