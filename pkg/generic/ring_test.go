package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect[T any](r *Ring[T]) []T {
	var out []T
	r.Each(func(v T) { out = append(out, v) })
	return out
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing[int](3)
	assert.Equal(t, []int{0, 0, 0}, collect(r))

	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{0, 1, 2}, collect(r))
	assert.Equal(t, 2, r.Latest())

	r.Push(3)
	r.Push(4)
	assert.Equal(t, []int{2, 3, 4}, collect(r))
	assert.Equal(t, 3, r.Cap())
}

func TestRingReset(t *testing.T) {
	r := NewRing[int](2)
	r.Push(7)
	r.Push(8)
	r.Reset()
	assert.Equal(t, []int{0, 0}, collect(r))
	r.Push(5)
	assert.Equal(t, []int{0, 5}, collect(r))
}

func TestRingMinimumSize(t *testing.T) {
	r := NewRing[string](0)
	assert.Equal(t, 1, r.Cap())
	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"b"}, collect(r))
}
