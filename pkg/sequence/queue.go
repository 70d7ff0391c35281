package sequence

import "container/heap"

// HeapItem is a handle to a value stored in a Heap. It stays valid until the
// value is popped or removed.
type HeapItem[T any] struct {
	Value T
	index int
}

type heapItems[T any] struct {
	items []*HeapItem[T]
	less  func(a, b T) bool
}

func (h *heapItems[T]) Len() int {
	return len(h.items)
}

func (h *heapItems[T]) Less(i, j int) bool {
	return h.less(h.items[i].Value, h.items[j].Value)
}

func (h *heapItems[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *heapItems[T]) Push(x any) {
	item := x.(*HeapItem[T])
	item.index = len(h.items)
	h.items = append(h.items, item)
}

func (h *heapItems[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	h.items = old[0 : n-1]
	return item
}

// Heap is a min-heap ordered by a caller supplied less function.
type Heap[T any] struct {
	h heapItems[T]
}

func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	q := &Heap[T]{h: heapItems[T]{less: less}}
	heap.Init(&q.h)
	return q
}

func (q *Heap[T]) Push(value T) *HeapItem[T] {
	item := &HeapItem[T]{Value: value}
	heap.Push(&q.h, item)
	return item
}

func (q *Heap[T]) Pop() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.h).(*HeapItem[T])
	return item.Value, true
}

func (q *Heap[T]) Peek() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.h.items[0].Value, true
}

// Remove drops item from the heap. Removing an item twice is a no-op.
func (q *Heap[T]) Remove(item *HeapItem[T]) bool {
	if item == nil || item.index < 0 || item.index >= q.h.Len() || q.h.items[item.index] != item {
		return false
	}
	heap.Remove(&q.h, item.index)
	return true
}

func (q *Heap[T]) Len() int {
	return q.h.Len()
}

func (q *Heap[T]) IsEmpty() bool {
	return q.h.Len() == 0
}
