// Package schedule runs delayed work on the simulation clock. Tasks are keyed
// by subject and kind; a key has at most one pending task.
package schedule

import (
	"github.com/zeusync/graspvr/pkg/sequence"
)

// Key identifies a pending task, e.g. {Subject: "bowl/tomato", Kind: "settle"}.
type Key struct {
	Subject string
	Kind    string
}

type task struct {
	key Key
	due float64
	seq uint64
	fn  func()
}

// Scheduler is a single-threaded timer queue advanced by the frame loop.
type Scheduler struct {
	now     float64
	seq     uint64
	queue   *sequence.Heap[*task]
	pending map[Key]*sequence.HeapItem[*task]
}

// New returns a scheduler whose clock starts at zero.
func New() *Scheduler {
	return &Scheduler{
		queue: sequence.NewHeap(func(a, b *task) bool {
			if a.due != b.due {
				return a.due < b.due
			}
			return a.seq < b.seq
		}),
		pending: make(map[Key]*sequence.HeapItem[*task]),
	}
}

// Now is the simulated time in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// Schedule runs fn once delay seconds from now. It returns false without
// scheduling when a task with the same key is already pending.
func (s *Scheduler) Schedule(key Key, delay float64, fn func()) bool {
	if _, exists := s.pending[key]; exists {
		return false
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.pending[key] = s.queue.Push(&task{key: key, due: s.now + delay, seq: s.seq, fn: fn})
	return true
}

// Cancel removes the pending task for key, reporting whether one existed.
func (s *Scheduler) Cancel(key Key) bool {
	item, ok := s.pending[key]
	if !ok {
		return false
	}
	delete(s.pending, key)
	s.queue.Remove(item)
	return true
}

// CancelSubject removes every pending task of the subject.
func (s *Scheduler) CancelSubject(subject string) int {
	n := 0
	for key := range s.pending {
		if key.Subject == subject && s.Cancel(key) {
			n++
		}
	}
	return n
}

func (s *Scheduler) Pending(key Key) bool {
	_, ok := s.pending[key]
	return ok
}

// Remaining is the time left before key fires, or 0 when nothing is pending.
func (s *Scheduler) Remaining(key Key) float64 {
	item, ok := s.pending[key]
	if !ok {
		return 0
	}
	return item.Value.due - s.now
}

func (s *Scheduler) Len() int { return s.queue.Len() }

// Advance moves the clock by dt and runs every task that came due, in due
// order. Tasks scheduled by a running task fire in the same call if they are
// already due.
func (s *Scheduler) Advance(dt float64) int {
	if dt > 0 {
		s.now += dt
	}
	fired := 0
	for {
		next, ok := s.queue.Peek()
		if !ok || next.due > s.now {
			return fired
		}
		s.queue.Pop()
		delete(s.pending, next.key)
		next.fn()
		fired++
	}
}
