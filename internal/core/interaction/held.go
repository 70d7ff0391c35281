package interaction

import (
	"errors"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
)

// HeldTracker keeps the set of objects currently attached to a hand, in
// attach order, by listening to grasp events.
type HeldTracker struct {
	held  []*grasp.Object
	index map[*grasp.Object]int
	subs  []bus.Subscription
}

// NewHeldTracker subscribes to attach, detach and destroy events. Close
// removes the subscriptions.
func NewHeldTracker(eventBus bus.EventBus) (*HeldTracker, error) {
	t := &HeldTracker{index: make(map[*grasp.Object]int)}
	handlers := map[string]bus.EventHandler{
		grasp.EventAttached:  t.onAttached,
		grasp.EventDetached:  t.onDetached,
		grasp.EventDestroyed: t.onDestroyed,
	}
	for _, typ := range []string{grasp.EventAttached, grasp.EventDetached, grasp.EventDestroyed} {
		sub, err := eventBus.Subscribe(typ, handlers[typ])
		if err != nil {
			return nil, errors.Join(err, t.Close())
		}
		t.subs = append(t.subs, sub)
	}
	return t, nil
}

func (t *HeldTracker) Len() int { return len(t.held) }

// IsHeld reports whether o is attached to any hand.
func (t *HeldTracker) IsHeld(o *grasp.Object) bool {
	_, ok := t.index[o]
	return ok
}

// Objects returns a copy of the held objects in attach order.
func (t *HeldTracker) Objects() []*grasp.Object {
	out := make([]*grasp.Object, len(t.held))
	copy(out, t.held)
	return out
}

func (t *HeldTracker) Close() error {
	var errs []error
	for _, s := range t.subs {
		errs = append(errs, s.Cancel())
	}
	t.subs = nil
	return errors.Join(errs...)
}

func (t *HeldTracker) onAttached(e bus.Event) error {
	if a, ok := e.Data().(grasp.Attached); ok {
		t.add(a.Object)
	}
	return nil
}

func (t *HeldTracker) onDetached(e bus.Event) error {
	if d, ok := e.Data().(grasp.Detached); ok {
		t.remove(d.Object)
	}
	return nil
}

func (t *HeldTracker) onDestroyed(e bus.Event) error {
	if d, ok := e.Data().(grasp.Destroyed); ok {
		t.remove(d.Object)
	}
	return nil
}

func (t *HeldTracker) add(o *grasp.Object) {
	if _, ok := t.index[o]; ok {
		return
	}
	t.index[o] = len(t.held)
	t.held = append(t.held, o)
}

func (t *HeldTracker) remove(o *grasp.Object) {
	i, ok := t.index[o]
	if !ok {
		return
	}
	delete(t.index, o)
	t.held = append(t.held[:i], t.held[i+1:]...)
	for j := i; j < len(t.held); j++ {
		t.index[t.held[j]] = j
	}
}
