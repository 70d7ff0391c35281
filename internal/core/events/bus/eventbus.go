package bus

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyEventType = errors.New("bus: empty event type")
	ErrNilHandler     = errors.New("bus: nil handler")
)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    bool
	bus       *inMemoryBus
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active }

func (s *subscription) Cancel() error {
	if !s.active {
		return nil
	}
	s.active = false
	s.bus.remove(s)
	return nil
}

type inMemoryBus struct {
	// handlers: eventType -> subscriptions in subscription order
	handlers  map[string][]*subscription
	metrics   EventBusMetrics
	observers []EventBusObserver
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{handlers: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if eventType == "" {
		return nil, ErrEmptyEventType
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler, active: true, bus: b}
	b.handlers[eventType] = append(b.handlers[eventType], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	for _, existing := range b.observers {
		if existing == obs {
			return
		}
	}
	b.observers = append(b.observers, obs)
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	for i, existing := range b.observers {
		if existing == obs {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	return b.metrics
}

func (b *inMemoryBus) remove(s *subscription) {
	subs := b.handlers[s.eventType]
	for i, existing := range subs {
		if existing == s {
			// copy so that an in-flight delivery keeps its snapshot intact
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.handlers[s.eventType] = next
			break
		}
	}
	if len(b.handlers[s.eventType]) == 0 {
		delete(b.handlers, s.eventType)
	}
}

func (b *inMemoryBus) deliver(event Event) error {
	etype := event.Type()
	// typed handlers first, then wildcard ones
	subs := b.handlers[etype]
	if etype != AllEvents {
		if wild := b.handlers[AllEvents]; len(wild) > 0 {
			subs = append(subs[:len(subs):len(subs)], wild...)
		}
	}

	for _, obs := range b.observers {
		obs.OnPublish(etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.active {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(b.observers) > 0 {
		for _, obs := range b.observers {
			obs.OnDelivered(etype, delivered, all)
		}
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		var active uint64
		for _, list := range b.handlers {
			active += uint64(len(list))
		}
		b.metrics.SubscribersActive = active
	}
	return all
}
