package physics

import (
	"github.com/zeusync/graspvr/internal/core/spatial"
)

var _ Caster = (*Space)(nil)

// DefaultGravity matches the usual engine default.
var DefaultGravity = spatial.Vec3{0, -9.81, 0}

type triggerWatch struct {
	volume   *Collider
	listener TriggerListener
	inside   map[ColliderID]struct{}
}

// Space is a minimal single-threaded physics world: gravity integration,
// swept landing on static colliders, raycasts and trigger overlap events.
// Collision response between dynamic bodies is out of scope.
type Space struct {
	gravity   spatial.Vec3
	nextID    ColliderID
	colliders []*Collider
	bodies    []*RigidBody
	watches   []*triggerWatch
}

func NewSpace(gravity spatial.Vec3) *Space {
	return &Space{gravity: gravity}
}

func (s *Space) Gravity() spatial.Vec3 { return s.gravity }

func (s *Space) SetGravity(g spatial.Vec3) { s.gravity = g }

// AddCollider registers c and assigns its id.
func (s *Space) AddCollider(c *Collider) ColliderID {
	s.nextID++
	c.id = s.nextID
	s.colliders = append(s.colliders, c)
	return c.id
}

// RemoveCollider drops c from queries and from every trigger it was inside.
// No exit events are sent for removed colliders.
func (s *Space) RemoveCollider(c *Collider) {
	for i, existing := range s.colliders {
		if existing == c {
			s.colliders = append(s.colliders[:i], s.colliders[i+1:]...)
			break
		}
	}
	for i := 0; i < len(s.watches); i++ {
		w := s.watches[i]
		if w.volume == c {
			s.watches = append(s.watches[:i], s.watches[i+1:]...)
			i--
			continue
		}
		delete(w.inside, c.id)
	}
}

func (s *Space) Colliders() []*Collider {
	out := make([]*Collider, len(s.colliders))
	copy(out, s.colliders)
	return out
}

func (s *Space) AddBody(b *RigidBody) {
	s.bodies = append(s.bodies, b)
}

// SpawnBody creates a dynamic body bound to t and adds it to the space.
func (s *Space) SpawnBody(t *spatial.Transform) Body {
	b := NewRigidBody(t)
	s.AddBody(b)
	return b
}

// DespawnBody removes a body created by SpawnBody. Foreign bodies are ignored.
func (s *Space) DespawnBody(b Body) {
	if rb, ok := b.(*RigidBody); ok {
		s.RemoveBody(rb)
	}
}

func (s *Space) RemoveBody(b *RigidBody) {
	for i, existing := range s.bodies {
		if existing == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return
		}
	}
}

// Watch subscribes l to overlap changes of the trigger volume.
func (s *Space) Watch(volume *Collider, l TriggerListener) error {
	if volume.id == 0 {
		return ErrUnknownCollider
	}
	if !volume.IsTrigger() {
		return ErrNotTrigger
	}
	s.watches = append(s.watches, &triggerWatch{
		volume:   volume,
		listener: l,
		inside:   make(map[ColliderID]struct{}),
	})
	return nil
}

func (s *Space) Raycast(origin, dir spatial.Vec3, maxDist float64, mask LayerMask) (Hit, bool) {
	n, ok := spatial.Normalize(dir)
	if !ok || maxDist < 0 {
		return Hit{}, false
	}

	var best Hit
	found := false
	for _, c := range s.colliders {
		if c.IsTrigger() || !mask.Has(c.Layer) || c.Shape == nil {
			continue
		}
		d, ok := c.Shape.Raycast(origin, n, maxDist)
		if !ok {
			continue
		}
		if !found || d < best.Distance {
			best = Hit{Point: origin.Add(n.Mul(d)), Distance: d, Collider: c}
			found = true
		}
	}
	return best, found
}

// Step integrates every dynamic body and then refreshes trigger overlaps.
func (s *Space) Step(dt float64) error {
	if dt <= 0 {
		return ErrInvalidStep
	}
	for _, b := range s.bodies {
		s.integrate(b, dt)
	}
	s.updateTriggers()
	return nil
}

func (s *Space) integrate(b *RigidBody, dt float64) {
	if b.kinematic || b.transform == nil {
		return
	}
	if b.UseGravity {
		b.velocity = b.velocity.Add(s.gravity.Mul(dt))
	}
	move := b.velocity.Mul(dt)
	if move.Len() == 0 {
		return
	}
	from := b.transform.Position()
	if hit, ok := s.sweepStatic(from, move); ok {
		b.transform.SetPosition(hit.Point)
		b.velocity = spatial.Zero
		return
	}
	b.transform.SetPosition(from.Add(move))
}

func (s *Space) sweepStatic(from, move spatial.Vec3) (Hit, bool) {
	n, ok := spatial.Normalize(move)
	if !ok {
		return Hit{}, false
	}
	dist := move.Len()

	var best Hit
	found := false
	for _, c := range s.colliders {
		if !c.Static || c.IsTrigger() || c.Shape == nil {
			continue
		}
		d, ok := c.Shape.Raycast(from, n, dist)
		if !ok {
			continue
		}
		if !found || d < best.Distance {
			best = Hit{Point: from.Add(n.Mul(d)), Distance: d, Collider: c}
			found = true
		}
	}
	return best, found
}

func (s *Space) updateTriggers() {
	for _, w := range s.watches {
		volume, ok := w.volume.Bounds()
		if !ok {
			continue
		}

		now := make(map[ColliderID]struct{})
		var entered []*Collider
		for _, c := range s.colliders {
			if c == w.volume || c.BaseTrigger || c.Static {
				continue
			}
			b, ok := c.Bounds()
			if !ok || !volume.Intersects(b) {
				continue
			}
			now[c.id] = struct{}{}
			if _, was := w.inside[c.id]; !was {
				entered = append(entered, c)
			}
		}

		var exited []*Collider
		for _, c := range s.colliders {
			if _, was := w.inside[c.id]; !was {
				continue
			}
			if _, still := now[c.id]; !still {
				exited = append(exited, c)
			}
		}

		w.inside = now
		for _, c := range entered {
			w.listener.OnTriggerEnter(c)
		}
		for _, c := range exited {
			w.listener.OnTriggerExit(c)
		}
	}
}
