package grasp

import (
	"errors"

	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

const settleKind = "settle/"

var _ physics.TriggerListener = (*Container)(nil)

// Container tracks the objects resting inside another object's trigger
// volume. Membership is per object: every anchor collider that enters adds a
// reference and the object stays contained while any reference remains.
type Container struct {
	owner   *Object
	volume  *physics.Collider
	refs    map[*Object]int
	order   []*Object
	holder  *Hand
	subject string
}

func newContainer(owner *Object, volume *physics.Collider) *Container {
	return &Container{
		owner:   owner,
		volume:  volume,
		refs:    make(map[*Object]int),
		subject: "container/" + owner.id.String(),
	}
}

func (c *Container) Owner() *Object            { return c.owner }
func (c *Container) Volume() *physics.Collider { return c.volume }
func (c *Container) Len() int                  { return len(c.order) }
func (c *Container) Contains(o *Object) bool   { return c.refs[o] > 0 }

// Objects returns the contained objects in the order they entered.
func (c *Container) Objects() []*Object {
	out := make([]*Object, len(c.order))
	copy(out, c.order)
	return out
}

// Add records one more reference to o and reports whether o became contained.
func (c *Container) Add(o *Object) bool {
	if o == nil || o == c.owner || o.destroyed {
		return false
	}
	c.refs[o]++
	if c.refs[o] > 1 {
		return false
	}
	c.order = append(c.order, o)
	c.owner.world.logger.Debug("Object entered container",
		log.String("container", c.owner.name),
		log.String("object", o.name))
	return true
}

// Remove drops one reference to o and reports whether o left the container.
func (c *Container) Remove(o *Object) bool {
	n, ok := c.refs[o]
	if !ok {
		return false
	}
	if n > 1 {
		c.refs[o] = n - 1
		return false
	}
	c.purge(o)
	c.owner.world.logger.Debug("Object left container",
		log.String("container", c.owner.name),
		log.String("object", o.name))
	return true
}

func (c *Container) purge(o *Object) {
	if _, ok := c.refs[o]; !ok {
		return
	}
	delete(c.refs, o)
	for i, existing := range c.order {
		if existing == o {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.owner.world.scheduler.Cancel(c.settleKey(o))
}

// OnTriggerEnter counts anchor colliders entering the volume.
func (c *Container) OnTriggerEnter(other *physics.Collider) {
	if a, ok := other.Owner.(*Anchor); ok {
		c.Add(a.object)
	}
}

// OnTriggerExit releases an object whose anchor left the volume.
func (c *Container) OnTriggerExit(other *physics.Collider) {
	if a, ok := other.Owner.(*Anchor); ok {
		c.Remove(a.object)
	}
}

// AttachAll attaches every contained object that is not itself a container
// to h, shifting each by displacement.
func (c *Container) AttachAll(h *Hand, displacement spatial.Vec3) int {
	c.holder = h
	n := 0
	for _, o := range c.Objects() {
		if o.kind == KindContainer {
			continue
		}
		if p := o.Primary(); p != nil && p.attachContained(h, displacement) {
			n++
		}
	}
	return n
}

// DetachAll releases every contained object held by h, skipping nested
// containers, and cancels pending settles.
func (c *Container) DetachAll(h *Hand) int {
	c.holder = nil
	c.owner.world.scheduler.CancelSubject(c.subject)
	n := 0
	for _, o := range c.Objects() {
		if o.kind == KindContainer {
			continue
		}
		p := o.Primary()
		if p == nil {
			continue
		}
		if ok, _ := p.Detach(h); ok {
			n++
		}
	}
	return n
}

// ApplyVelocity overwrites the velocity of every contained object.
func (c *Container) ApplyVelocity(v spatial.Vec3) {
	for _, o := range c.order {
		if o.body != nil {
			o.body.SetVelocity(v)
		}
	}
}

// DestroyAllContained destroys the contents with a single registry rebuild.
func (c *Container) DestroyAllContained() int {
	objects := c.Objects()
	c.owner.world.destroyAll(objects)
	return len(objects)
}

// Settling reports whether a re-attach of o is pending.
func (c *Container) Settling(o *Object) bool {
	return c.owner.world.scheduler.Pending(c.settleKey(o))
}

func (c *Container) settleKey(o *Object) schedule.Key {
	return schedule.Key{Subject: c.subject, Kind: settleKind + o.id.String()}
}

// settle schedules a delayed re-attach for every free object dropped into the
// container while it is held.
func (c *Container) settle() {
	if c.holder == nil || c.owner.Primary().Available() {
		return
	}
	w := c.owner.world
	for _, o := range c.order {
		if o.kind == KindContainer {
			continue
		}
		if p := o.Primary(); p == nil || !p.Available() {
			continue
		}
		w.scheduler.Schedule(c.settleKey(o), w.settings.SettleDelay, func() {
			if c.holder == nil || c.owner.destroyed {
				return
			}
			c.AttachAll(c.holder, spatial.Zero)
		})
	}
}

// checkContents validates the objects an attach would cascade to.
func (c *Container) checkContents() error {
	var errs error
	for _, o := range c.order {
		if o.kind == KindContainer {
			continue
		}
		if err := o.checkGraspable(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
