package interaction

import (
	"errors"
	"fmt"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

// CutMask is what a blade edge sweeps against when it shoves objects aside.
var CutMask = physics.MaskOf(physics.LayerDefault, physics.LayerGrab)

// ErrNoRecipe is returned when a touched ingredient has no half to spawn.
var ErrNoRecipe = errors.New("interaction: no cut recipe for ingredient type")

// CutSettings apply to every blade.
type CutSettings struct {
	// RequiredSpeed is the blade speed, in units per second, that has to be
	// exceeded for a touch to cut.
	RequiredSpeed float64
	// Spread places each half this far from the cut along the blade's
	// forward axis.
	Spread     float64
	PushFactor float64
	// MaxPushes bounds how many objects one blade shoves per frame.
	MaxPushes int
}

// DefaultCutSettings cuts at any speed and pushes at most four objects.
func DefaultCutSettings() CutSettings {
	return CutSettings{
		RequiredSpeed: 0,
		Spread:        0.05,
		PushFactor:    1,
		MaxPushes:     4,
	}
}

// BladeSpec describes the cutting part of a blade, local to the blade.
type BladeSpec struct {
	Offset  spatial.Vec3
	Extents spatial.Vec3
	// Points are sampled along the edge for the sweep. They must lie outside
	// the blade's own anchors.
	Points []spatial.Vec3
}

// Zones reports whether an object rests in a protected area, such as a
// dispenser, where it cannot be cut.
type Zones interface {
	Contains(o *grasp.Object) bool
}

type blade struct {
	system  *CutSystem
	object  *grasp.Object
	edge    *physics.Collider
	points  []spatial.Vec3
	last    []spatial.Vec3
	lastPos spatial.Vec3
	speed   float64
	sampled bool
}

func (b *blade) OnTriggerEnter(other *physics.Collider) { b.system.touch(b, other) }
func (b *blade) OnTriggerExit(*physics.Collider)        {}

type pendingCut struct {
	blade  *blade
	object *grasp.Object
}

// CutSystem splits ingredients touched by a moving blade into two halves and
// lets blade edges push objects out of the way.
//
// Touches are reported during the physics step, so cuts are queued there and
// carried out in the following FixedUpdate.
type CutSystem struct {
	settings CutSettings
	world    *grasp.World
	host     TriggerHost
	caster   physics.Caster
	zones    Zones
	recipes  map[string]grasp.ObjectSpec
	bus      bus.EventBus
	sub      bus.Subscription
	blades   []*blade
	pending  []pendingCut
	queued   map[*grasp.Object]struct{}
	cuts     int
	pushes   int
	logger   log.Log
}

// NewCutSystem creates a cut system without blades or recipes. zones may be
// nil.
func NewCutSystem(
	settings CutSettings,
	world *grasp.World,
	host TriggerHost,
	caster physics.Caster,
	zones Zones,
	eventBus bus.EventBus,
	logger log.Log,
) (*CutSystem, error) {
	c := &CutSystem{
		settings: settings,
		world:    world,
		host:     host,
		caster:   caster,
		zones:    zones,
		recipes:  make(map[string]grasp.ObjectSpec),
		bus:      eventBus,
		queued:   make(map[*grasp.Object]struct{}),
		logger:   logger.With(log.String("system", "cut")),
	}
	if eventBus != nil {
		sub, err := eventBus.Subscribe(grasp.EventDestroyed, c.onDestroyed)
		if err != nil {
			return nil, fmt.Errorf("cut system: %w", err)
		}
		c.sub = sub
	}
	return c, nil
}

func (c *CutSystem) Name() string { return "cut" }
func (c *CutSystem) Cuts() int    { return c.cuts }
func (c *CutSystem) Pushes() int  { return c.pushes }

// SetRecipe registers the half spawned twice when an ingredient of type typ
// is cut. Name, Position and Parent of half are overridden on spawn; Rotation
// is applied on top of the blade's rotation.
func (c *CutSystem) SetRecipe(typ string, half grasp.ObjectSpec) {
	c.recipes[typ] = half
}

// Recipe returns the half spawned for ingredients of type typ.
func (c *CutSystem) Recipe(typ string) (grasp.ObjectSpec, bool) {
	r, ok := c.recipes[typ]
	return r, ok
}

// AddBlade gives o a cutting edge.
func (c *CutSystem) AddBlade(o *grasp.Object, spec BladeSpec) error {
	if o == nil || o.Destroyed() {
		return fmt.Errorf("add blade: %w", grasp.ErrDestroyed)
	}
	b := &blade{
		system: c,
		object: o,
		points: spec.Points,
		last:   make([]spatial.Vec3, len(spec.Points)),
	}
	b.edge = &physics.Collider{
		Shape:       physics.Box{Transform: o.Transform(), Offset: spec.Offset, Extents: spec.Extents},
		Layer:       physics.LayerKnife,
		BaseTrigger: true,
		Owner:       b,
	}
	c.host.AddCollider(b.edge)
	if err := c.host.Watch(b.edge, b); err != nil {
		c.host.RemoveCollider(b.edge)
		return fmt.Errorf("add blade %q: %w", o.Name(), err)
	}
	c.blades = append(c.blades, b)
	c.logger.Debug("Blade added", log.String("object", o.Name()), log.Int("points", len(spec.Points)))
	return nil
}

// Speed is the blade's speed measured over the last frame.
func (c *CutSystem) Speed(o *grasp.Object) (float64, bool) {
	for _, b := range c.blades {
		if b.object == o {
			return b.speed, true
		}
	}
	return 0, false
}

// Update measures blade speeds and sweeps blade edges through the scene.
func (c *CutSystem) Update(dt float64) error {
	if dt <= 0 {
		return nil
	}
	for _, b := range c.blades {
		pos := b.object.Transform().Position()
		if b.sampled {
			b.speed = pos.Sub(b.lastPos).Len() / dt
			c.sweep(b, dt)
		}
		b.lastPos = pos
		for i, p := range b.points {
			b.last[i] = b.object.Transform().TransformPoint(p)
		}
		b.sampled = true
	}
	return nil
}

// sweep casts from every edge point back to where it was last frame and
// shoves the objects it crosses horizontally out of the blade's path.
func (c *CutSystem) sweep(b *blade, dt float64) {
	pushed := make(map[*grasp.Object]struct{})
	for i, p := range b.points {
		if len(pushed) >= c.settings.MaxPushes {
			return
		}
		now := b.object.Transform().TransformPoint(p)
		back := b.last[i].Sub(now)
		dist := back.Len()
		if dist == 0 {
			continue
		}
		hit, ok := c.caster.Raycast(now, back, dist, CutMask)
		if !ok {
			continue
		}
		a, ok := hit.Collider.Owner.(*grasp.Anchor)
		if !ok || !a.Available() {
			continue
		}
		o := a.Object()
		if o == b.object || o.Body() == nil || o.Body().Kinematic() {
			continue
		}
		if _, done := pushed[o]; done {
			continue
		}
		pushed[o] = struct{}{}

		shift := spatial.Horizontal(now.Sub(hit.Point))
		boost := spatial.Horizontal(back.Mul(-1 / dt)).Mul(c.settings.PushFactor)
		c.push(o, shift, boost)
		if o.Container() != nil {
			for _, inner := range o.Container().Objects() {
				c.push(inner, shift, boost)
			}
		}
		c.pushes++
		c.logger.Debug("Pushed by blade",
			log.String("blade", b.object.Name()),
			log.String("object", o.Name()),
			log.Vec3("shift", shift))
	}
}

func (c *CutSystem) push(o *grasp.Object, shift, boost spatial.Vec3) {
	o.Transform().Translate(shift)
	if body := o.Body(); body != nil {
		body.SetVelocity(body.Velocity().Add(boost))
	}
}

// FixedUpdate carries out the cuts queued during the physics step.
func (c *CutSystem) FixedUpdate(float64) error {
	if len(c.pending) == 0 {
		return nil
	}
	pending := c.pending
	c.pending = nil
	clear(c.queued)

	var errs []error
	for _, p := range pending {
		if err := c.cut(p.blade, p.object); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CutSystem) touch(b *blade, other *physics.Collider) {
	var o *grasp.Object
	switch owner := other.Owner.(type) {
	case *grasp.Anchor:
		o = owner.Object()
	case *grasp.Object:
		o = owner
	default:
		return
	}
	if !c.cuttable(b, o) {
		return
	}
	c.queued[o] = struct{}{}
	c.pending = append(c.pending, pendingCut{blade: b, object: o})
}

func (c *CutSystem) cuttable(b *blade, o *grasp.Object) bool {
	if o == b.object || o.Destroyed() || o.Kind() != grasp.KindIngredient || o.Held() {
		return false
	}
	if _, ok := c.recipes[o.Type()]; !ok {
		return false
	}
	if _, ok := c.queued[o]; ok {
		return false
	}
	if b.speed <= c.settings.RequiredSpeed {
		return false
	}
	if _, ok := c.world.ContainerOf(o); ok {
		return false
	}
	return c.zones == nil || !c.zones.Contains(o)
}

func (c *CutSystem) cut(b *blade, o *grasp.Object) error {
	if o.Destroyed() || b.object.Destroyed() {
		return nil
	}
	half, ok := c.recipes[o.Type()]
	if !ok {
		return fmt.Errorf("cut %q: %w: %s", o.Name(), ErrNoRecipe, o.Type())
	}

	center := o.Center()
	bladeRot := b.object.Transform().Rotation()
	side := b.object.Transform().Forward().Mul(c.settings.Spread)
	extra := half.Rotation
	if extra == (spatial.Quat{}) {
		extra = spatial.Identity()
	}
	c.world.Destroy(o)

	right := half
	right.Name = o.Name() + "/right"
	right.Parent = o.InitialParent()
	right.Position = center.Add(side)
	right.Rotation = bladeRot.Mul(extra).Mul(spatial.YawRotation(180))

	left := half
	left.Name = o.Name() + "/left"
	left.Parent = o.InitialParent()
	left.Position = center.Sub(side)
	left.Rotation = bladeRot.Mul(extra)

	var halves []*grasp.Object
	for _, spec := range []grasp.ObjectSpec{right, left} {
		h, err := c.world.Spawn(spec)
		if err != nil {
			return fmt.Errorf("cut %q: %w", o.Name(), err)
		}
		halves = append(halves, h)
	}
	c.cuts++

	c.logger.Info("Ingredient cut",
		log.String("object", o.Name()),
		log.String("blade", b.object.Name()),
		log.Float64("speed", b.speed))
	if c.bus != nil {
		if err := c.bus.Publish(bus.NewEvent(EventCut, c.Name(), Cut{
			Blade:  b.object,
			Object: o,
			Halves: halves,
		})); err != nil {
			c.logger.Warn("Event handler failed", log.String("event", EventCut), log.Error(err))
		}
	}
	return nil
}

// Close removes every blade edge and stops listening for destruction.
func (c *CutSystem) Close() error {
	for _, b := range c.blades {
		c.host.RemoveCollider(b.edge)
	}
	c.blades = nil
	if c.sub == nil {
		return nil
	}
	err := c.sub.Cancel()
	c.sub = nil
	return err
}

func (c *CutSystem) onDestroyed(e bus.Event) error {
	d, ok := e.Data().(grasp.Destroyed)
	if !ok {
		return nil
	}
	for i, b := range c.blades {
		if b.object == d.Object {
			c.host.RemoveCollider(b.edge)
			c.blades = append(c.blades[:i], c.blades[i+1:]...)
			return nil
		}
	}
	return nil
}
