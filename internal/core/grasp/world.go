package grasp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/registry"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/velocity"
)

// Host is the part of the physics engine the world needs to create and
// remove objects.
type Host interface {
	AddCollider(c *physics.Collider) physics.ColliderID
	RemoveCollider(c *physics.Collider)
	Watch(volume *physics.Collider, l physics.TriggerListener) error
	SpawnBody(t *spatial.Transform) physics.Body
	DespawnBody(b physics.Body)
}

// Settings tune grasping for every object of a world.
type Settings struct {
	GraspingRadius   float64
	DistanceFromHand float64
	SpeedFactor      float64
	VelocityFrames   int
	SettleDelay      float64
	Convention       velocity.Convention
}

// DefaultSettings mirrors the values the game shipped with.
func DefaultSettings() Settings {
	return Settings{
		GraspingRadius:   0.5,
		DistanceFromHand: 0.1,
		SpeedFactor:      1.5,
		VelocityFrames:   velocity.DefaultFrames,
		SettleDelay:      0.5,
		Convention:       velocity.ConventionLocal,
	}
}

// AnchorSpec places a grab point on an object. Offset is local to the object;
// a zero Radius uses the world's default grasping radius.
type AnchorSpec struct {
	Name    string
	Offset  spatial.Vec3
	Extents spatial.Vec3
	Radius  float64
}

// BoxSpec describes an extra collider attached to the object.
type BoxSpec struct {
	Offset      spatial.Vec3
	Extents     spatial.Vec3
	Layer       physics.Layer
	BaseTrigger bool
}

// ObjectSpec describes an object to spawn.
type ObjectSpec struct {
	Name string
	Kind Kind
	// Type is the gameplay identity shared by interchangeable objects, e.g.
	// "tomato". Cut recipes, dispensers and meals match on it.
	Type     string
	Parent   *spatial.Transform
	Position spatial.Vec3
	Rotation spatial.Quat
	// Static objects get no physics body and cannot be grasped.
	Static      bool
	Attractable bool
	Anchors     []AnchorSpec
	Hitboxes    []BoxSpec
	// Handle is the grip point of a blade, local to the object.
	Handle *spatial.Vec3
	// Volume is the trigger volume of a container.
	Volume *BoxSpec
}

// World owns every grabbable object and the hands that can hold them.
type World struct {
	settings  Settings
	host      Host
	bus       bus.EventBus
	scheduler *schedule.Scheduler
	registry  *registry.Registry[*Anchor]
	objects   []*Object
	hands     []*Hand
	logger    log.Log
}

// NewWorld creates an empty world. Objects are added with Spawn and hands with
// AddHand.
func NewWorld(settings Settings, host Host, eventBus bus.EventBus, scheduler *schedule.Scheduler, logger log.Log) *World {
	w := &World{
		settings:  settings,
		host:      host,
		bus:       eventBus,
		scheduler: scheduler,
		logger:    logger.With(log.String("component", "grasp")),
	}
	w.registry = registry.New[*Anchor](w.scanAnchors, (*Anchor).ID, logger)
	return w
}

func (w *World) Settings() Settings                    { return w.settings }
func (w *World) Registry() *registry.Registry[*Anchor] { return w.registry }
func (w *World) Scheduler() *schedule.Scheduler        { return w.scheduler }
func (w *World) Bus() bus.EventBus                     { return w.bus }

// Objects returns the live objects in spawn order.
func (w *World) Objects() []*Object {
	out := make([]*Object, len(w.objects))
	copy(out, w.objects)
	return out
}

// Hands returns the hands added with AddHand.
func (w *World) Hands() []*Hand {
	out := make([]*Hand, len(w.hands))
	copy(out, w.hands)
	return out
}

// Object finds a live object by name.
func (w *World) Object(name string) (*Object, bool) {
	for _, o := range w.objects {
		if o.name == name {
			return o, true
		}
	}
	return nil, false
}

// ContainerOf returns the container currently holding o, if any.
func (w *World) ContainerOf(o *Object) (*Container, bool) {
	for _, other := range w.objects {
		if other.container != nil && other.container.Contains(o) {
			return other.container, true
		}
	}
	return nil, false
}

// AddHand registers a hand driven by transform t.
func (w *World) AddHand(side Side, t *spatial.Transform) *Hand {
	h := &Hand{
		side:      side,
		transform: t,
		world:     w,
		motion:    Motion{TrackingRotation: spatial.Identity()},
		logger:    w.logger.With(log.String("hand", side.String())),
	}
	w.hands = append(w.hands, h)
	return h
}

// Spawn creates an object from spec and rebuilds the anchor registry.
func (w *World) Spawn(spec ObjectSpec) (*Object, error) {
	if len(spec.Anchors) == 0 {
		return nil, fmt.Errorf("spawn %q: %w", spec.Name, ErrNoAnchors)
	}
	if spec.Kind == KindContainer && spec.Volume == nil {
		return nil, fmt.Errorf("spawn %q: %w", spec.Name, ErrContainerVolume)
	}

	t := spatial.NewTransform(spec.Name)
	t.SetParent(spec.Parent)
	t.SetPosition(spec.Position)
	if spec.Rotation != (spatial.Quat{}) {
		t.SetRotation(spec.Rotation)
	}

	o := &Object{
		id:            uuid.New(),
		name:          spec.Name,
		kind:          spec.Kind,
		typ:           spec.Type,
		world:         w,
		transform:     t,
		initialParent: spec.Parent,
		attractable:   spec.Attractable,
	}
	if !spec.Static {
		o.body = w.host.SpawnBody(t)
	}
	if spec.Handle != nil {
		o.handle = spatial.NewTransform(spec.Name + "/handle")
		o.handle.SetParent(t)
		o.handle.SetLocalPosition(*spec.Handle)
	}

	for i, as := range spec.Anchors {
		name := as.Name
		if name == "" {
			name = fmt.Sprintf("anchor-%d", i)
		}
		radius := as.Radius
		if radius <= 0 {
			radius = w.settings.GraspingRadius
		}
		a := &Anchor{
			name:      name,
			object:    o,
			radius:    radius,
			estimator: velocity.NewEstimator(w.settings.VelocityFrames),
		}
		a.collider = &physics.Collider{
			Shape:   physics.Box{Transform: t, Offset: as.Offset, Extents: as.Extents},
			Layer:   physics.LayerGrab,
			Surface: physics.SurfaceObject,
			Owner:   a,
		}
		w.host.AddCollider(a.collider)
		o.anchors = append(o.anchors, a)
	}

	for _, hb := range spec.Hitboxes {
		c := &physics.Collider{
			Shape:       physics.Box{Transform: t, Offset: hb.Offset, Extents: hb.Extents},
			Layer:       hb.Layer,
			Surface:     physics.SurfaceObject,
			BaseTrigger: hb.BaseTrigger,
			Owner:       o,
		}
		w.host.AddCollider(c)
		o.hitboxes = append(o.hitboxes, c)
	}

	if spec.Volume != nil && spec.Kind == KindContainer {
		volume := &physics.Collider{
			Shape:       physics.Box{Transform: t, Offset: spec.Volume.Offset, Extents: spec.Volume.Extents},
			Layer:       spec.Volume.Layer,
			BaseTrigger: true,
		}
		o.container = newContainer(o, volume)
		volume.Owner = o.container
		w.host.AddCollider(volume)
		if err := w.host.Watch(volume, o.container); err != nil {
			w.removeFromHost(o)
			return nil, fmt.Errorf("spawn %q: %w", spec.Name, err)
		}
	}

	w.objects = append(w.objects, o)
	w.registry.Rebuild()

	w.logger.Info("Object spawned",
		log.String("object", o.name),
		log.String("kind", o.kind.String()),
		log.Int("anchors", len(o.anchors)))
	w.publish(EventSpawned, "world", Spawned{Object: o})
	return o, nil
}

// Destroy removes o from the scene. A held object is released first.
func (w *World) Destroy(o *Object) {
	w.destroyAll([]*Object{o})
}

func (w *World) destroyAll(objects []*Object) {
	removed := 0
	for _, o := range objects {
		if o == nil || o.destroyed {
			continue
		}
		if o.Held() {
			for _, a := range o.anchors {
				if a.holder != nil {
					_, _ = a.Detach(a.holder)
					break
				}
			}
		}
		if o.container != nil {
			w.scheduler.CancelSubject(o.container.subject)
		}
		for _, other := range w.objects {
			if other.container != nil {
				other.container.purge(o)
			}
		}
		w.removeFromHost(o)
		o.destroyed = true
		w.removeObject(o)
		removed++

		w.logger.Info("Object destroyed", log.String("object", o.name))
		w.publish(EventDestroyed, "world", Destroyed{Object: o})
	}
	if removed > 0 {
		w.registry.Rebuild()
	}
}

func (w *World) removeObject(o *Object) {
	for i, existing := range w.objects {
		if existing == o {
			w.objects = append(w.objects[:i], w.objects[i+1:]...)
			return
		}
	}
}

func (w *World) removeFromHost(o *Object) {
	for _, c := range o.Colliders() {
		w.host.RemoveCollider(c)
	}
	if o.container != nil {
		w.host.RemoveCollider(o.container.volume)
	}
	if o.body != nil {
		w.host.DespawnBody(o.body)
	}
}

// FixedUpdate samples the velocity of held anchors and lets held containers
// settle their contents.
func (w *World) FixedUpdate(float64) {
	for _, a := range w.registry.All() {
		if a.holder != nil {
			a.holder.sample(a, w.settings.Convention, w.settings.SpeedFactor)
		}
	}
	for _, o := range w.objects {
		if o.container != nil {
			o.container.settle()
		}
	}
}

func (w *World) scanAnchors() []*Anchor {
	var out []*Anchor
	for _, o := range w.objects {
		out = append(out, o.anchors...)
	}
	return out
}

func (w *World) publish(eventType, source string, data any) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(bus.NewEvent(eventType, source, data)); err != nil {
		w.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
