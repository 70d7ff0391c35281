package interaction

import (
	"fmt"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

type SpeedKillerSettings struct {
	// RemainingSpeed is the speed an incoming ingredient is slowed to.
	RemainingSpeed float64
	Cooldown       float64
	// Margin grows the container volume on every axis so the slowdown
	// happens before the object is counted as contained.
	Margin float64
}

// DefaultSpeedKillerSettings slows ingredients to 0.5 units per second.
func DefaultSpeedKillerSettings() SpeedKillerSettings {
	return SpeedKillerSettings{
		RemainingSpeed: 0.5,
		Cooldown:       1,
		Margin:         0.1,
	}
}

// SpeedKiller slows ingredients flying into a free container so they drop in
// instead of bouncing out. It owns a trigger volume slightly larger than the
// container's and removes it when the container is destroyed.
type SpeedKiller struct {
	settings  SpeedKillerSettings
	container *grasp.Container
	volume    *physics.Collider
	host      TriggerHost
	scheduler *schedule.Scheduler
	bus       bus.EventBus
	sub       bus.Subscription
	subject   string
	killed    int
	logger    log.Log
}

// NewSpeedKiller adds a trigger volume around container to host. The
// container volume must be a box.
func NewSpeedKiller(
	settings SpeedKillerSettings,
	container *grasp.Container,
	host TriggerHost,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	logger log.Log,
) (*SpeedKiller, error) {
	box, ok := container.Volume().Shape.(physics.Box)
	if !ok {
		return nil, fmt.Errorf("speed killer for %q: container volume is not a box", container.Owner().Name())
	}
	margin := spatial.Vec3{settings.Margin, settings.Margin, settings.Margin}

	k := &SpeedKiller{
		settings:  settings,
		container: container,
		host:      host,
		scheduler: scheduler,
		bus:       eventBus,
		subject:   "speedkiller/" + container.Owner().ID().String(),
		logger:    logger.With(log.String("system", "speed_killer"), log.String("container", container.Owner().Name())),
	}
	k.volume = &physics.Collider{
		Shape:       physics.Box{Transform: box.Transform, Offset: box.Offset, Extents: box.Extents.Add(margin)},
		Layer:       container.Volume().Layer,
		BaseTrigger: true,
		Owner:       k,
	}
	host.AddCollider(k.volume)
	if err := host.Watch(k.volume, k); err != nil {
		host.RemoveCollider(k.volume)
		return nil, fmt.Errorf("speed killer for %q: %w", container.Owner().Name(), err)
	}

	if eventBus != nil {
		sub, err := eventBus.Subscribe(grasp.EventDestroyed, k.onDestroyed)
		if err != nil {
			host.RemoveCollider(k.volume)
			return nil, fmt.Errorf("speed killer for %q: %w", container.Owner().Name(), err)
		}
		k.sub = sub
	}
	return k, nil
}

func (k *SpeedKiller) Container() *grasp.Container { return k.container }
func (k *SpeedKiller) Volume() *physics.Collider    { return k.volume }
func (k *SpeedKiller) Killed() int                  { return k.killed }

// CoolingDown reports whether o recently left the volume.
func (k *SpeedKiller) CoolingDown(o *grasp.Object) bool {
	return k.scheduler.Pending(k.cooldownKey(o))
}

func (k *SpeedKiller) cooldownKey(o *grasp.Object) schedule.Key {
	return schedule.Key{Subject: k.subject, Kind: o.ID().String()}
}

func (k *SpeedKiller) OnTriggerEnter(other *physics.Collider) {
	a, ok := other.Owner.(*grasp.Anchor)
	if !ok {
		return
	}
	o := a.Object()
	body := o.Body()
	if o.Kind() != grasp.KindIngredient || body == nil || o.Held() {
		return
	}
	if k.container.Contains(o) || k.CoolingDown(o) || k.container.Owner().Held() {
		return
	}
	before := body.Velocity()
	dir, moving := spatial.Normalize(before)
	if !moving {
		return
	}

	after := dir.Mul(k.settings.RemainingSpeed)
	body.SetVelocity(after)
	o.SetCollidersTrigger(false)
	k.killed++

	k.logger.Debug("Speed killed", log.String("object", o.Name()), log.Vec3("before", before), log.Vec3("after", after))
	if k.bus != nil {
		if err := k.bus.Publish(bus.NewEvent(EventSpeedKilled, k.subject, SpeedKilled{
			Container: k.container,
			Object:    o,
			Before:    before,
			After:     after,
		})); err != nil {
			k.logger.Warn("Event handler failed", log.String("event", EventSpeedKilled), log.Error(err))
		}
	}
}

func (k *SpeedKiller) OnTriggerExit(other *physics.Collider) {
	a, ok := other.Owner.(*grasp.Anchor)
	if !ok {
		return
	}
	k.scheduler.Schedule(k.cooldownKey(a.Object()), k.settings.Cooldown, func() {})
}

// Close removes the volume from the host and stops listening for the
// container's destruction. It is safe to call more than once.
func (k *SpeedKiller) Close() error {
	if k.volume == nil {
		return nil
	}
	k.host.RemoveCollider(k.volume)
	k.volume = nil
	k.scheduler.CancelSubject(k.subject)
	if k.sub == nil {
		return nil
	}
	return k.sub.Cancel()
}

func (k *SpeedKiller) onDestroyed(e bus.Event) error {
	d, ok := e.Data().(grasp.Destroyed)
	if !ok || d.Object != k.container.Owner() {
		return nil
	}
	return k.Close()
}
