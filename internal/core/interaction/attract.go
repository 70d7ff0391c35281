package interaction

import (
	"errors"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/trajectory"
)

// AttractMask is what the pointing ray can hit.
var AttractMask = physics.MaskOf(physics.LayerDefault, physics.LayerKnife, physics.LayerFloor, physics.LayerGrab)

const (
	kindAttract    = "attract"
	kindAttractive = "attractable"
	kindHitbox     = "hitbox"
)

type AttractSettings struct {
	MaxReach float64
	// Cooldown applies both to the hand and to the attracted object.
	Cooldown         float64
	HitboxDisable    float64
	SpeedCap         float64
	TriggerThreshold float64
}

// DefaultAttractSettings reaches 10 units with a 2 second cooldown per hand.
func DefaultAttractSettings() AttractSettings {
	return AttractSettings{
		MaxReach:         10,
		Cooldown:         2,
		HitboxDisable:    0.25,
		SpeedCap:         15,
		TriggerThreshold: 0.9,
	}
}

// AttractSystem lets a hand point at a distant object and fling it along a
// ballistic arc that ends at the hand.
type AttractSystem struct {
	settings  AttractSettings
	controls  Controls
	scene     Scene
	scheduler *schedule.Scheduler
	bus       bus.EventBus
	hands     []*grasp.Hand
	pointing  map[grasp.Side]physics.Hit
	logger    log.Log
}

// NewAttractSystem creates an attract system for hands. Rays are cast
// through scene and cooldowns run on scheduler.
func NewAttractSystem(
	settings AttractSettings,
	controls Controls,
	scene Scene,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	logger log.Log,
	hands ...*grasp.Hand,
) *AttractSystem {
	return &AttractSystem{
		settings:  settings,
		controls:  controls,
		scene:     scene,
		scheduler: scheduler,
		bus:       eventBus,
		hands:     hands,
		pointing:  make(map[grasp.Side]physics.Hit, len(hands)),
		logger:    logger.With(log.String("system", "attract")),
	}
}

func (a *AttractSystem) Name() string { return "attract" }

// Pointing returns what the hand's ray currently rests on.
func (a *AttractSystem) Pointing(side grasp.Side) (physics.Hit, bool) {
	hit, ok := a.pointing[side]
	return hit, ok
}

// CoolingDown reports whether hand h must wait before attracting again.
func (a *AttractSystem) CoolingDown(h *grasp.Hand) bool {
	return a.scheduler.Pending(schedule.Key{Subject: cooldownSubject(h), Kind: kindAttract})
}

func (a *AttractSystem) Update(float64) error {
	var errs []error
	for _, h := range a.hands {
		if err := a.handle(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *AttractSystem) FixedUpdate(float64) error { return nil }

func (a *AttractSystem) handle(h *grasp.Hand) error {
	s := a.controls.Current(h.Side())
	if s.HandTrigger <= a.settings.TriggerThreshold {
		delete(a.pointing, h.Side())
		return nil
	}

	origin := h.Transform().Position()
	hit, ok := a.scene.Raycast(origin, h.Transform().Forward(), a.settings.MaxReach, AttractMask)
	if !ok {
		delete(a.pointing, h.Side())
		return nil
	}
	a.pointing[h.Side()] = hit

	if !s.Grab || a.CoolingDown(h) {
		return nil
	}

	if hit.Surface() == physics.SurfaceScreen {
		a.startCooldown(h)
		return a.publish(EventScreenSelected, h, ScreenSelected{Hand: h, Collider: hit.Collider})
	}

	o, ok := targetOf(hit.Collider)
	if !ok || !o.Attractable() || o.Body() == nil || o.Held() {
		return nil
	}

	offset := origin.Sub(o.Center())
	offset[1] = origin.Y() - hit.Point.Y()
	v, err := trajectory.LaunchVelocity(offset, a.scene.Gravity().Len(), a.settings.SpeedCap)
	if err != nil {
		a.logger.Debug("No launch trajectory", log.String("object", o.Name()), log.Vec3("offset", offset), log.Error(err))
		return nil
	}

	a.launch(h, o, v)
	return a.publish(EventAttracted, h, Attracted{Hand: h, Object: o, Velocity: v})
}

func (a *AttractSystem) launch(h *grasp.Hand, o *grasp.Object, v spatial.Vec3) {
	if c := o.Container(); c != nil {
		c.ApplyVelocity(v)
	}
	o.Body().SetVelocity(v)

	subject := o.ID().String()
	o.SetAttractable(false)
	a.scheduler.Schedule(schedule.Key{Subject: subject, Kind: kindAttractive}, a.settings.Cooldown, func() {
		if !o.Destroyed() {
			o.SetAttractable(true)
		}
	})

	o.SetCollidersTrigger(true)
	a.scheduler.Schedule(schedule.Key{Subject: subject, Kind: kindHitbox}, a.settings.HitboxDisable, func() {
		o.SetCollidersTrigger(false)
	})

	a.startCooldown(h)
	a.logger.Info("Object attracted",
		log.String("hand", h.Side().String()),
		log.String("object", o.Name()),
		log.Vec3("velocity", v))
}

func (a *AttractSystem) startCooldown(h *grasp.Hand) {
	a.scheduler.Schedule(schedule.Key{Subject: cooldownSubject(h), Kind: kindAttract}, a.settings.Cooldown, func() {})
}

func (a *AttractSystem) publish(eventType string, h *grasp.Hand, data any) error {
	if a.bus == nil {
		return nil
	}
	return a.bus.Publish(bus.NewEvent(eventType, h.Side().String(), data))
}

// targetOf maps a struck collider to the object it belongs to.
func targetOf(c *physics.Collider) (*grasp.Object, bool) {
	if c == nil {
		return nil, false
	}
	switch owner := c.Owner.(type) {
	case *grasp.Anchor:
		return owner.Object(), true
	case *grasp.Object:
		return owner, true
	default:
		return nil, false
	}
}
