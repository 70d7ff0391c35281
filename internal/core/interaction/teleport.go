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

// TeleportMask is what the teleport arc collides with. The player layer is
// left out so the arc never lands on the rig itself.
var TeleportMask = physics.MaskOf(physics.LayerDefault, physics.LayerFloor)

const kindTeleport = "teleport"

type TeleportSettings struct {
	// ReachFactor is the launch speed along the hand's forward axis.
	ReachFactor      float64
	TimeStep         float64
	MaxSteps         int
	Cooldown         float64
	PrepareThreshold float64
}

// DefaultTeleportSettings steps the arc every 10ms for at most 400 steps.
func DefaultTeleportSettings() TeleportSettings {
	return TeleportSettings{
		ReachFactor:      10,
		TimeStep:         0.01,
		MaxSteps:         400,
		Cooldown:         0.25,
		PrepareThreshold: 0.5,
	}
}

// TeleportSystem aims a ballistic arc while a stick is pushed forward and
// moves the player rig to where it lands when the stick is clicked.
type TeleportSystem struct {
	settings  TeleportSettings
	controls  Controls
	scene     Scene
	player    *spatial.Transform
	scheduler *schedule.Scheduler
	bus       bus.EventBus
	hands     []*grasp.Hand
	arcs      map[grasp.Side]trajectory.Arc
	buffers   map[grasp.Side][]spatial.Vec3
	logger    log.Log
}

// NewTeleportSystem creates a teleport system that moves player. Each hand
// gets an arc buffer of MaxSteps+1 points.
func NewTeleportSystem(
	settings TeleportSettings,
	controls Controls,
	scene Scene,
	player *spatial.Transform,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	logger log.Log,
	hands ...*grasp.Hand,
) *TeleportSystem {
	buffers := make(map[grasp.Side][]spatial.Vec3, len(hands))
	for _, h := range hands {
		buffers[h.Side()] = make([]spatial.Vec3, 0, settings.MaxSteps+1)
	}
	return &TeleportSystem{
		settings:  settings,
		controls:  controls,
		scene:     scene,
		player:    player,
		scheduler: scheduler,
		bus:       eventBus,
		hands:     hands,
		arcs:      make(map[grasp.Side]trajectory.Arc, len(hands)),
		buffers:   buffers,
		logger:    logger.With(log.String("system", "teleport")),
	}
}

func (t *TeleportSystem) Name() string { return "teleport" }

// Arc returns the arc being aimed by the hand on side, if any. The point
// slice is reused on the next frame.
func (t *TeleportSystem) Arc(side grasp.Side) (trajectory.Arc, bool) {
	arc, ok := t.arcs[side]
	return arc, ok
}

// CoolingDown reports whether the player teleported too recently.
func (t *TeleportSystem) CoolingDown() bool {
	return t.scheduler.Pending(schedule.Key{Subject: "player", Kind: kindTeleport})
}

func (t *TeleportSystem) preparing(h *grasp.Hand) bool {
	return !t.CoolingDown() && t.controls.Current(h.Side()).StickY > t.settings.PrepareThreshold
}

// Update recomputes the aimed arcs.
func (t *TeleportSystem) Update(float64) error {
	var errs []error
	for _, h := range t.hands {
		if !t.preparing(h) {
			delete(t.arcs, h.Side())
			continue
		}
		dir, ok := spatial.Normalize(h.Transform().Forward())
		if !ok {
			delete(t.arcs, h.Side())
			continue
		}
		arc, err := trajectory.CastArc(t.scene, trajectory.ArcParams{
			Origin:   h.Transform().Position(),
			Velocity: dir.Mul(t.settings.ReachFactor),
			Gravity:  t.scene.Gravity(),
			Step:     t.settings.TimeStep,
			MaxSteps: t.settings.MaxSteps,
			Mask:     TeleportMask,
		}, t.buffers[h.Side()])
		if err != nil {
			delete(t.arcs, h.Side())
			errs = append(errs, err)
			continue
		}
		t.buffers[h.Side()] = arc.Points
		t.arcs[h.Side()] = arc
	}
	return errors.Join(errs...)
}

// FixedUpdate performs the jump for the first hand whose stick is clicked
// over a floor landing.
func (t *TeleportSystem) FixedUpdate(float64) error {
	for _, h := range t.hands {
		if !t.preparing(h) || !t.controls.Current(h.Side()).StickClick {
			continue
		}
		arc, ok := t.arcs[h.Side()]
		if !ok || !arc.Landed || arc.Hit.Surface() != physics.SurfaceFloor {
			continue
		}
		end, _ := arc.End()
		return t.jump(h, end)
	}
	return nil
}

// jump moves the rig horizontally; elevation is kept.
func (t *TeleportSystem) jump(h *grasp.Hand, target spatial.Vec3) error {
	from := t.player.Position()
	to := spatial.Vec3{target.X(), from.Y(), target.Z()}
	t.player.SetPosition(to)
	t.scheduler.Schedule(schedule.Key{Subject: "player", Kind: kindTeleport}, t.settings.Cooldown, func() {})
	for side := range t.arcs {
		delete(t.arcs, side)
	}

	t.logger.Info("Teleported", log.String("hand", h.Side().String()), log.Vec3("from", from), log.Vec3("to", to))
	if t.bus == nil {
		return nil
	}
	return t.bus.Publish(bus.NewEvent(EventTeleported, h.Side().String(), Teleported{Hand: h, From: from, To: to}))
}
