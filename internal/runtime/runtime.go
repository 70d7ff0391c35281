// Package runtime assembles the interaction core into a frame loop: input,
// hand controllers, attraction, teleportation, grasp sampling, physics, the
// kitchen systems and delayed tasks.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/graspvr/internal/config"
	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/input"
	"github.com/zeusync/graspvr/internal/core/interaction"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/systems"
)

// MaxFixedSteps bounds the physics catch-up done in a single Tick.
const MaxFixedSteps = 8

var ErrInvalidDelta = errors.New("runtime: frame delta must be positive")

// Runtime owns one simulated scene. It is not safe for concurrent use; run
// several runtimes to simulate in parallel.
type Runtime struct {
	cfg       *config.Config
	logger    log.Log
	space     *physics.Space
	scheduler *schedule.Scheduler
	bus       bus.EventBus
	world     *grasp.World
	runner    *systems.Runner

	player   *spatial.Transform
	left     *grasp.Hand
	right    *grasp.Hand
	tracker  *input.Tracker
	grab     *interaction.GrabSystem
	attract  *interaction.AttractSystem
	teleport *interaction.TeleportSystem
	held     *interaction.HeldTracker
	killers  []*interaction.SpeedKiller
	cut      *interaction.CutSystem
	dispense *interaction.DispenseSystem
	delivery *interaction.DeliverySystem

	accumulator float64
	frames      uint64
}

// New wires the interaction systems around world and registers them in
// frame order. Close releases their subscriptions.
func New(
	cfg *config.Config,
	logger log.Log,
	space *physics.Space,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	world *grasp.World,
	source input.Source,
) (*Runtime, error) {
	r := &Runtime{
		cfg:       cfg,
		logger:    logger.With(log.String("component", "runtime")),
		space:     space,
		scheduler: scheduler,
		bus:       eventBus,
		world:     world,
		runner:    systems.NewRunner(logger),
		player:    spatial.NewTransform("player"),
	}

	r.left = world.AddHand(grasp.SideLeft, r.handTransform("left"))
	r.right = world.AddHand(grasp.SideRight, r.handTransform("right"))

	held, err := interaction.NewHeldTracker(eventBus)
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	r.held = held

	r.tracker = input.NewTracker(source, logger, r.left, r.right)
	r.grab = interaction.NewGrabSystem(r.tracker, cfg.Grasp.HandCloseThreshold, logger, r.left, r.right)
	r.attract = interaction.NewAttractSystem(cfg.AttractSettings(), r.tracker, space, scheduler, eventBus, logger, r.left, r.right)
	r.teleport = interaction.NewTeleportSystem(cfg.TeleportSettings(), r.tracker, space, r.player, scheduler, eventBus, logger, r.left, r.right)
	r.dispense = interaction.NewDispenseSystem(cfg.DispenserSettings(), world, scheduler, eventBus, logger)
	r.delivery = interaction.NewDeliverySystem(cfg.MealSettings(), world, scheduler, eventBus, logger)
	r.cut, err = interaction.NewCutSystem(cfg.CutSettings(), world, space, space, r.dispense, eventBus, logger)
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", errors.Join(err, held.Close()))
	}

	for _, s := range []systems.System{
		r.tracker,
		r.grab,
		r.attract,
		r.teleport,
		systems.Funcs{ID: "grasp", OnFixed: func(dt float64) error {
			world.FixedUpdate(dt)
			return nil
		}},
		systems.PhysicsStep{Stepper: space},
		r.cut,
		r.dispense,
		r.delivery,
		systems.Funcs{ID: "schedule", OnFrame: func(dt float64) error {
			scheduler.Advance(dt)
			return nil
		}},
	} {
		if err := r.runner.Register(s); err != nil {
			return nil, fmt.Errorf("runtime: %w", err)
		}
	}
	return r, nil
}

func (r *Runtime) handTransform(name string) *spatial.Transform {
	t := spatial.NewTransform(name)
	t.SetParent(r.player)
	return t
}

func (r *Runtime) Config() *config.Config                { return r.cfg }
func (r *Runtime) Space() *physics.Space                 { return r.space }
func (r *Runtime) Scheduler() *schedule.Scheduler        { return r.scheduler }
func (r *Runtime) Bus() bus.EventBus                     { return r.bus }
func (r *Runtime) World() *grasp.World                   { return r.world }
func (r *Runtime) Runner() *systems.Runner               { return r.runner }
func (r *Runtime) Player() *spatial.Transform            { return r.player }
func (r *Runtime) Input() *input.Tracker                 { return r.tracker }
func (r *Runtime) Attract() *interaction.AttractSystem   { return r.attract }
func (r *Runtime) Teleport() *interaction.TeleportSystem { return r.teleport }
func (r *Runtime) Held() *interaction.HeldTracker        { return r.held }
func (r *Runtime) Cut() *interaction.CutSystem           { return r.cut }
func (r *Runtime) Dispense() *interaction.DispenseSystem { return r.dispense }
func (r *Runtime) Delivery() *interaction.DeliverySystem { return r.delivery }
func (r *Runtime) Frames() uint64                        { return r.frames }

// Hand returns the hand on side.
func (r *Runtime) Hand(side grasp.Side) *grasp.Hand {
	if side == grasp.SideLeft {
		return r.left
	}
	return r.right
}

// Spawn adds an object to the scene. Containers get a speed killer when
// withSpeedKiller is set.
func (r *Runtime) Spawn(spec grasp.ObjectSpec, withSpeedKiller bool) (*grasp.Object, error) {
	o, err := r.world.Spawn(spec)
	if err != nil {
		return nil, err
	}
	if withSpeedKiller && o.Container() != nil {
		k, err := interaction.NewSpeedKiller(r.cfg.SpeedKillerSettings(), o.Container(), r.space, r.scheduler, r.bus, r.logger)
		if err != nil {
			r.world.Destroy(o)
			return nil, err
		}
		r.killers = append(r.killers, k)
	}
	return o, nil
}

// AddSurface adds static scenery.
func (r *Runtime) AddSurface(c *physics.Collider) {
	c.Static = true
	r.space.AddCollider(c)
}

// AddBlade gives a spawned object a cutting edge.
func (r *Runtime) AddBlade(o *grasp.Object, spec interaction.BladeSpec) error {
	return r.cut.AddBlade(o, spec)
}

// SetCutRecipe sets the half spawned twice when an ingredient of type typ is
// cut.
func (r *Runtime) SetCutRecipe(typ string, half grasp.ObjectSpec) {
	r.cut.SetRecipe(typ, half)
}

func (r *Runtime) AddDispenser(spec interaction.DispenserSpec) error {
	return r.dispense.Add(spec)
}

// SpawnPlate spawns a meal plate needing the ingredient types in recipe.
func (r *Runtime) SpawnPlate(spec grasp.ObjectSpec, recipe []string, respawn bool) (*grasp.Object, error) {
	return r.delivery.SpawnPlate(spec, recipe, respawn)
}

// AddDeliveryZone adds a volume where prepared plates are delivered.
func (r *Runtime) AddDeliveryZone(zone spatial.Bounds) {
	r.delivery.AddZone(zone)
}

// SpeedKillers returns the speed killers of the spawned containers.
func (r *Runtime) SpeedKillers() []*interaction.SpeedKiller {
	out := make([]*interaction.SpeedKiller, len(r.killers))
	copy(out, r.killers)
	return out
}

// Tick advances one rendered frame: the fixed steps that came due, then the
// frame update.
func (r *Runtime) Tick(dt float64) error {
	if !(dt > 0) {
		return ErrInvalidDelta
	}
	var errs []error

	step := r.cfg.Physics.FixedStep
	r.accumulator += dt
	for n := 0; r.accumulator >= step; n++ {
		if n == MaxFixedSteps {
			r.logger.Warn("Dropping fixed steps", log.Float64("behind", r.accumulator))
			r.accumulator = 0
			break
		}
		if err := r.runner.FixedUpdate(step); err != nil {
			errs = append(errs, err)
		}
		r.accumulator -= step
	}

	if err := r.runner.Update(dt); err != nil {
		errs = append(errs, err)
	}
	r.frames++
	return errors.Join(errs...)
}

// Run ticks frames times, stopping early when ctx is cancelled. System
// errors are logged and do not stop the loop.
func (r *Runtime) Run(ctx context.Context, frames int, dt float64) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Tick(dt); err != nil {
			if errors.Is(err, ErrInvalidDelta) {
				return err
			}
			r.logger.Warn("Frame failed", log.Uint64("frame", r.frames), log.Error(err))
		}
	}
	return nil
}

// RunScript ticks until the input source is exhausted, then settle more
// frames.
func (r *Runtime) RunScript(ctx context.Context, dt float64, settle int) error {
	for !r.tracker.Done() {
		if err := r.Run(ctx, 1, dt); err != nil {
			return err
		}
	}
	return r.Run(ctx, settle, dt)
}

// Close detaches the runtime's listeners from the bus and the physics space.
func (r *Runtime) Close() error {
	var errs []error
	for _, k := range r.killers {
		errs = append(errs, k.Close())
	}
	r.killers = nil
	errs = append(errs, r.cut.Close(), r.held.Close())
	return errors.Join(errs...)
}
