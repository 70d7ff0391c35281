package interaction

import (
	"fmt"
	"math/rand"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

const kindDispense = "dispense"

// DispenserSettings apply to every dispenser.
type DispenserSettings struct {
	// MinCount is how many matching ingredients a dispenser keeps in its zone.
	MinCount int
	Cooldown float64
	// Spread scales the zone extents into the random x/z offset of a spawn.
	Spread float64
	Seed   int64
}

// DefaultDispenserSettings keeps ten ingredients per dispenser.
func DefaultDispenserSettings() DispenserSettings {
	return DispenserSettings{
		MinCount: 10,
		Cooldown: 0.5,
		Spread:   0.2,
		Seed:     1,
	}
}

// DispenserSpec places one dispenser. Template is spawned, renamed, at
// SpawnPoint; objects of the template's type inside Zone are counted.
type DispenserSpec struct {
	Name       string
	Template   grasp.ObjectSpec
	Zone       spatial.Bounds
	SpawnPoint spatial.Vec3
}

type dispenser struct {
	spec    DispenserSpec
	subject string
	spawned int
}

// DispenseSystem refills dispensers one ingredient at a time until each holds
// MinCount of its type. It also tells the cut system which objects are
// still on a dispenser.
type DispenseSystem struct {
	settings   DispenserSettings
	world      *grasp.World
	scheduler  *schedule.Scheduler
	bus        bus.EventBus
	rnd        *rand.Rand
	dispensers []*dispenser
	logger     log.Log
}

var _ Zones = (*DispenseSystem)(nil)

// NewDispenseSystem creates a system without dispensers. Spawn offsets come
// from a generator seeded with settings.Seed so runs are reproducible.
func NewDispenseSystem(
	settings DispenserSettings,
	world *grasp.World,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	logger log.Log,
) *DispenseSystem {
	return &DispenseSystem{
		settings:  settings,
		world:     world,
		scheduler: scheduler,
		bus:       eventBus,
		rnd:       rand.New(rand.NewSource(settings.Seed)),
		logger:    logger.With(log.String("system", "dispense")),
	}
}

func (d *DispenseSystem) Name() string { return "dispense" }

// Add registers a dispenser. The template needs a type and the name must be
// unique.
func (d *DispenseSystem) Add(spec DispenserSpec) error {
	if spec.Template.Type == "" {
		return fmt.Errorf("dispenser %q: template has no type", spec.Name)
	}
	for _, existing := range d.dispensers {
		if existing.spec.Name == spec.Name {
			return fmt.Errorf("dispenser %q: already added", spec.Name)
		}
	}
	d.dispensers = append(d.dispensers, &dispenser{spec: spec, subject: "dispenser/" + spec.Name})
	return nil
}

// Count is the number of objects of the dispenser's type inside its zone.
func (d *DispenseSystem) Count(name string) (int, bool) {
	for _, disp := range d.dispensers {
		if disp.spec.Name == name {
			return d.count(disp), true
		}
	}
	return 0, false
}

// Spawned is how many objects the dispenser has produced.
func (d *DispenseSystem) Spawned(name string) int {
	for _, disp := range d.dispensers {
		if disp.spec.Name == name {
			return disp.spawned
		}
	}
	return 0
}

// Contains reports whether o rests in any dispenser zone.
func (d *DispenseSystem) Contains(o *grasp.Object) bool {
	for _, disp := range d.dispensers {
		if disp.spec.Zone.Contains(o.Center()) {
			return true
		}
	}
	return false
}

func (d *DispenseSystem) count(disp *dispenser) int {
	n := 0
	for _, o := range d.world.Objects() {
		if o.Type() == disp.spec.Template.Type && disp.spec.Zone.Contains(o.Center()) {
			n++
		}
	}
	return n
}

func (d *DispenseSystem) Update(float64) error {
	for _, disp := range d.dispensers {
		key := schedule.Key{Subject: disp.subject, Kind: kindDispense}
		if d.scheduler.Pending(key) || d.count(disp) >= d.settings.MinCount {
			continue
		}
		if err := d.spawn(disp); err != nil {
			return err
		}
		d.scheduler.Schedule(key, d.settings.Cooldown, func() {})
	}
	return nil
}

func (d *DispenseSystem) FixedUpdate(float64) error { return nil }

func (d *DispenseSystem) spawn(disp *dispenser) error {
	spec := disp.spec.Template
	ext := disp.spec.Zone.Extents.Mul(d.settings.Spread)
	spec.Name = fmt.Sprintf("%s-%d", disp.spec.Name, disp.spawned+1)
	spec.Position = disp.spec.SpawnPoint.Add(spatial.Vec3{
		(d.rnd.Float64()*2 - 1) * ext.X(),
		0,
		(d.rnd.Float64()*2 - 1) * ext.Z(),
	})
	o, err := d.world.Spawn(spec)
	if err != nil {
		return fmt.Errorf("dispenser %q: %w", disp.spec.Name, err)
	}
	disp.spawned++

	d.logger.Debug("Dispensed",
		log.String("dispenser", disp.spec.Name),
		log.String("object", o.Name()),
		log.Vec3("position", spec.Position))
	if d.bus != nil {
		if err := d.bus.Publish(bus.NewEvent(EventDispensed, disp.subject, Dispensed{
			Dispenser: disp.spec.Name,
			Object:    o,
		})); err != nil {
			d.logger.Warn("Event handler failed", log.String("event", EventDispensed), log.Error(err))
		}
	}
	return nil
}
