package interaction

import (
	"fmt"
	"slices"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/core/spatial"
)

const kindExpire = "expire"

// MealSettings tunes the delivery system.
type MealSettings struct {
	// TimeLimit is how long a plate may wait for delivery. Zero disables the
	// timer.
	TimeLimit float64
}

// DefaultMealSettings gives plates unlimited time.
func DefaultMealSettings() MealSettings {
	return MealSettings{TimeLimit: 0}
}

type plate struct {
	object  *grasp.Object
	spec    grasp.ObjectSpec
	recipe  []string
	respawn bool
	subject string
}

// DeliverySystem watches meal plates. A plate whose contents match its recipe
// and that sits in a delivery zone is consumed together with its contents and,
// when asked to, replaced by a fresh plate from the same spec.
type DeliverySystem struct {
	settings  MealSettings
	world     *grasp.World
	scheduler *schedule.Scheduler
	bus       bus.EventBus
	zones     []spatial.Bounds
	plates    []*plate
	delivered int
	expired   int
	logger    log.Log
}

// NewDeliverySystem creates a delivery system without zones or plates.
// Plate timers run on scheduler.
func NewDeliverySystem(
	settings MealSettings,
	world *grasp.World,
	scheduler *schedule.Scheduler,
	eventBus bus.EventBus,
	logger log.Log,
) *DeliverySystem {
	return &DeliverySystem{
		settings:  settings,
		world:     world,
		scheduler: scheduler,
		bus:       eventBus,
		logger:    logger.With(log.String("system", "delivery")),
	}
}

func (d *DeliverySystem) Name() string   { return "delivery" }
func (d *DeliverySystem) Delivered() int { return d.delivered }
func (d *DeliverySystem) Expired() int   { return d.expired }

// AddZone adds a volume where prepared plates are delivered.
func (d *DeliverySystem) AddZone(zone spatial.Bounds) {
	d.zones = append(d.zones, zone)
}

// SpawnPlate spawns a container from spec and tracks it as a meal needing
// the ingredient types in recipe.
func (d *DeliverySystem) SpawnPlate(spec grasp.ObjectSpec, recipe []string, respawn bool) (*grasp.Object, error) {
	if spec.Kind != grasp.KindContainer {
		return nil, fmt.Errorf("plate %q: kind %s is not a container", spec.Name, spec.Kind)
	}
	if len(recipe) == 0 {
		return nil, fmt.Errorf("plate %q: empty recipe", spec.Name)
	}
	o, err := d.world.Spawn(spec)
	if err != nil {
		return nil, err
	}
	want := slices.Clone(recipe)
	slices.Sort(want)
	p := &plate{
		object:  o,
		spec:    spec,
		recipe:  want,
		respawn: respawn,
		subject: "meal/" + o.ID().String(),
	}
	d.plates = append(d.plates, p)
	if d.settings.TimeLimit > 0 {
		d.scheduler.Schedule(schedule.Key{Subject: p.subject, Kind: kindExpire}, d.settings.TimeLimit, func() {
			d.expire(p)
		})
	}
	return o, nil
}

// Plates lists the plates waiting for delivery.
func (d *DeliverySystem) Plates() []*grasp.Object {
	out := make([]*grasp.Object, 0, len(d.plates))
	for _, p := range d.plates {
		out = append(out, p.object)
	}
	return out
}

// Prepared reports whether the plate holds exactly its recipe.
func (d *DeliverySystem) Prepared(o *grasp.Object) bool {
	for _, p := range d.plates {
		if p.object == o {
			return p.prepared()
		}
	}
	return false
}

func (p *plate) prepared() bool {
	var got []string
	for _, o := range p.object.Container().Objects() {
		got = append(got, o.Type())
	}
	slices.Sort(got)
	return slices.Equal(got, p.recipe)
}

func (d *DeliverySystem) inZone(o *grasp.Object) bool {
	for _, z := range d.zones {
		if z.Contains(o.Center()) {
			return true
		}
	}
	return false
}

func (d *DeliverySystem) Update(float64) error {
	var spawn []*plate
	d.plates = slices.DeleteFunc(d.plates, func(p *plate) bool {
		if p.object.Destroyed() {
			d.scheduler.CancelSubject(p.subject)
			return true
		}
		if !p.prepared() || !d.inZone(p.object) {
			return false
		}
		d.deliver(p)
		if p.respawn {
			spawn = append(spawn, p)
		}
		return true
	})

	for _, p := range spawn {
		if _, err := d.SpawnPlate(p.spec, p.recipe, true); err != nil {
			return fmt.Errorf("respawn plate %q: %w", p.spec.Name, err)
		}
	}
	return nil
}

func (d *DeliverySystem) FixedUpdate(float64) error { return nil }

// consume drops the plate's contents from the hand, then destroys them and the
// plate.
func (d *DeliverySystem) consume(p *plate) int {
	d.scheduler.CancelSubject(p.subject)
	c := p.object.Container()
	if h := p.object.Holder(); h != nil {
		c.DetachAll(h)
	}
	n := c.DestroyAllContained()
	d.world.Destroy(p.object)
	return n
}

func (d *DeliverySystem) deliver(p *plate) {
	n := d.consume(p)
	d.delivered++
	d.logger.Info("Meal delivered", log.String("plate", p.object.Name()), log.Int("ingredients", n))
	d.publish(EventMealDelivered, p, Meal{Plate: p.object, Recipe: p.recipe, Ingredients: n})
}

// expire ends a plate that ran out of time. Expired plates are not replaced.
func (d *DeliverySystem) expire(p *plate) {
	i := slices.Index(d.plates, p)
	if i < 0 || p.object.Destroyed() {
		return
	}
	d.plates = slices.Delete(d.plates, i, i+1)
	n := d.consume(p)
	d.expired++
	d.logger.Info("Meal expired", log.String("plate", p.object.Name()), log.Int("ingredients", n))
	d.publish(EventMealExpired, p, Meal{Plate: p.object, Recipe: p.recipe, Ingredients: n})
}

func (d *DeliverySystem) publish(eventType string, p *plate, m Meal) {
	if d.bus == nil {
		return
	}
	if err := d.bus.Publish(bus.NewEvent(eventType, p.subject, m)); err != nil {
		d.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
