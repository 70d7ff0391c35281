package scenario

import (
	"context"
	"fmt"

	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/interaction"
	"github.com/zeusync/graspvr/internal/runtime"
)

// Release is one throw observed during a run.
type Release struct {
	Scenario string  `csv:"scenario"`
	Frame    uint64  `csv:"frame"`
	Hand     string  `csv:"hand"`
	Object   string  `csv:"object"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	VZ       float64 `csv:"vz"`
	Speed    float64 `csv:"speed"`
}

type ObjectState struct {
	Name     string `yaml:"name"`
	Position Vec    `yaml:"position"`
	Held     bool   `yaml:"held"`
}

type Report struct {
	Scenario    string        `yaml:"scenario"`
	Frames      uint64        `yaml:"frames"`
	Seconds     float64       `yaml:"seconds"`
	Grasps      int           `yaml:"grasps"`
	Releases    []Release     `yaml:"releases"`
	Attractions int           `yaml:"attractions"`
	Teleports   int           `yaml:"teleports"`
	SpeedKills  int           `yaml:"speed_kills"`
	Cuts        int           `yaml:"cuts"`
	Dispensed   int           `yaml:"dispensed"`
	Deliveries  int           `yaml:"deliveries"`
	Expired     int           `yaml:"expired"`
	Player      Vec           `yaml:"player"`
	Objects     []ObjectState `yaml:"objects"`
}

// Populate places the player and spawns the scenery, the kitchen stations
// and the objects into rt.
func (s *Scenario) Populate(rt *runtime.Runtime) error {
	rt.Player().SetPosition(s.Player.vec3())

	colliders, err := s.Colliders()
	if err != nil {
		return err
	}
	for _, c := range colliders {
		rt.AddSurface(c)
	}
	for _, z := range s.Deliveries {
		rt.AddDeliveryZone(z.bounds())
	}
	for _, c := range s.Cuts {
		half, err := c.Half.spec()
		if err != nil {
			return fmt.Errorf("cut %q: %w", c.Type, err)
		}
		rt.SetCutRecipe(c.Type, half)
	}
	for _, d := range s.Dispensers {
		spec, err := d.spec()
		if err != nil {
			return fmt.Errorf("dispenser %q: %w", d.Name, err)
		}
		if err := rt.AddDispenser(spec); err != nil {
			return err
		}
	}

	for _, o := range s.Objects {
		if err := spawn(rt, o); err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
	}
	return nil
}

func spawn(rt *runtime.Runtime, o Object) error {
	spec, err := o.spec()
	if err != nil {
		return err
	}
	var obj *grasp.Object
	if len(o.Meal) > 0 {
		obj, err = rt.SpawnPlate(spec, o.Meal, o.Respawn)
	} else {
		obj, err = rt.Spawn(spec, o.SpeedKiller)
	}
	if err != nil {
		return err
	}
	if o.Blade != nil {
		return rt.AddBlade(obj, o.Blade.spec())
	}
	return nil
}

// Play populates rt, replays the script and reports what happened. rt must
// have been built with the scenario's Source.
func (s *Scenario) Play(ctx context.Context, rt *runtime.Runtime) (*Report, error) {
	rep := &Report{Scenario: s.Name}
	sub, err := rt.Bus().Subscribe(bus.AllEvents, func(e bus.Event) error {
		rep.record(rt, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer sub.Cancel()

	if err := s.Populate(rt); err != nil {
		return nil, err
	}
	if err := rt.RunScript(ctx, s.FrameTime, s.Settle); err != nil {
		return nil, err
	}

	rep.Frames = rt.Frames()
	rep.Seconds = rt.Scheduler().Now()
	rep.Player = Vec(rt.Player().Position())
	for _, o := range rt.World().Objects() {
		rep.Objects = append(rep.Objects, ObjectState{
			Name:     o.Name(),
			Position: Vec(o.Center()),
			Held:     o.Held(),
		})
	}
	return rep, nil
}

func (r *Report) record(rt *runtime.Runtime, e bus.Event) {
	switch data := e.Data().(type) {
	case grasp.Attached:
		if !data.Contained {
			r.Grasps++
		}
	case grasp.Detached:
		v := data.Velocity
		r.Releases = append(r.Releases, Release{
			Scenario: r.Scenario,
			Frame:    rt.Frames(),
			Hand:     data.Hand.Side().String(),
			Object:   data.Object.Name(),
			VX:       v.X(),
			VY:       v.Y(),
			VZ:       v.Z(),
			Speed:    v.Len(),
		})
	case interaction.Attracted:
		r.Attractions++
	case interaction.Teleported:
		r.Teleports++
	case interaction.SpeedKilled:
		r.SpeedKills++
	case interaction.Cut:
		r.Cuts++
	case interaction.Dispensed:
		r.Dispensed++
	case interaction.Meal:
		if e.Type() == interaction.EventMealExpired {
			r.Expired++
		} else {
			r.Deliveries++
		}
	}
}

// Speeds lists the release speeds in order.
func (r *Report) Speeds() []float64 {
	out := make([]float64, len(r.Releases))
	for i, rel := range r.Releases {
		out[i] = rel.Speed
	}
	return out
}
