// Package scenario describes a scene and a scripted controller session in
// YAML and replays it headlessly.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/input"
	"github.com/zeusync/graspvr/internal/core/interaction"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/pkg/encoding"
)

var ErrInvalidScenario = errors.New("scenario: invalid")

type Vec [3]float64

func (v Vec) vec3() spatial.Vec3 { return spatial.Vec3(v) }

// Euler is a rotation given as pitch, yaw and roll in degrees.
type Euler [3]float64

func (e Euler) quat() spatial.Quat { return spatial.Euler(e[0], e[1], e[2]) }

type Scenario struct {
	Name string `yaml:"name"`
	// FrameTime is the rendered frame delta in seconds.
	FrameTime float64 `yaml:"frame_time"`
	// Settle is the number of frames simulated after the script ends.
	Settle   int       `yaml:"settle"`
	Player   Vec       `yaml:"player"`
	Surfaces []Surface `yaml:"surfaces"`
	Objects  []Object  `yaml:"objects"`
	// Cuts maps ingredient types to the halves they split into.
	Cuts       []Cut       `yaml:"cuts"`
	Dispensers []Dispenser `yaml:"dispensers"`
	// Deliveries are the zones where prepared meals are handed in.
	Deliveries []Box  `yaml:"deliveries"`
	Script     []Step `yaml:"script"`
}

// Surface is static scenery: either a plane or a box.
type Surface struct {
	Name    string `yaml:"name"`
	Plane   *Plane `yaml:"plane,omitempty"`
	Box     *Box   `yaml:"box,omitempty"`
	Surface string `yaml:"surface"`
	Layer   string `yaml:"layer"`
}

type Plane struct {
	Point  Vec `yaml:"point"`
	Normal Vec `yaml:"normal"`
}

type Box struct {
	Center  Vec `yaml:"center"`
	Extents Vec `yaml:"extents"`
}

type Object struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Position    Vec      `yaml:"position"`
	Rotation    Euler    `yaml:"rotation"`
	Static      bool     `yaml:"static"`
	Attractable bool     `yaml:"attractable"`
	Anchors     []Anchor `yaml:"anchors"`
	Hitboxes    []Hitbox `yaml:"hitboxes"`
	Handle      *Vec     `yaml:"handle,omitempty"`
	Volume      *Hitbox  `yaml:"volume,omitempty"`
	SpeedKiller bool     `yaml:"speed_killer"`
	Type        string   `yaml:"type"`
	Blade       *Blade   `yaml:"blade,omitempty"`
	// Meal turns a container into a plate needing these ingredient types.
	Meal    []string `yaml:"meal,omitempty"`
	Respawn bool     `yaml:"respawn"`
}

// Blade is the cutting edge of a blade object, local to the object.
type Blade struct {
	Offset  Vec   `yaml:"offset"`
	Extents Vec   `yaml:"extents"`
	Points  []Vec `yaml:"points"`
}

type Cut struct {
	Type string `yaml:"type"`
	Half Object `yaml:"half"`
}

// Dispenser keeps its zone stocked with copies of Template. SpawnPoint
// defaults to the zone center.
type Dispenser struct {
	Name       string `yaml:"name"`
	Zone       Box    `yaml:"zone"`
	SpawnPoint *Vec   `yaml:"spawn_point,omitempty"`
	Template   Object `yaml:"template"`
}

type Anchor struct {
	Name    string  `yaml:"name"`
	Offset  Vec     `yaml:"offset"`
	Extents Vec     `yaml:"extents"`
	Radius  float64 `yaml:"radius"`
}

type Hitbox struct {
	Offset      Vec    `yaml:"offset"`
	Extents     Vec    `yaml:"extents"`
	Layer       string `yaml:"layer"`
	BaseTrigger bool   `yaml:"base_trigger"`
}

// Step holds a controller state for Repeat frames.
type Step struct {
	Repeat int  `yaml:"repeat"`
	Left   Hand `yaml:"left"`
	Right  Hand `yaml:"right"`
}

type Hand struct {
	Position         Vec        `yaml:"position"`
	Rotation         Euler      `yaml:"rotation"`
	TrackingRotation Euler      `yaml:"tracking_rotation"`
	Linear           Vec        `yaml:"linear"`
	Angular          Vec        `yaml:"angular"`
	IndexTrigger     float64    `yaml:"index_trigger"`
	HandTrigger      float64    `yaml:"hand_trigger"`
	Stick            [2]float64 `yaml:"stick"`
	Grab             bool       `yaml:"grab"`
	ReleaseContained bool       `yaml:"release_contained"`
	StickClick       bool       `yaml:"stick_click"`
}

func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates one scenario document.
func Parse(r io.Reader) (*Scenario, error) {
	s := &Scenario{FrameTime: 1.0 / 90}
	if err := encoding.DecodeYAML(r, s, true); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks names, enums and sizes without building anything.
func (s *Scenario) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidScenario}, args...)...))
	}

	if !(s.FrameTime > 0) {
		fail("frame_time must be positive, got %v", s.FrameTime)
	}
	if s.Settle < 0 {
		fail("settle must not be negative, got %d", s.Settle)
	}

	for i, sf := range s.Surfaces {
		if (sf.Plane == nil) == (sf.Box == nil) {
			fail("surface %d (%s) needs exactly one of plane or box", i, sf.Name)
		}
		if _, ok := physics.ParseSurface(sf.Surface); !ok {
			fail("surface %d (%s): unknown surface %q", i, sf.Name, sf.Surface)
		}
		if _, err := parseLayer(sf.Layer); err != nil {
			fail("surface %d (%s): %v", i, sf.Name, err)
		}
	}

	names := make(map[string]struct{}, len(s.Objects))
	for i, o := range s.Objects {
		if o.Name == "" {
			fail("object %d has no name", i)
		} else if _, dup := names[o.Name]; dup {
			fail("duplicate object %q", o.Name)
		}
		names[o.Name] = struct{}{}
		if _, err := o.spec(); err != nil {
			fail("object %q: %v", o.Name, err)
		}
		if len(o.Meal) > 0 && o.Kind != grasp.KindContainer.String() {
			fail("object %q: only containers can hold a meal", o.Name)
		}
	}

	for i, c := range s.Cuts {
		if c.Type == "" {
			fail("cut %d has no type", i)
		}
		if _, err := c.Half.spec(); err != nil {
			fail("cut %q: %v", c.Type, err)
		}
	}
	for i, d := range s.Dispensers {
		if d.Name == "" {
			fail("dispenser %d has no name", i)
		}
		if d.Template.Type == "" {
			fail("dispenser %q: template has no type", d.Name)
		}
		if _, err := d.Template.spec(); err != nil {
			fail("dispenser %q: %v", d.Name, err)
		}
	}
	return errors.Join(errs...)
}

// Specs converts the objects into spawn specs.
func (s *Scenario) Specs() ([]grasp.ObjectSpec, error) {
	out := make([]grasp.ObjectSpec, 0, len(s.Objects))
	for _, o := range s.Objects {
		spec, err := o.spec()
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
		out = append(out, spec)
	}
	return out, nil
}

// Colliders builds the static scenery.
func (s *Scenario) Colliders() ([]*physics.Collider, error) {
	out := make([]*physics.Collider, 0, len(s.Surfaces))
	for _, sf := range s.Surfaces {
		surface, ok := physics.ParseSurface(sf.Surface)
		if !ok {
			return nil, fmt.Errorf("%w: unknown surface %q", ErrInvalidScenario, sf.Surface)
		}
		layer, err := parseLayer(sf.Layer)
		if err != nil {
			return nil, err
		}
		c := &physics.Collider{Layer: layer, Surface: surface, Static: true}
		switch {
		case sf.Plane != nil:
			c.Shape = physics.Plane{Point: sf.Plane.Point.vec3(), Normal: sf.Plane.Normal.vec3()}
		case sf.Box != nil:
			c.Shape = physics.Box{Offset: sf.Box.Center.vec3(), Extents: sf.Box.Extents.vec3()}
		default:
			return nil, fmt.Errorf("%w: surface %q has no shape", ErrInvalidScenario, sf.Name)
		}
		out = append(out, c)
	}
	return out, nil
}

// Source returns a fresh input source replaying the script.
func (s *Scenario) Source() *input.Scripted {
	keys := make([]input.Keyframe, 0, len(s.Script))
	for _, st := range s.Script {
		var f input.Frame
		f.Left = st.Left.state()
		f.Right = st.Right.state()
		keys = append(keys, input.Keyframe{Frame: f, Repeat: st.Repeat})
	}
	return input.NewScripted(keys...)
}

func (o Object) spec() (grasp.ObjectSpec, error) {
	kind, err := grasp.ParseKind(o.Kind)
	if err != nil {
		return grasp.ObjectSpec{}, err
	}
	spec := grasp.ObjectSpec{
		Name:        o.Name,
		Kind:        kind,
		Type:        o.Type,
		Position:    o.Position.vec3(),
		Rotation:    o.Rotation.quat(),
		Static:      o.Static,
		Attractable: o.Attractable,
	}
	for _, a := range o.Anchors {
		spec.Anchors = append(spec.Anchors, grasp.AnchorSpec{
			Name:    a.Name,
			Offset:  a.Offset.vec3(),
			Extents: a.Extents.vec3(),
			Radius:  a.Radius,
		})
	}
	for _, hb := range o.Hitboxes {
		b, err := hb.spec()
		if err != nil {
			return grasp.ObjectSpec{}, err
		}
		spec.Hitboxes = append(spec.Hitboxes, b)
	}
	if o.Handle != nil {
		h := o.Handle.vec3()
		spec.Handle = &h
	}
	if o.Volume != nil {
		v, err := o.Volume.spec()
		if err != nil {
			return grasp.ObjectSpec{}, err
		}
		spec.Volume = &v
	}
	if len(spec.Anchors) == 0 {
		return grasp.ObjectSpec{}, grasp.ErrNoAnchors
	}
	if kind == grasp.KindContainer && spec.Volume == nil {
		return grasp.ObjectSpec{}, grasp.ErrContainerVolume
	}
	return spec, nil
}

func (b Blade) spec() interaction.BladeSpec {
	spec := interaction.BladeSpec{Offset: b.Offset.vec3(), Extents: b.Extents.vec3()}
	for _, p := range b.Points {
		spec.Points = append(spec.Points, p.vec3())
	}
	return spec
}

func (b Box) bounds() spatial.Bounds {
	return spatial.Bounds{Center: b.Center.vec3(), Extents: b.Extents.vec3()}
}

func (d Dispenser) spec() (interaction.DispenserSpec, error) {
	tmpl, err := d.Template.spec()
	if err != nil {
		return interaction.DispenserSpec{}, err
	}
	spawn := d.Zone.Center
	if d.SpawnPoint != nil {
		spawn = *d.SpawnPoint
	}
	return interaction.DispenserSpec{
		Name:       d.Name,
		Template:   tmpl,
		Zone:       d.Zone.bounds(),
		SpawnPoint: spawn.vec3(),
	}, nil
}

func (hb Hitbox) spec() (grasp.BoxSpec, error) {
	layer, err := parseLayer(hb.Layer)
	if err != nil {
		return grasp.BoxSpec{}, err
	}
	return grasp.BoxSpec{
		Offset:      hb.Offset.vec3(),
		Extents:     hb.Extents.vec3(),
		Layer:       layer,
		BaseTrigger: hb.BaseTrigger,
	}, nil
}

func (h Hand) state() input.HandState {
	return input.HandState{
		Position:         h.Position.vec3(),
		Rotation:         h.Rotation.quat(),
		Linear:           h.Linear.vec3(),
		Angular:          h.Angular.vec3(),
		TrackingRotation: h.TrackingRotation.quat(),
		IndexTrigger:     h.IndexTrigger,
		HandTrigger:      h.HandTrigger,
		StickX:           h.Stick[0],
		StickY:           h.Stick[1],
		Buttons: input.Buttons{
			Grab:             h.Grab,
			ReleaseContained: h.ReleaseContained,
			StickClick:       h.StickClick,
		},
	}
}

// parseLayer treats an empty name as the default layer.
func parseLayer(name string) (physics.Layer, error) {
	if name == "" {
		return physics.LayerDefault, nil
	}
	l, ok := physics.ParseLayer(name)
	if !ok {
		return physics.LayerDefault, fmt.Errorf("%w: unknown layer %q", ErrInvalidScenario, name)
	}
	return l, nil
}
