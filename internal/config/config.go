// Package config loads the simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/interaction"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/velocity"
	"github.com/zeusync/graspvr/pkg/encoding"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Log         LogConfig         `yaml:"log"`
	Grasp       GraspConfig       `yaml:"grasp"`
	Velocity    VelocityConfig    `yaml:"velocity"`
	Attract     AttractConfig     `yaml:"attract"`
	Teleport    TeleportConfig    `yaml:"teleport"`
	SpeedKiller SpeedKillerConfig `yaml:"speed_killer"`
	Cutting     CuttingConfig     `yaml:"cutting"`
	Dispenser   DispenserConfig   `yaml:"dispenser"`
	Meal        MealConfig        `yaml:"meal"`
	Physics     PhysicsConfig     `yaml:"physics"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type GraspConfig struct {
	Radius             float64 `yaml:"radius"`
	DistanceFromHand   float64 `yaml:"distance_from_hand"`
	SpeedFactor        float64 `yaml:"speed_factor"`
	VelocityFrames     int     `yaml:"velocity_frames"`
	SettleDelay        float64 `yaml:"settle_delay"`
	HandCloseThreshold float64 `yaml:"hand_close_threshold"`
}

type VelocityConfig struct {
	// Convention is "local" or "mirrored".
	Convention string `yaml:"convention"`
}

type AttractConfig struct {
	MaxReach         float64 `yaml:"max_reach"`
	Cooldown         float64 `yaml:"cooldown"`
	HitboxDisable    float64 `yaml:"hitbox_disable"`
	SpeedCap         float64 `yaml:"speed_cap"`
	TriggerThreshold float64 `yaml:"trigger_threshold"`
}

type TeleportConfig struct {
	ReachFactor      float64 `yaml:"reach_factor"`
	TimeStep         float64 `yaml:"time_step"`
	MaxSteps         int     `yaml:"max_steps"`
	Cooldown         float64 `yaml:"cooldown"`
	PrepareThreshold float64 `yaml:"prepare_threshold"`
}

type SpeedKillerConfig struct {
	RemainingSpeed float64 `yaml:"remaining_speed"`
	Cooldown       float64 `yaml:"cooldown"`
	Margin         float64 `yaml:"margin"`
}

type CuttingConfig struct {
	RequiredSpeed float64 `yaml:"required_speed"`
	Spread        float64 `yaml:"spread"`
	PushFactor    float64 `yaml:"push_factor"`
	MaxPushes     int     `yaml:"max_pushes"`
}

type DispenserConfig struct {
	MinCount int     `yaml:"min_count"`
	Cooldown float64 `yaml:"cooldown"`
	Spread   float64 `yaml:"spread"`
	Seed     int64   `yaml:"seed"`
}

type MealConfig struct {
	// TimeLimit of zero lets plates wait forever.
	TimeLimit float64 `yaml:"time_limit"`
}

type PhysicsConfig struct {
	Gravity   [3]float64 `yaml:"gravity"`
	FixedStep float64    `yaml:"fixed_step"`
}

func Default() *Config {
	gs := grasp.DefaultSettings()
	as := interaction.DefaultAttractSettings()
	ts := interaction.DefaultTeleportSettings()
	ks := interaction.DefaultSpeedKillerSettings()
	cs := interaction.DefaultCutSettings()
	ds := interaction.DefaultDispenserSettings()
	return &Config{
		Log: LogConfig{Level: "info"},
		Grasp: GraspConfig{
			Radius:             gs.GraspingRadius,
			DistanceFromHand:   gs.DistanceFromHand,
			SpeedFactor:        gs.SpeedFactor,
			VelocityFrames:     gs.VelocityFrames,
			SettleDelay:        gs.SettleDelay,
			HandCloseThreshold: interaction.DefaultCloseThreshold,
		},
		Velocity: VelocityConfig{Convention: gs.Convention.String()},
		Attract: AttractConfig{
			MaxReach:         as.MaxReach,
			Cooldown:         as.Cooldown,
			HitboxDisable:    as.HitboxDisable,
			SpeedCap:         as.SpeedCap,
			TriggerThreshold: as.TriggerThreshold,
		},
		Teleport: TeleportConfig{
			ReachFactor:      ts.ReachFactor,
			TimeStep:         ts.TimeStep,
			MaxSteps:         ts.MaxSteps,
			Cooldown:         ts.Cooldown,
			PrepareThreshold: ts.PrepareThreshold,
		},
		SpeedKiller: SpeedKillerConfig{
			RemainingSpeed: ks.RemainingSpeed,
			Cooldown:       ks.Cooldown,
			Margin:         ks.Margin,
		},
		Cutting: CuttingConfig{
			RequiredSpeed: cs.RequiredSpeed,
			Spread:        cs.Spread,
			PushFactor:    cs.PushFactor,
			MaxPushes:     cs.MaxPushes,
		},
		Dispenser: DispenserConfig{
			MinCount: ds.MinCount,
			Cooldown: ds.Cooldown,
			Spread:   ds.Spread,
			Seed:     ds.Seed,
		},
		Meal: MealConfig{TimeLimit: interaction.DefaultMealSettings().TimeLimit},
		Physics: PhysicsConfig{
			Gravity:   physics.DefaultGravity,
			FixedStep: 0.02,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadReader decodes r on top of the defaults and validates the result.
// Unknown keys are rejected.
func LoadReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := encoding.DecodeYAML(r, cfg, true); err != nil && !errors.Is(err, encoding.ErrEmptyDocument) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encoding.EncodeYAML(f, cfg); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, name, v))
		}
	}
	unit := func(name string, v float64) {
		if !(v >= 0 && v <= 1) {
			errs = append(errs, fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidConfig, name, v))
		}
	}

	positive("grasp.radius", c.Grasp.Radius)
	nonNegative("grasp.distance_from_hand", c.Grasp.DistanceFromHand)
	positive("grasp.speed_factor", c.Grasp.SpeedFactor)
	positive("grasp.velocity_frames", float64(c.Grasp.VelocityFrames))
	nonNegative("grasp.settle_delay", c.Grasp.SettleDelay)
	unit("grasp.hand_close_threshold", c.Grasp.HandCloseThreshold)

	if _, err := velocity.ParseConvention(c.Velocity.Convention); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	positive("attract.max_reach", c.Attract.MaxReach)
	nonNegative("attract.cooldown", c.Attract.Cooldown)
	nonNegative("attract.hitbox_disable", c.Attract.HitboxDisable)
	positive("attract.speed_cap", c.Attract.SpeedCap)
	unit("attract.trigger_threshold", c.Attract.TriggerThreshold)

	positive("teleport.reach_factor", c.Teleport.ReachFactor)
	positive("teleport.time_step", c.Teleport.TimeStep)
	positive("teleport.max_steps", float64(c.Teleport.MaxSteps))
	nonNegative("teleport.cooldown", c.Teleport.Cooldown)
	unit("teleport.prepare_threshold", c.Teleport.PrepareThreshold)

	nonNegative("speed_killer.remaining_speed", c.SpeedKiller.RemainingSpeed)
	nonNegative("speed_killer.cooldown", c.SpeedKiller.Cooldown)
	nonNegative("speed_killer.margin", c.SpeedKiller.Margin)

	nonNegative("cutting.required_speed", c.Cutting.RequiredSpeed)
	nonNegative("cutting.spread", c.Cutting.Spread)
	nonNegative("cutting.push_factor", c.Cutting.PushFactor)
	nonNegative("cutting.max_pushes", float64(c.Cutting.MaxPushes))

	nonNegative("dispenser.min_count", float64(c.Dispenser.MinCount))
	nonNegative("dispenser.cooldown", c.Dispenser.Cooldown)
	unit("dispenser.spread", c.Dispenser.Spread)

	nonNegative("meal.time_limit", c.Meal.TimeLimit)

	positive("physics.fixed_step", c.Physics.FixedStep)
	if !spatial.IsFinite(c.Physics.Gravity) {
		errs = append(errs, fmt.Errorf("%w: physics.gravity must be finite", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

func (c *Config) LogLevel() log.Level { return log.ParseLevel(c.Log.Level) }

func (c *Config) Gravity() spatial.Vec3 { return spatial.Vec3(c.Physics.Gravity) }

// GraspSettings assumes a validated config; an unknown convention falls back
// to local.
func (c *Config) GraspSettings() grasp.Settings {
	conv, _ := velocity.ParseConvention(c.Velocity.Convention)
	return grasp.Settings{
		GraspingRadius:   c.Grasp.Radius,
		DistanceFromHand: c.Grasp.DistanceFromHand,
		SpeedFactor:      c.Grasp.SpeedFactor,
		VelocityFrames:   c.Grasp.VelocityFrames,
		SettleDelay:      c.Grasp.SettleDelay,
		Convention:       conv,
	}
}

func (c *Config) AttractSettings() interaction.AttractSettings {
	return interaction.AttractSettings(c.Attract)
}

func (c *Config) TeleportSettings() interaction.TeleportSettings {
	return interaction.TeleportSettings(c.Teleport)
}

func (c *Config) SpeedKillerSettings() interaction.SpeedKillerSettings {
	return interaction.SpeedKillerSettings(c.SpeedKiller)
}

func (c *Config) CutSettings() interaction.CutSettings {
	return interaction.CutSettings(c.Cutting)
}

func (c *Config) DispenserSettings() interaction.DispenserSettings {
	return interaction.DispenserSettings(c.Dispenser)
}

func (c *Config) MealSettings() interaction.MealSettings {
	return interaction.MealSettings(c.Meal)
}
