package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/zeusync/graspvr/internal/core/interaction"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/trajectory"
	"github.com/zeusync/graspvr/pkg/sequence"
)

type arcPoint struct {
	Step int     `csv:"step"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	Z    float64 `csv:"z"`
}

// arcAim is a hand at Height above the origin aiming straight down +Z, tilted
// up by Pitch degrees.
type arcAim struct {
	Height   float64
	Pitch    float64
	Speed    float64
	Step     float64
	MaxSteps int
}

// floorSpace is an empty scene with a floor plane at y = 0.
func floorSpace(gravity spatial.Vec3) *physics.Space {
	space := physics.NewSpace(gravity)
	space.AddCollider(&physics.Collider{
		Shape:   physics.Plane{Point: spatial.Zero, Normal: spatial.Up},
		Layer:   physics.LayerFloor,
		Surface: physics.SurfaceFloor,
		Static:  true,
	})
	return space
}

// castAim casts the teleport arc for aim through space and lists its points
// in export order.
func castAim(space *physics.Space, aim arcAim) (trajectory.Arc, []arcPoint, error) {
	rad := aim.Pitch * math.Pi / 180
	arc, err := trajectory.CastArc(space, trajectory.ArcParams{
		Origin:   spatial.Vec3{0, aim.Height, 0},
		Velocity: spatial.Vec3{0, math.Sin(rad), math.Cos(rad)}.Mul(aim.Speed),
		Gravity:  space.Gravity(),
		Step:     aim.Step,
		MaxSteps: aim.MaxSteps,
		Mask:     interaction.TeleportMask,
	}, nil)
	if err != nil {
		return trajectory.Arc{}, nil, err
	}
	rows := make([]arcPoint, len(arc.Points))
	for i, p := range arc.Points {
		rows[i] = arcPoint{Step: i, X: p.X(), Y: p.Y(), Z: p.Z()}
	}
	return arc, rows, nil
}

func runArc(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tp := cfg.TeleportSettings()
	if reach <= 0 {
		reach = tp.ReachFactor
	}
	if step <= 0 {
		step = tp.TimeStep
	}
	if maxSteps <= 0 {
		maxSteps = tp.MaxSteps
	}

	arc, rows, err := castAim(floorSpace(cfg.Gravity()), arcAim{
		Height:   height,
		Pitch:    pitch,
		Speed:    reach,
		Step:     step,
		MaxSteps: maxSteps,
	})
	if err != nil {
		return err
	}

	heights := make([]float64, len(rows))
	for i, r := range rows {
		heights[i] = r.Y
	}

	end, _ := arc.End()
	caption := fmt.Sprintf("height per step (pitch %.0f, speed %.1f)", pitch, reach)
	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Println()
	if arc.Landed {
		fmt.Printf("landed on %s at (%.3f, %.3f, %.3f) after %d segments\n",
			arc.Hit.Surface(), end.X(), end.Y(), end.Z(), len(arc.Points)-1)
	} else {
		fmt.Printf("no landing within %d segments, last point (%.3f, %.3f, %.3f)\n",
			maxSteps, end.X(), end.Y(), end.Z())
	}
	apex := sequence.From(heights).Filter(func(h float64) bool { return h > height }).Count()
	fmt.Printf("segments above the hand: %d\n", apex)

	if csvPath == "" {
		return nil
	}
	return writeCSV(csvPath, rows)
}
