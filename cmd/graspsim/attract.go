package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/zeusync/graspvr/internal/core/spatial"
	"github.com/zeusync/graspvr/internal/core/trajectory"
)

// flight samples the height of an attracted object above its hit point,
// from launch until it reaches the hand at offset.
func flight(offset spatial.Vec3, gravity, speedCap float64, samples int) (spatial.Vec3, float64, []float64, error) {
	v, err := trajectory.LaunchVelocity(offset, gravity, speedCap)
	if err != nil {
		return spatial.Zero, 0, nil, err
	}
	if samples < 2 {
		samples = 2
	}

	duration := math.Hypot(offset.X(), offset.Z()) / math.Hypot(v.X(), v.Z())
	heights := make([]float64, samples)
	for i := range heights {
		t := duration * float64(i) / float64(samples-1)
		heights[i] = v.Y()*t - 0.5*gravity*t*t
	}
	return v, duration, heights, nil
}

func runAttract(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if speedCap < 0 {
		speedCap = cfg.Attract.SpeedCap
	}

	v, duration, heights, err := flight(spatial.Vec3{dx, dy, dz}, cfg.Gravity().Len(), speedCap, samples)
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("height above the hit point over the flight"),
	))
	fmt.Println()
	fmt.Printf("launch velocity (%.3f, %.3f, %.3f), speed %.3f\n", v.X(), v.Y(), v.Z(), v.Len())
	fmt.Printf("flight time %.3fs, arrival height %.3f (target %.3f)\n", duration, heights[len(heights)-1], dy)
	return nil
}
