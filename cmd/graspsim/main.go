package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeusync/graspvr/internal/config"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/injector"
)

var (
	configPath string
	logLevel   string
	csvPath    string
	workers    int

	height   float64
	pitch    float64
	reach    float64
	step     float64
	maxSteps int

	dx, dy, dz float64
	speedCap   float64
	samples    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "graspsim",
		Short:         "Headless VR grasping and interaction simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml...]",
		Short: "Replay scripted scenarios and report releases",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScenarios,
	}
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write releases to this csv file")
	runCmd.Flags().IntVar(&workers, "workers", 4, "scenarios replayed in parallel")

	arcCmd := &cobra.Command{
		Use:   "arc",
		Short: "Cast a teleport arc over a flat floor and plot it",
		RunE:  runArc,
	}
	arcCmd.Flags().Float64Var(&height, "height", 1.2, "hand height above the floor")
	arcCmd.Flags().Float64Var(&pitch, "pitch", 30, "aim pitch in degrees, positive is up")
	arcCmd.Flags().Float64Var(&reach, "reach", 0, "launch speed (default teleport.reach_factor)")
	arcCmd.Flags().Float64Var(&step, "step", 0, "time per segment (default teleport.time_step)")
	arcCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "segment limit (default teleport.max_steps)")
	arcCmd.Flags().StringVar(&csvPath, "csv", "", "write arc points to this csv file")

	attractCmd := &cobra.Command{
		Use:   "attract",
		Short: "Solve the launch velocity that flings an object to the hand",
		RunE:  runAttract,
	}
	attractCmd.Flags().Float64Var(&dx, "dx", 0, "hand minus object, x")
	attractCmd.Flags().Float64Var(&dy, "dy", 0, "hand height above the hit point")
	attractCmd.Flags().Float64Var(&dz, "dz", 5, "hand minus object, z")
	attractCmd.Flags().Float64Var(&speedCap, "cap", -1, "speed cap (default attract.speed_cap, 0 disables)")
	attractCmd.Flags().IntVar(&samples, "samples", 60, "points plotted along the flight")

	rootCmd.AddCommand(runCmd, arcCmd, attractCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *log.Logger {
	return injector.ProvideLogger(cfg)
}
