package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeusync/graspvr/internal/config"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/injector"
	"github.com/zeusync/graspvr/internal/scenario"
	"github.com/zeusync/graspvr/pkg/concurrent"
	"github.com/zeusync/graspvr/pkg/encoding"
	"github.com/zeusync/graspvr/pkg/sequence"
)

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	scenarios := make([]*scenario.Scenario, 0, len(args))
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	reports, err := concurrent.Map(cmd.Context(), sequence.From(scenarios), workers,
		func(ctx context.Context, sc *scenario.Scenario) (*scenario.Report, error) {
			return play(ctx, cfg, sc, logger.With(log.String("scenario", sc.Name)))
		})
	if err != nil {
		return err
	}

	if err := printReports(os.Stdout, reports); err != nil {
		return err
	}

	sum := scenario.Summarize(reports)
	fmt.Printf("\nrelease speed over %d throws: mean %.3f  std %.3f  median %.3f  max %.3f\n",
		sum.Releases, sum.Mean, sum.StdDev, sum.Median, sum.Max)

	if csvPath == "" {
		return nil
	}
	var rows []scenario.Release
	for _, r := range reports {
		rows = append(rows, r.Releases...)
	}
	return writeCSV(csvPath, rows)
}

func play(ctx context.Context, cfg *config.Config, sc *scenario.Scenario, logger log.Log) (*scenario.Report, error) {
	rt, err := injector.InitializeRuntime(cfg, sc.Source(), logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rt.Close() }()

	rep, err := sc.Play(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	logger.Info("scenario finished",
		log.Uint64("frames", rep.Frames),
		log.Int("releases", len(rep.Releases)),
	)
	return rep, nil
}

func printReports(out io.Writer, reports []*scenario.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tFRAMES\tSECONDS\tGRASPS\tRELEASES\tATTRACT\tTELEPORT\tSPEEDKILL\tCUTS\tDISPENSED\tDELIVERED\tEXPIRED")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.Scenario, r.Frames, r.Seconds, r.Grasps, len(r.Releases), r.Attractions, r.Teleports, r.SpeedKills,
			r.Cuts, r.Dispensed, r.Deliveries, r.Expired)
	}
	return w.Flush()
}

func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encoding.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
