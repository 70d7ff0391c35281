package scenario

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates release speeds across reports.
type Summary struct {
	Runs     int     `yaml:"runs"`
	Releases int     `yaml:"releases"`
	Mean     float64 `yaml:"mean"`
	StdDev   float64 `yaml:"std_dev"`
	Median   float64 `yaml:"median"`
	Max      float64 `yaml:"max"`
}

func Summarize(reports []*Report) Summary {
	s := Summary{Runs: len(reports)}
	var speeds []float64
	for _, r := range reports {
		speeds = append(speeds, r.Speeds()...)
	}
	s.Releases = len(speeds)
	if len(speeds) == 0 {
		return s
	}

	sort.Float64s(speeds)
	s.Mean, s.StdDev = stat.MeanStdDev(speeds, nil)
	if len(speeds) == 1 {
		s.StdDev = 0
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	s.Max = floats.Max(speeds)
	return s
}
