//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/graspvr/internal/config"
	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/input"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
	"github.com/zeusync/graspvr/internal/runtime"
)

// InitializeRuntime builds a runtime with its own physics space, bus and
// scheduler.
func InitializeRuntime(cfg *config.Config, source input.Source, logger log.Log) (*runtime.Runtime, error) {
	wire.Build(
		ProvideSpace,
		wire.Bind(new(grasp.Host), new(*physics.Space)),
		schedule.New,
		bus.New,
		ProvideWorld,
		runtime.New,
	)
	return nil, nil
}

func ProvideLogger(cfg *config.Config) *log.Logger {
	wire.Build(ProvideLevel, log.New)
	return nil
}
