package injector

import (
	"github.com/zeusync/graspvr/internal/config"
	"github.com/zeusync/graspvr/internal/core/events/bus"
	"github.com/zeusync/graspvr/internal/core/grasp"
	"github.com/zeusync/graspvr/internal/core/observability/log"
	"github.com/zeusync/graspvr/internal/core/physics"
	"github.com/zeusync/graspvr/internal/core/schedule"
)

func ProvideLevel(cfg *config.Config) log.Level {
	return cfg.LogLevel()
}

func ProvideSpace(cfg *config.Config) *physics.Space {
	return physics.NewSpace(cfg.Gravity())
}

func ProvideWorld(cfg *config.Config, host grasp.Host, eventBus bus.EventBus, scheduler *schedule.Scheduler, logger log.Log) *grasp.World {
	return grasp.NewWorld(cfg.GraspSettings(), host, eventBus, scheduler, logger)
}
