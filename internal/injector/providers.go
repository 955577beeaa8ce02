package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
	"github.com/zeusync/simcore/internal/core/systems/physics"
	"github.com/zeusync/simcore/internal/host"
	"github.com/zeusync/simcore/internal/inspect"
	"github.com/zeusync/simcore/internal/scene"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideBusListener,
	scene.NewTracker,
	ProvideWorld,
	ProvideRegistry,
	ProvideScene,
	ProvideHub,
	ProvideLoop,
	NewApp,
)

func ProvideLogger(cfg config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideBus(logger log.Log) bus.EventBus {
	b := bus.New()
	b.AddObserver(bus.LogObserver{Logger: logger.Named("bus")})
	return b
}

func ProvideBusListener(b bus.EventBus, logger log.Log) *physics.BusListener {
	return &physics.BusListener{Bus: b, Topic: ContactTopic, Logger: logger}
}

// ProvideWorld builds the physics system reporting contacts to the tracker and the bus.
func ProvideWorld(cfg config.Config, tracker *scene.Tracker, listener *physics.BusListener, logger log.Log) (*physics.World, error) {
	w, err := physics.NewWorld(
		physics.WithFixedStep(cfg.Simulation.FixedStep),
		physics.WithContactListener(physics.MultiListener{tracker, listener}),
		physics.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	listener.Steps = w.Steps
	return w, nil
}

// ProvideRegistry registers the systems in execution order: patrol, lifetime, physics.
func ProvideRegistry(world *physics.World, logger log.Log) (*systems.Registry, error) {
	r := systems.NewRegistry(systems.WithRegistryLogger(logger.Named("registry")))
	for _, s := range []systems.System{
		scene.NewPatrolSystem(logger),
		scene.NewLifetimeSystem(logger),
		world,
	} {
		if err := r.AddSystem(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func ProvideScene(cfg config.Config, r *systems.Registry, logger log.Log) (*scene.Scene, error) {
	return scene.Build(r, cfg.Scene, cfg.Simulation.Gravity, logger.Named("scene"))
}

func ProvideHub(cfg config.Config, logger log.Log) *inspect.Hub {
	return inspect.NewHub(inspect.WithSendBuffer(cfg.Inspector.SendBuffer), inspect.WithLogger(logger))
}

// ProvideLoop publishes a world frame to the inspector every snapshot_every ticks.
func ProvideLoop(cfg config.Config, r *systems.Registry, world *physics.World, hub *inspect.Hub, logger log.Log) *host.Loop {
	opts := []host.Option{
		host.WithFrameRate(cfg.Simulation.FrameRate),
		host.WithMaxFrameDelta(cfg.Simulation.MaxFrameDelta),
		host.WithLogger(logger),
	}
	if every := uint64(cfg.Inspector.SnapshotEvery); cfg.Inspector.Enabled && every > 0 {
		opts = append(opts, host.WithFrameHook(func(tick uint64) error {
			if tick%every != 0 || hub.Clients() == 0 {
				return nil
			}
			return hub.PublishFrame(inspect.NewFrame(tick, world))
		}))
	}
	return host.NewLoop(r, opts...)
}
