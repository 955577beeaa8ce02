package injector

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
	"github.com/zeusync/simcore/internal/core/systems/physics"
	"github.com/zeusync/simcore/internal/host"
	"github.com/zeusync/simcore/internal/inspect"
	"github.com/zeusync/simcore/internal/scene"
)

// ContactTopic is the bus topic physics contact events are published on.
const ContactTopic = "physics"

// App is the fully wired simulation.
type App struct {
	Config   config.Config
	Logger   log.Log
	Bus      bus.EventBus
	Registry *systems.Registry
	World    *physics.World
	Tracker  *scene.Tracker
	Scene    *scene.Scene
	Hub      *inspect.Hub
	Loop     *host.Loop
}

func NewApp(
	cfg config.Config,
	logger log.Log,
	b bus.EventBus,
	registry *systems.Registry,
	world *physics.World,
	tracker *scene.Tracker,
	sc *scene.Scene,
	hub *inspect.Hub,
	loop *host.Loop,
) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Bus:      b,
		Registry: registry,
		World:    world,
		Tracker:  tracker,
		Scene:    sc,
		Hub:      hub,
		Loop:     loop,
	}
}

// Run drives the loop in real time and, when enabled, serves the inspector next to it.
// The first failure cancels the other.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.Config.Inspector.Enabled {
		sub, err := a.Hub.Follow(a.Bus, ContactTopic)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Cancel() }()
		g.Go(func() error { return a.Hub.Serve(ctx, a.Config.Inspector.ListenAddr) })
	}
	g.Go(func() error { return a.Loop.Run(ctx) })
	return g.Wait()
}

// RunHeadless simulates frames of the configured frame duration as fast as possible.
func (a *App) RunHeadless(ctx context.Context, frames int) error {
	return a.Loop.RunFrames(ctx, frames, 1/float64(a.Config.Simulation.FrameRate))
}
