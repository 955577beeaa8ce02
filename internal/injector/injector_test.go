package injector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/systems"
	"github.com/zeusync/simcore/internal/core/systems/physics"
	"github.com/zeusync/simcore/internal/scene"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Scene.Crates = 3
	cfg.Scene.Width = 12
	return cfg
}

func TestInitializeApp_WiresSystemsInOrder(t *testing.T) {
	app, err := InitializeApp(testConfig())
	require.NoError(t, err)

	var names []string
	for _, s := range app.Registry.Systems() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"patrol", "lifetime", "physics"}, names)

	w, ok := systems.GetSystem[*physics.World](app.Registry)
	require.True(t, ok)
	assert.Same(t, app.World, w)
	_, ok = systems.GetSystem[*scene.LifetimeSystem](app.Registry)
	assert.True(t, ok)
	assert.Len(t, app.Scene.Crates, 3)
}

func TestInitializeApp_RejectsBadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Level = "loud"
	_, err := InitializeApp(cfg)
	assert.Error(t, err)
}

func TestApp_RunHeadless(t *testing.T) {
	app, err := InitializeApp(testConfig())
	require.NoError(t, err)

	begins := 0
	_, err = app.Bus.SubscribeTopic(ContactTopic, physics.EventContactBegin, func(bus.Event) error {
		begins++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, app.RunHeadless(context.Background(), 120))
	assert.Equal(t, uint64(120), app.Registry.Ticks())
	assert.Equal(t, uint64(300), app.World.Steps(), "2 seconds of 1/150 sub-steps")
	for _, crate := range app.Scene.Crates {
		assert.True(t, app.Tracker.Grounded(crate.ID()), crate.Name())
	}
	assert.Positive(t, begins)
}

func TestApp_RunHeadlessStopsOnBadFriction(t *testing.T) {
	cfg := testConfig()
	// bypasses config validation on purpose
	cfg.Scene.Friction = geom.V(1, 0)
	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	err = app.RunHeadless(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrInvalidFriction)
	assert.ErrorIs(t, err, systems.ErrTickAborted)
	assert.Zero(t, app.World.Steps())
}

func TestApp_RunUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Inspector.Enabled = true
	cfg.Inspector.ListenAddr = "127.0.0.1:0"
	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))
	assert.Positive(t, app.Loop.Frames())
}
