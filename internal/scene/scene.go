package scene

import (
	"fmt"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
	"github.com/zeusync/simcore/internal/core/systems/physics"
)

const (
	wallHeight    = 10.0
	crateSize     = 1.0
	platformY     = 6.0
	platformSpeed = 2.0
)

// Scene holds the entities of the demo level.
type Scene struct {
	Ground   *models.Entity
	Walls    [2]*models.Entity
	Platform *models.Entity
	Zone     *models.Entity
	Crates   []*models.Entity
}

// Build adds the demo level to r: a static floor between two walls, a row of
// falling crates, a patrolling kinematic platform and a sensor zone over the first crate.
func Build(r *systems.Registry, cfg config.SceneConfig, gravity geom.Vec2, logger log.Log) (*Scene, error) {
	if !(cfg.Width > 2) {
		return nil, fmt.Errorf("scene: width must exceed 2, got %v", cfg.Width)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	half := cfg.Width / 2
	s := &Scene{}

	s.Ground = solid(r, "ground", geom.Box{X: -half, Y: -1, W: cfg.Width, H: 1})
	s.Walls[0] = solid(r, "wall-left", geom.Box{X: -half - 1, Y: 0, W: 1, H: wallHeight})
	s.Walls[1] = solid(r, "wall-right", geom.Box{X: half, Y: 0, W: 1, H: wallHeight})

	spacing := (cfg.Width - 2) / float64(max(cfg.Crates, 1))
	for i := range cfg.Crates {
		x := -half + 1 + spacing*(float64(i)+0.5) - crateSize/2
		y := 2 + float64(i%3)*0.5
		crate := r.CreateEntity(fmt.Sprintf("crate-%d", i))

		body := physics.NewBody(physics.Dynamic, geom.Box{X: x, Y: y, W: crateSize, H: crateSize})
		body.Gravity = gravity
		body.Friction = cfg.Friction
		body.AddFixture(physics.FixtureFeet, geom.V(0, -crateSize/2), geom.V(crateSize*0.8, 0.1))
		body.AddFixture(physics.FixtureHitBox, geom.Vec2{}, geom.V(crateSize, crateSize))
		crate.AddComponent(body)
		crate.SetBounds(body.Box)

		if cfg.CrateLifetime > 0 {
			crate.AddComponent(&Lifetime{Remaining: cfg.CrateLifetime})
		}
		crate.OnDeath(func(e *models.Entity) {
			logger.Info("crate removed", log.Uint64("entity", uint64(e.ID())), log.String("name", e.Name()))
		})
		s.Crates = append(s.Crates, crate)
	}

	s.Platform = r.CreateEntity("platform")
	platform := physics.NewBody(physics.Kinematic, geom.Box{X: -1, Y: platformY, W: 2, H: 0.5})
	platform.Velocity = geom.V(platformSpeed, 0)
	platform.AddFixture(physics.FixtureHitBox, geom.Vec2{}, geom.V(2, 0.5))
	s.Platform.AddComponent(platform)
	s.Platform.AddComponent(&Patrol{MinX: -half + 1, MaxX: half - 1})
	s.Platform.SetBounds(platform.Box)

	s.Zone = r.CreateEntity("zone")
	zoneBox := geom.Box{X: -half + 1, Y: 0, W: spacing, H: 4}
	zone := physics.NewBody(physics.Abstract, zoneBox)
	zone.AddFixture(physics.FixtureSensor, geom.Vec2{}, geom.V(zoneBox.W, zoneBox.H))
	s.Zone.AddComponent(zone)
	s.Zone.SetBounds(zoneBox)

	logger.Info("scene built",
		log.Int("entities", r.EntityCount()),
		log.Int("crates", len(s.Crates)),
		log.Float64("width", cfg.Width))
	return s, nil
}

func solid(r *systems.Registry, name string, box geom.Box) *models.Entity {
	e := r.CreateEntity(name)
	body := physics.NewBody(physics.Static, box)
	body.AddFixture(physics.FixtureHitBox, geom.Vec2{}, geom.V(box.W, box.H))
	e.AddComponent(body)
	e.SetBounds(box)
	return e
}
