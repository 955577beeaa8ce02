package scene

import (
	"math"

	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
	"github.com/zeusync/simcore/internal/core/systems/physics"
)

// LifetimeSystem counts down Lifetime components and marks expired entities dead.
type LifetimeSystem struct {
	*systems.Base
	expired uint64
}

func NewLifetimeSystem(logger log.Log) *LifetimeSystem {
	s := &LifetimeSystem{}
	s.Base = systems.NewBase("lifetime", models.NewMask(KindLifetime), systems.BehaviorFuncs{
		Process: s.process,
	}, systems.WithLogger(logger))
	return s
}

// Expired is the number of entities this system killed.
func (s *LifetimeSystem) Expired() uint64 { return s.expired }

func (s *LifetimeSystem) process(e *models.Entity, delta float64) error {
	lt, ok := models.Get[*Lifetime](e, KindLifetime)
	if !ok || e.IsDead() {
		return nil
	}
	lt.Remaining -= delta
	if lt.Remaining <= 0 {
		e.SetDead()
		s.expired++
	}
	return nil
}

// PatrolSystem turns patrolling bodies around at the ends of their range.
// It runs before physics so the new velocity applies to the next sub-steps.
type PatrolSystem struct {
	*systems.Base
}

func NewPatrolSystem(logger log.Log) *PatrolSystem {
	s := &PatrolSystem{}
	s.Base = systems.NewBase("patrol", models.NewMask(models.KindBody, KindPatrol), systems.BehaviorFuncs{
		Process: s.process,
	}, systems.WithLogger(logger))
	return s
}

func (s *PatrolSystem) process(e *models.Entity, _ float64) error {
	body, _ := models.Get[*physics.Body](e, models.KindBody)
	p, _ := models.Get[*Patrol](e, KindPatrol)
	if body == nil || p == nil {
		return nil
	}
	speed := math.Abs(body.Velocity.X)
	switch {
	case body.Box.X <= p.MinX:
		body.Velocity.X = speed
	case body.Box.X+body.Box.W >= p.MaxX:
		body.Velocity.X = -speed
	}
	return nil
}
