package systems

import (
	"fmt"
	"slices"

	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
)

// Registry owns the live entities and the ordered systems, and drives one tick per Update.
type Registry struct {
	entities []*models.Entity
	index    map[models.EntityID]int
	nextID   models.EntityID

	systems []System
	byName  map[string]System

	logger log.Log
	ticks  uint64
	dead   []*models.Entity
}

type RegistryOption func(*Registry)

func WithRegistryLogger(l log.Log) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		index:  make(map[models.EntityID]int),
		byName: make(map[string]System),
		nextID: 1,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateEntity allocates an unused ID and registers a new live entity.
func (r *Registry) CreateEntity(name string) *models.Entity {
	for {
		if _, taken := r.index[r.nextID]; !taken {
			break
		}
		r.nextID++
	}
	e := models.NewEntity(r.nextID, name)
	r.nextID++
	r.index[e.ID()] = len(r.entities)
	r.entities = append(r.entities, e)
	return e
}

// AddEntity registers e. It joins systems on the next tick.
func (r *Registry) AddEntity(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if _, ok := r.index[e.ID()]; ok {
		return fmt.Errorf("%w: %d", ErrEntityExists, e.ID())
	}
	r.index[e.ID()] = len(r.entities)
	r.entities = append(r.entities, e)
	return nil
}

func (r *Registry) Entity(id models.EntityID) (*models.Entity, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.entities[i], true
}

// Entities returns the live set in registration order.
func (r *Registry) Entities() []*models.Entity {
	return slices.Clone(r.entities)
}

func (r *Registry) EntityCount() int { return len(r.entities) }

// AddSystem appends s. Systems update in registration order.
func (r *Registry) AddSystem(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	if _, ok := r.byName[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	r.systems = append(r.systems, s)
	r.byName[s.Name()] = s
	r.logger.Debug("system registered", log.String("system", s.Name()), log.Int("order", len(r.systems)-1))
	return nil
}

func (r *Registry) System(name string) (System, bool) {
	s, ok := r.byName[name]
	return s, ok
}

func (r *Registry) Systems() []System {
	return slices.Clone(r.systems)
}

// Ticks is the number of completed Update calls.
func (r *Registry) Ticks() uint64 { return r.ticks }

// GetSystem returns the first registered system of type T.
func GetSystem[T System](r *Registry) (T, bool) {
	for _, s := range r.systems {
		if t, ok := s.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Update runs one tick: reconcile membership, purge dead entities, then update
// every system in registration order. The first system error aborts the tick.
func (r *Registry) Update(delta float64) error {
	if err := r.reconcile(); err != nil {
		r.logger.Error("tick aborted", log.Uint64("tick", r.ticks), log.Error(err))
		return fmt.Errorf("%w: %w", ErrTickAborted, err)
	}
	r.purge()

	for _, s := range r.systems {
		if err := s.Update(delta); err != nil {
			r.logger.Error("tick aborted",
				log.String("system", s.Name()),
				log.Uint64("tick", r.ticks),
				log.Float64("delta", delta),
				log.Error(err))
			return fmt.Errorf("%w: %w", ErrTickAborted, err)
		}
	}
	r.ticks++
	return nil
}

func (r *Registry) reconcile() error {
	for _, e := range r.entities {
		if e.IsDead() {
			continue
		}
		for _, s := range r.systems {
			member, pending := s.IsMember(e), s.IsPending(e)
			switch {
			case s.Qualifies(e):
				// a removal queued while the entity did not qualify is stale now
				s.CancelRemoval(e)
				if !member && !pending {
					if err := s.AddEntity(e); err != nil {
						return err
					}
				}
			case member:
				s.RemoveEntity(e)
			case pending:
				// drops the queued addition
				s.Evict(e)
			}
		}
	}
	return nil
}

func (r *Registry) purge() {
	r.dead = r.dead[:0]
	for _, e := range r.entities {
		if e.IsDead() {
			r.dead = append(r.dead, e)
		}
	}
	if len(r.dead) == 0 {
		return
	}

	for _, e := range r.dead {
		for _, s := range r.systems {
			s.Evict(e)
		}
		e.Destroy()
	}

	live := r.entities[:0]
	for _, e := range r.entities {
		// hooks may kill more entities; those are purged next tick
		if e.IsDestroyed() {
			delete(r.index, e.ID())
			continue
		}
		r.index[e.ID()] = len(live)
		live = append(live, e)
	}
	clear(r.entities[len(live):])
	r.entities = live

	r.logger.Debug("dead entities purged", log.Int("count", len(r.dead)), log.Int("live", len(r.entities)))
	clear(r.dead)
}
