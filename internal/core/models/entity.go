package models

import (
	"github.com/zeusync/simcore/internal/core/geom"
)

// EntityID represents a unique identifier for entities
type EntityID uint64

// Entity is an identity owning at most one component per kind and an alive flag.
// Entities are not safe for concurrent use; the registry drives them from one goroutine.
type Entity struct {
	id         EntityID
	name       string
	components map[ComponentKind]Component
	mask       Mask
	bounds     geom.Box

	dead      bool
	destroyed bool
	onDeath   []func(*Entity)
}

// NewEntity creates a live entity.
func NewEntity(id EntityID, name string) *Entity {
	return &Entity{id: id, name: name, components: make(map[ComponentKind]Component)}
}

func (e *Entity) ID() EntityID { return e.id }

func (e *Entity) Name() string { return e.name }

// Bounds is the entity's bounding box in world space.
func (e *Entity) Bounds() geom.Box { return e.bounds }

func (e *Entity) SetBounds(b geom.Box) { e.bounds = b }

// AddComponent stores c under its kind. An existing component of the same kind is replaced.
func (e *Entity) AddComponent(c Component) {
	if c == nil {
		return
	}
	k := c.Kind()
	e.components[k] = c
	e.mask.Set(k)
}

// RemoveComponent drops the component of the given kind, if any.
func (e *Entity) RemoveComponent(kind ComponentKind) {
	delete(e.components, kind)
	e.mask.Unset(kind)
}

// GetComponent returns the component of the given kind. It never creates one.
func (e *Entity) GetComponent(kind ComponentKind) (Component, bool) {
	c, ok := e.components[kind]
	return c, ok
}

func (e *Entity) HasComponent(kind ComponentKind) bool {
	return e.mask.Has(kind)
}

// HasAllComponents reports whether the entity holds every kind in mask.
func (e *Entity) HasAllComponents(mask Mask) bool {
	return e.mask.Contains(mask)
}

// Mask returns the set of kinds currently attached.
func (e *Entity) Mask() Mask { return e.mask }

// ListComponents returns the attached kinds in ascending order.
func (e *Entity) ListComponents() []ComponentKind { return e.mask.Kinds() }

// SetDead flags the entity for removal on the next registry tick.
func (e *Entity) SetDead() { e.dead = true }

func (e *Entity) IsDead() bool { return e.dead }

func (e *Entity) IsAlive() bool { return !e.dead }

// OnDeath registers a cleanup hook run once when the entity is destroyed.
func (e *Entity) OnDeath(fn func(*Entity)) {
	if fn != nil {
		e.onDeath = append(e.onDeath, fn)
	}
}

// Destroy runs the death hooks. Only the first call has an effect.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.dead = true
	hooks := e.onDeath
	e.onDeath = nil
	for _, fn := range hooks {
		fn(e)
	}
}

func (e *Entity) IsDestroyed() bool { return e.destroyed }

// Get returns the component of the given kind as T.
// It reports false when the component is absent or of another type.
func Get[T Component](e *Entity, kind ComponentKind) (T, bool) {
	var zero T
	c, ok := e.GetComponent(kind)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
