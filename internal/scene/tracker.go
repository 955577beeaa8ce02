package scene

import (
	"sync"

	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/systems/physics"
)

// Tracker is a contact listener that counts, per entity, the feet contacts with
// solid ground and the overlaps with sensor zones.
type Tracker struct {
	mu     sync.RWMutex
	ground map[models.EntityID]int
	zones  map[models.EntityID]int
}

var _ physics.ContactListener = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{
		ground: make(map[models.EntityID]int),
		zones:  make(map[models.EntityID]int),
	}
}

func (t *Tracker) BeginContact(c physics.Contact) { t.apply(c, 1) }

func (t *Tracker) ContinueContact(physics.Contact) {}

func (t *Tracker) EndContact(c physics.Contact) { t.apply(c, -1) }

// Grounded reports whether the entity's feet touch a static or kinematic body.
func (t *Tracker) Grounded(id models.EntityID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ground[id] > 0
}

// InZone reports whether any fixture of the entity overlaps a sensor fixture.
func (t *Tracker) InZone(id models.EntityID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.zones[id] > 0
}

func (t *Tracker) apply(c physics.Contact, d int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if feet, ok := c.Involves(physics.FixtureFeet); ok {
		if other := c.Other(feet); other != nil && solidFixture(other) {
			bump(t.ground, owner(feet), d)
		}
	}
	if sensor, ok := c.Involves(physics.FixtureSensor); ok {
		if other := c.Other(sensor); other != nil && other.Type != physics.FixtureSensor {
			bump(t.zones, owner(other), d)
		}
	}
}

func solidFixture(f *physics.Fixture) bool {
	b := f.Body()
	return b != nil && (b.Type == physics.Static || b.Type == physics.Kinematic)
}

func owner(f *physics.Fixture) models.EntityID {
	if b := f.Body(); b != nil && b.Owner() != nil {
		return b.Owner().ID()
	}
	return 0
}

func bump(m map[models.EntityID]int, id models.EntityID, d int) {
	if id == 0 {
		return
	}
	if n := m[id] + d; n > 0 {
		m[id] = n
	} else {
		delete(m, id)
	}
}
