package physics

import (
	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
)

// Contact event types published by BusListener.
const (
	EventContactBegin    = "contact.begin"
	EventContactContinue = "contact.continue"
	EventContactEnd      = "contact.end"
)

// ContactEvent is the payload of contact events.
type ContactEvent struct {
	Step     uint64          `json:"step"`
	EntityA  models.EntityID `json:"entity_a"`
	EntityB  models.EntityID `json:"entity_b"`
	FixtureA FixtureID       `json:"fixture_a"`
	FixtureB FixtureID       `json:"fixture_b"`
	TypeA    string          `json:"type_a"`
	TypeB    string          `json:"type_b"`
}

// BusListener republishes contact callbacks on an event bus topic.
// Continue events are frequent, so they are only published when PublishContinue is set.
type BusListener struct {
	Bus             bus.EventBus
	Topic           string
	PublishContinue bool
	Logger          log.Log
	// Steps reports the current sub-step, usually World.Steps.
	Steps func() uint64
}

var _ ContactListener = (*BusListener)(nil)

func (l *BusListener) BeginContact(c Contact) { l.publish(EventContactBegin, c) }

func (l *BusListener) ContinueContact(c Contact) {
	if l.PublishContinue {
		l.publish(EventContactContinue, c)
	}
}

func (l *BusListener) EndContact(c Contact) { l.publish(EventContactEnd, c) }

func (l *BusListener) publish(typ string, c Contact) {
	if l.Bus == nil {
		return
	}
	ev := ContactEvent{
		EntityA:  ownerID(c.A),
		EntityB:  ownerID(c.B),
		FixtureA: c.A.id,
		FixtureB: c.B.id,
		TypeA:    c.A.Type.String(),
		TypeB:    c.B.Type.String(),
	}
	if l.Steps != nil {
		ev.Step = l.Steps()
	}
	if err := l.Bus.PublishToTopic(l.Topic, bus.NewEvent(typ, "physics", ev, nil)); err != nil && l.Logger != nil {
		l.Logger.Warn("contact event handler failed", log.String("type", typ), log.Error(err))
	}
}

func ownerID(f *Fixture) models.EntityID {
	if f.body == nil || f.body.owner == nil {
		return 0
	}
	return f.body.owner.ID()
}
