package physics

import (
	"github.com/zeusync/simcore/internal/core/geom"
)

// CollisionHandler resolves an overlap between two bodies' collision boxes.
type CollisionHandler interface {
	Resolve(a, b *Body, overlap geom.Box, dt float64)
}

// CollisionHandlerFunc adapts a function to CollisionHandler.
type CollisionHandlerFunc func(a, b *Body, overlap geom.Box, dt float64)

func (f CollisionHandlerFunc) Resolve(a, b *Body, overlap geom.Box, dt float64) { f(a, b, overlap, dt) }

// ContactListener receives fixture contact lifecycle events.
// For one pair the order is always BeginContact, ContinueContact*, EndContact.
type ContactListener interface {
	BeginContact(c Contact)
	ContinueContact(c Contact)
	EndContact(c Contact)
}

// ListenerFuncs adapts plain functions to ContactListener. Nil funcs are skipped.
type ListenerFuncs struct {
	Begin    func(Contact)
	Continue func(Contact)
	End      func(Contact)
}

func (l ListenerFuncs) BeginContact(c Contact) {
	if l.Begin != nil {
		l.Begin(c)
	}
}

func (l ListenerFuncs) ContinueContact(c Contact) {
	if l.Continue != nil {
		l.Continue(c)
	}
}

func (l ListenerFuncs) EndContact(c Contact) {
	if l.End != nil {
		l.End(c)
	}
}

// MultiListener fans events out in slice order.
type MultiListener []ContactListener

func (m MultiListener) BeginContact(c Contact) {
	for _, l := range m {
		l.BeginContact(c)
	}
}

func (m MultiListener) ContinueContact(c Contact) {
	for _, l := range m {
		l.ContinueContact(c)
	}
}

func (m MultiListener) EndContact(c Contact) {
	for _, l := range m {
		l.EndContact(c)
	}
}

// DefaultCollisionHandler pushes a blocked body out of its obstacle along the
// axis of least overlap and stops its velocity into the obstacle.
type DefaultCollisionHandler struct{}

func (DefaultCollisionHandler) Resolve(a, b *Body, overlap geom.Box, _ float64) {
	switch {
	case a.Type.BlockedBy(b.Type):
		pushOut(a, b, overlap)
	case b.Type.BlockedBy(a.Type):
		pushOut(b, a, overlap)
	}
}

func pushOut(body, obstacle *Body, overlap geom.Box) {
	bc, oc := body.Center(), obstacle.Center()
	if overlap.W < overlap.H {
		dir := direction(bc.X-oc.X, body.Velocity.X)
		body.Box.X += dir * overlap.W
		if body.Velocity.X*dir < 0 {
			body.Velocity.X = 0
		}
		return
	}
	dir := direction(bc.Y-oc.Y, body.Velocity.Y)
	body.Box.Y += dir * overlap.H
	if body.Velocity.Y*dir < 0 {
		body.Velocity.Y = 0
	}
}

// direction is the sign of d, falling back to against the velocity when centers align.
func direction(d, velocity float64) float64 {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	case velocity > 0:
		return -1
	default:
		return 1
	}
}
