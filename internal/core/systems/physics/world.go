package physics

import (
	"fmt"
	"math"

	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
)

const (
	// DefaultFixedStep is the sub-step duration in seconds.
	DefaultFixedStep = 1.0 / 150.0

	// stepTolerance absorbs float error so that n*step sums run exactly n sub-steps.
	stepTolerance = 1e-9
)

// World is the physics system. It collects the active bodies each frame and
// runs as many fixed-duration sub-steps as the accumulated frame time allows.
type World struct {
	*systems.Base

	step        float64
	accumulator float64
	steps       uint64

	handler  CollisionHandler
	listener ContactListener
	logger   log.Log
	baseOpts []systems.Option

	bodies      []*Body
	nextFixture FixtureID
	current     *contactSet
	prior       *contactSet
}

var (
	_ systems.System   = (*World)(nil)
	_ systems.Behavior = (*World)(nil)
)

type Option func(*World)

// WithFixedStep sets the sub-step duration in seconds.
func WithFixedStep(seconds float64) Option {
	return func(w *World) { w.step = seconds }
}

func WithCollisionHandler(h CollisionHandler) Option {
	return func(w *World) {
		if h != nil {
			w.handler = h
		}
	}
}

func WithContactListener(l ContactListener) Option {
	return func(w *World) {
		if l != nil {
			w.listener = l
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSystemOptions forwards options to the underlying systems.Base.
func WithSystemOptions(opts ...systems.Option) Option {
	return func(w *World) { w.baseOpts = append(w.baseOpts, opts...) }
}

// NewWorld builds the physics system named "physics" over every entity with a Body.
func NewWorld(opts ...Option) (*World, error) {
	w := &World{
		step:     DefaultFixedStep,
		handler:  DefaultCollisionHandler{},
		listener: ListenerFuncs{},
		logger:   log.NewNop(),
		current:  newContactSet(),
		prior:    newContactSet(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if !(w.step > 0) || math.IsInf(w.step, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, w.step)
	}
	baseOpts := append([]systems.Option{systems.WithLogger(w.logger)}, w.baseOpts...)
	w.Base = systems.NewBase("physics", models.NewMask(models.KindBody), w, baseOpts...)
	w.logger = w.Base.Logger()
	return w, nil
}

func (w *World) FixedStep() float64 { return w.step }

// Accumulator is the frame time not yet consumed by a sub-step.
func (w *World) Accumulator() float64 { return w.accumulator }

// Steps is the number of sub-steps run since creation.
func (w *World) Steps() uint64 { return w.steps }

// Bodies returns the bodies simulated during the last frame.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Contacts returns the contacts found by the last sub-step.
func (w *World) Contacts() []Contact {
	out := make([]Contact, len(w.prior.list))
	copy(out, w.prior.list)
	return out
}

func (w *World) PreProcess(delta float64) error {
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, delta)
	}
	clear(w.bodies)
	w.bodies = w.bodies[:0]
	return nil
}

// ProcessEntity collects the entity's body when the body is active.
func (w *World) ProcessEntity(e *models.Entity, _ float64) error {
	body, ok := models.Get[*Body](e, models.KindBody)
	if !ok {
		return nil
	}
	body.owner = e
	w.track(body)
	if !body.tracked {
		body.tracked = true
		body.syncFixtures()
	}
	w.bodies = append(w.bodies, body)
	return nil
}

// PostProcess runs the fixed-step loop over the collected bodies.
func (w *World) PostProcess(delta float64) error {
	w.accumulator += delta
	for w.accumulator+stepTolerance >= w.step {
		if err := w.subStep(w.step); err != nil {
			return err
		}
		w.accumulator -= w.step
	}
	if math.Abs(w.accumulator) < stepTolerance {
		w.accumulator = 0
	}
	return nil
}

// subStep fails before touching any state when a body has invalid friction.
func (w *World) subStep(dt float64) error {
	if err := w.validate(); err != nil {
		return err
	}
	w.broadPhase()
	w.collide(dt)
	w.integrate(dt)
	for _, b := range w.bodies {
		w.anchor(b)
	}
	w.steps++
	w.dispatch()
	return nil
}

// track gives every fixture of b an id from the world arena.
// Fixtures added by handlers or listeners mid-frame are picked up on the next sub-step.
func (w *World) track(b *Body) {
	for _, f := range b.fixtures {
		if f.id == 0 {
			w.nextFixture++
			f.id = w.nextFixture
		}
	}
}

// broadPhase fills the current contact set with overlapping active fixtures of distinct bodies.
func (w *World) broadPhase() {
	for _, b := range w.bodies {
		w.track(b)
	}
	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			for _, fa := range a.fixtures {
				if !fa.Active {
					continue
				}
				for _, fb := range b.fixtures {
					if fb.Active && fa.box.Overlaps(fb.box) {
						w.current.add(NewContact(fa, fb))
					}
				}
			}
		}
	}
}

func (w *World) collide(dt float64) {
	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			if overlap, ok := a.Box.Intersection(b.Box); ok {
				w.handler.Resolve(a, b, overlap, dt)
			}
		}
	}
}

// validate checks the friction of every collected body.
func (w *World) validate() error {
	for _, b := range w.bodies {
		if !b.validFriction() {
			var id models.EntityID
			if b.owner != nil {
				id = b.owner.ID()
			}
			w.logger.Error("invalid friction",
				log.Uint64("entity", uint64(id)),
				log.Float64("x", b.Friction.X),
				log.Float64("y", b.Friction.Y),
			)
			return fmt.Errorf("%w: entity %d has (%g, %g)", ErrInvalidFriction, id, b.Friction.X, b.Friction.Y)
		}
	}
	return nil
}

func (w *World) integrate(dt float64) {
	for _, b := range w.bodies {
		b.integrate(dt)
	}
}

// anchor moves the owner's bounds onto the body box and refreshes fixture boxes.
func (w *World) anchor(b *Body) {
	if e := b.owner; e != nil {
		bounds := e.Bounds()
		e.SetBounds(b.Anchor.Place(bounds, b.Anchor.Point(b.Box)))
	}
	b.syncFixtures()
}

// dispatch diffs the current contacts against the prior sub-step and notifies the listener.
func (w *World) dispatch() {
	for _, c := range w.current.list {
		if w.prior.has(c.Key()) {
			w.listener.ContinueContact(c)
		} else {
			w.listener.BeginContact(c)
		}
	}
	for _, c := range w.prior.list {
		if !w.current.has(c.Key()) {
			w.listener.EndContact(c)
		}
	}
	w.prior, w.current = w.current, w.prior
	w.current.reset()
}
