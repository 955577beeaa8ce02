package physics

import (
	"fmt"
	"slices"

	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/models"
)

// BodyKind selects how a body integrates and what it collides with.
type BodyKind uint8

const (
	// Static bodies never move, ignore gravity and block dynamic bodies.
	Static BodyKind = iota
	// Dynamic bodies fall under gravity and are blocked by static bodies.
	Dynamic
	// Kinematic bodies fall under gravity and pass through static bodies.
	Kinematic
	// Abstract bodies ignore gravity and pass through everything.
	Abstract
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	case Abstract:
		return "abstract"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseBodyKind is the inverse of BodyKind.String.
func ParseBodyKind(s string) (BodyKind, error) {
	for k := Static; k <= Abstract; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown body kind %q", s)
}

func (k BodyKind) AffectedByGravity() bool { return k == Dynamic || k == Kinematic }

func (k BodyKind) Movable() bool { return k != Static }

// BlockedBy reports whether a body of kind k must be pushed out of other.
func (k BodyKind) BlockedBy(other BodyKind) bool { return k == Dynamic && other == Static }

// Anchor is the point of the entity bounds that follows the same point of the body box.
type Anchor uint8

const (
	AnchorBottomCenter Anchor = iota
	AnchorCenter
	AnchorTopCenter
	AnchorBottomLeft
)

// Point returns the anchor point of box.
func (a Anchor) Point(box geom.Box) geom.Vec2 {
	switch a {
	case AnchorCenter:
		return box.Center()
	case AnchorTopCenter:
		return geom.V(box.X+box.W/2, box.Y+box.H)
	case AnchorBottomLeft:
		return box.Min()
	default:
		return geom.V(box.X+box.W/2, box.Y)
	}
}

// Place moves box so that its anchor point lands on p.
func (a Anchor) Place(box geom.Box, p geom.Vec2) geom.Box {
	return box.Translate(p.Sub(a.Point(box)))
}

// Body is the physics component of an entity.
type Body struct {
	Box      geom.Box
	Velocity geom.Vec2
	// Impulse is added to Velocity for a single sub-step, then reset.
	Impulse geom.Vec2
	Gravity geom.Vec2
	// Friction scales displacement per axis. Each axis must be in (0, 1].
	Friction geom.Vec2
	Type     BodyKind
	Anchor   Anchor
	Active   bool

	fixtures []*Fixture
	owner    *models.Entity
	tracked  bool
}

var _ models.Toggle = (*Body)(nil)

// NewBody returns an active body with no friction loss, anchored bottom-center.
func NewBody(kind BodyKind, box geom.Box) *Body {
	return &Body{
		Box:      box,
		Friction: geom.V(1, 1),
		Type:     kind,
		Anchor:   AnchorBottomCenter,
		Active:   true,
	}
}

func (b *Body) Kind() models.ComponentKind { return models.KindBody }

func (b *Body) Enabled() bool { return b.Active }

func (b *Body) Center() geom.Vec2 { return b.Box.Center() }

// Owner is the entity the body was last simulated for, or nil before its first frame.
func (b *Body) Owner() *models.Entity { return b.owner }

// AddFixture attaches a fixture of size centered at offset from the body center.
func (b *Body) AddFixture(t FixtureType, offset, size geom.Vec2) *Fixture {
	f := &Fixture{Type: t, Offset: offset, Size: size, Active: true, body: b}
	f.sync()
	b.fixtures = append(b.fixtures, f)
	return f
}

func (b *Body) RemoveFixture(f *Fixture) {
	b.fixtures = slices.DeleteFunc(b.fixtures, func(x *Fixture) bool { return x == f })
}

func (b *Body) Fixtures() []*Fixture { return b.fixtures }

// Fixture returns the first fixture of type t.
func (b *Body) Fixture(t FixtureType) (*Fixture, bool) {
	for _, f := range b.fixtures {
		if f.Type == t {
			return f, true
		}
	}
	return nil, false
}

// ApplyImpulse adds to the impulse consumed by the next sub-step.
func (b *Body) ApplyImpulse(i geom.Vec2) { b.Impulse = b.Impulse.Add(i) }

func (b *Body) validFriction() bool {
	// NaN fails both comparisons
	return b.Friction.X > 0 && b.Friction.X <= 1 && b.Friction.Y > 0 && b.Friction.Y <= 1
}

// integrate advances the body by dt. Static bodies only drop their impulse.
func (b *Body) integrate(dt float64) {
	if b.Type.Movable() {
		d := b.Velocity.Add(b.Impulse).Mul(b.Friction)
		if b.Type.AffectedByGravity() {
			d = d.Add(b.Gravity.Mul(b.Friction))
		}
		b.Box = b.Box.Translate(d.Scale(dt))
	}
	b.Impulse = geom.Vec2{}
}

// syncFixtures recomputes every fixture's world box from the body center.
func (b *Body) syncFixtures() {
	for _, f := range b.fixtures {
		f.sync()
	}
}
