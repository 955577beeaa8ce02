package physics

import (
	"fmt"

	"github.com/zeusync/simcore/internal/core/geom"
)

// FixtureID identifies a fixture within one World. Zero means not yet tracked.
type FixtureID uint32

// FixtureType tags what a fixture senses.
type FixtureType uint8

const (
	FixtureFeet FixtureType = iota
	FixtureHead
	FixtureLeft
	FixtureRight
	FixtureHitBox
	FixtureDamageBox
	FixtureWallSlide
	FixtureSensor
)

var fixtureTypeNames = [...]string{
	FixtureFeet:      "feet",
	FixtureHead:      "head",
	FixtureLeft:      "left",
	FixtureRight:     "right",
	FixtureHitBox:    "hit-box",
	FixtureDamageBox: "damage-box",
	FixtureWallSlide: "wall-slide",
	FixtureSensor:    "sensor",
}

func (t FixtureType) String() string {
	if int(t) < len(fixtureTypeNames) {
		return fixtureTypeNames[t]
	}
	return fmt.Sprintf("fixture(%d)", uint8(t))
}

// ParseFixtureType is the inverse of FixtureType.String.
func ParseFixtureType(s string) (FixtureType, error) {
	for i, name := range fixtureTypeNames {
		if name == s {
			return FixtureType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fixture type %q", s)
}

// Fixture is a sensing sub-shape placed at a fixed offset from its body's center.
type Fixture struct {
	id       FixtureID
	Type     FixtureType
	Offset   geom.Vec2
	Size     geom.Vec2
	Active   bool
	UserData any

	box  geom.Box
	body *Body
}

func (f *Fixture) ID() FixtureID { return f.id }

func (f *Fixture) Body() *Body { return f.body }

// Box is the world-space box computed at the end of the last sub-step.
func (f *Fixture) Box() geom.Box { return f.box }

func (f *Fixture) sync() {
	f.box = geom.BoxAt(f.body.Box.Center().Add(f.Offset), f.Size.X, f.Size.Y)
}
