package models

import "math/bits"

// ComponentKind represents a unique identifier for component types.
// Kinds are small integers so a Mask can describe any set of them.
type ComponentKind uint8

const (
	// KindBody is the physics body component.
	KindBody ComponentKind = iota

	// KindFirstCustom is the first kind available to gameplay packages.
	KindFirstCustom ComponentKind = 16
)

// MaxKinds is the number of distinct component kinds a Mask can hold.
const MaxKinds = 256

// Component is passive data attached to an entity.
type Component interface {
	Kind() ComponentKind
}

// Toggle is implemented by components that can be switched off.
// Systems skip entities whose masked components report Enabled() == false.
type Toggle interface {
	Enabled() bool
}

// Mask is a set of component kinds.
type Mask [4]uint64

// NewMask builds a mask from the given kinds.
func NewMask(kinds ...ComponentKind) Mask {
	var m Mask
	for _, k := range kinds {
		m.Set(k)
	}
	return m
}

func (m *Mask) Set(k ComponentKind) {
	m[k>>6] |= uint64(1) << (k & 63)
}

func (m *Mask) Unset(k ComponentKind) {
	m[k>>6] &^= uint64(1) << (k & 63)
}

func (m Mask) Has(k ComponentKind) bool {
	return m[k>>6]&(uint64(1)<<(k&63)) != 0
}

// Contains reports whether every kind in sub is also in m.
func (m Mask) Contains(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

func (m Mask) IsEmpty() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

func (m Mask) Len() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// Kinds lists the kinds in ascending order.
func (m Mask) Kinds() []ComponentKind {
	out := make([]ComponentKind, 0, m.Len())
	for word := range m {
		w := m[word]
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, ComponentKind(word*64+bit))
			w &= w - 1
		}
	}
	return out
}
