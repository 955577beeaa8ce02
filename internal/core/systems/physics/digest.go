package physics

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/pkg/generic"
)

var digests = generic.NewPool(xxhash.New, (*xxhash.Digest).Reset)

// BodyState is a read-only copy of a simulated body.
type BodyState struct {
	Entity   models.EntityID `json:"entity"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Box      geom.Box        `json:"box"`
	Velocity geom.Vec2       `json:"velocity"`
}

// Snapshot returns the state of the bodies simulated during the last frame.
func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, 0, len(w.bodies))
	for _, b := range w.bodies {
		s := BodyState{Kind: b.Type.String(), Box: b.Box, Velocity: b.Velocity}
		if b.owner != nil {
			s.Entity = b.owner.ID()
			s.Name = b.owner.Name()
		}
		out = append(out, s)
	}
	return out
}

// Digest hashes the step count and every simulated body's box and velocity.
// Two worlds fed the same frames produce the same digest.
func (w *World) Digest() uint64 {
	d := digests.Get()
	defer digests.Put(d)
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	putf := func(f float64) { put(math.Float64bits(f)) }

	put(w.steps)
	for _, b := range w.bodies {
		if b.owner != nil {
			put(uint64(b.owner.ID()))
		}
		putf(b.Box.X)
		putf(b.Box.Y)
		putf(b.Box.W)
		putf(b.Box.H)
		putf(b.Velocity.X)
		putf(b.Velocity.Y)
	}
	return d.Sum64()
}
