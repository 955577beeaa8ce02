package scene

import "github.com/zeusync/simcore/internal/core/models"

const (
	KindLifetime models.ComponentKind = models.KindFirstCustom + iota
	KindPatrol
)

// Lifetime kills its entity once Remaining seconds have been simulated.
type Lifetime struct {
	Remaining float64
}

func (*Lifetime) Kind() models.ComponentKind { return KindLifetime }

// Patrol keeps a body moving back and forth between MinX and MaxX.
type Patrol struct {
	MinX, MaxX float64
	Paused     bool
}

func (*Patrol) Kind() models.ComponentKind { return KindPatrol }

func (p *Patrol) Enabled() bool { return !p.Paused }
