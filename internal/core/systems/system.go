package systems

import (
	"time"

	"github.com/zeusync/simcore/internal/core/models"
)

// System processes the entities whose components satisfy its mask.
// Membership changes requested through AddEntity and RemoveEntity are
// buffered and applied at the start of the next Update.
type System interface {
	Name() string
	Mask() models.Mask

	// Qualifies reports whether e is alive and holds every masked component.
	Qualifies(e *models.Entity) bool
	// IsMember reports current membership. Queued additions are not members yet.
	IsMember(e *models.Entity) bool
	// IsPending reports whether e is queued for addition.
	IsPending(e *models.Entity) bool

	// AddEntity queues e for addition. e must qualify.
	AddEntity(e *models.Entity) error
	// RemoveEntity queues e for removal. Non-members are accepted.
	RemoveEntity(e *models.Entity)
	// Evict removes e immediately, including any queued addition.
	Evict(e *models.Entity)
	// CancelRemoval drops a queued removal of e. Membership is unchanged.
	CancelRemoval(e *models.Entity)

	Update(delta float64) error

	IsEnabled() bool
	SetEnabled(bool)

	// Entities returns a copy of the membership in processing order.
	Entities() []*models.Entity
	Metrics() Metrics
}

// Behavior holds the per-frame hooks a Base drives.
type Behavior interface {
	PreProcess(delta float64) error
	ProcessEntity(e *models.Entity, delta float64) error
	PostProcess(delta float64) error
}

// BehaviorFuncs adapts plain functions to Behavior. Nil funcs are skipped.
type BehaviorFuncs struct {
	Pre     func(delta float64) error
	Process func(e *models.Entity, delta float64) error
	Post    func(delta float64) error
}

func (f BehaviorFuncs) PreProcess(delta float64) error {
	if f.Pre == nil {
		return nil
	}
	return f.Pre(delta)
}

func (f BehaviorFuncs) ProcessEntity(e *models.Entity, delta float64) error {
	if f.Process == nil {
		return nil
	}
	return f.Process(e, delta)
}

func (f BehaviorFuncs) PostProcess(delta float64) error {
	if f.Post == nil {
		return nil
	}
	return f.Post(delta)
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	EntitiesProcessed  uint64
	TotalExecutionTime time.Duration
	LastExecutionTime  time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
	Members            int
}

// AverageExecutionTime is the mean Update duration.
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}
