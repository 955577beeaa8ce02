package systems

import (
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/pkg/sequence"
)

var _ System = (*Base)(nil)

// Option configures a Base.
type Option func(*Base)

// WithComparator sorts members with cmp before they are processed each update.
// The sort is stable, so equal members keep insertion order.
func WithComparator(cmp func(a, b *models.Entity) int) Option {
	return func(b *Base) { b.compare = cmp }
}

func WithLogger(l log.Log) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithEnabled(enabled bool) Option {
	return func(b *Base) { b.enabled = enabled }
}

// Base is the masked-membership scheduler shared by every system.
// It owns membership and the add/remove queues and drives a Behavior.
type Base struct {
	name     string
	mask     models.Mask
	kinds    []models.ComponentKind
	behavior Behavior
	compare  func(a, b *models.Entity) int
	logger   log.Log
	enabled  bool

	members []*models.Entity
	index   map[models.EntityID]int
	scratch []*models.Entity

	toAdd    sequence.Queue[*models.Entity]
	toRemove sequence.Queue[*models.Entity]
	queued   map[models.EntityID]struct{}
	leaving  map[models.EntityID]struct{}

	metrics Metrics
}

// NewBase creates an enabled system named name that processes entities holding every kind in mask.
func NewBase(name string, mask models.Mask, behavior Behavior, opts ...Option) *Base {
	if behavior == nil {
		behavior = BehaviorFuncs{}
	}
	b := &Base{
		name:     name,
		mask:     mask,
		kinds:    mask.Kinds(),
		behavior: behavior,
		logger:   log.NewNop(),
		enabled:  true,
		index:    make(map[models.EntityID]int),
		queued:   make(map[models.EntityID]struct{}),
		leaving:  make(map[models.EntityID]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(log.String("system", name))
	return b
}

func (b *Base) Name() string { return b.name }

func (b *Base) Mask() models.Mask { return b.mask }

func (b *Base) Logger() log.Log { return b.logger }

func (b *Base) IsEnabled() bool { return b.enabled }

func (b *Base) SetEnabled(enabled bool) {
	if b.enabled == enabled {
		return
	}
	b.enabled = enabled
	b.logger.Debug("system toggled", log.Bool("enabled", enabled))
}

func (b *Base) Qualifies(e *models.Entity) bool {
	return e != nil && e.IsAlive() && e.HasAllComponents(b.mask)
}

func (b *Base) IsMember(e *models.Entity) bool {
	if e == nil {
		return false
	}
	_, ok := b.index[e.ID()]
	return ok
}

func (b *Base) IsPending(e *models.Entity) bool {
	if e == nil {
		return false
	}
	_, ok := b.queued[e.ID()]
	return ok
}

func (b *Base) AddEntity(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if !b.Qualifies(e) {
		return fmt.Errorf("%w: system %s, entity %d (%s)", ErrNotQualified, b.name, e.ID(), e.Name())
	}
	b.toAdd.Enqueue(e)
	b.queued[e.ID()] = struct{}{}
	return nil
}

func (b *Base) RemoveEntity(e *models.Entity) {
	if e == nil {
		return
	}
	if _, ok := b.leaving[e.ID()]; ok {
		return
	}
	b.toRemove.Enqueue(e)
	b.leaving[e.ID()] = struct{}{}
}

func (b *Base) Evict(e *models.Entity) {
	if e == nil {
		return
	}
	id := e.ID()
	if _, ok := b.queued[id]; ok {
		delete(b.queued, id)
		b.toAdd.RemoveFunc(func(q *models.Entity) bool { return q.ID() == id })
	}
	b.CancelRemoval(e)
	b.remove(e)
}

func (b *Base) CancelRemoval(e *models.Entity) {
	if e == nil {
		return
	}
	id := e.ID()
	if _, ok := b.leaving[id]; !ok {
		return
	}
	delete(b.leaving, id)
	b.toRemove.RemoveFunc(func(q *models.Entity) bool { return q.ID() == id })
}

func (b *Base) Entities() []*models.Entity {
	return slices.Clone(b.members)
}

func (b *Base) Metrics() Metrics {
	m := b.metrics
	m.Members = len(b.members)
	return m
}

// Update applies queued membership changes and runs the behavior over the members.
func (b *Base) Update(delta float64) error {
	if !b.enabled {
		return nil
	}
	start := time.Now()
	processed, err := b.update(delta)
	b.record(time.Since(start), processed, err)
	return err
}

func (b *Base) update(delta float64) (int, error) {
	b.toAdd.Drain(func(e *models.Entity) {
		delete(b.queued, e.ID())
		b.insert(e)
	})
	b.toRemove.Drain(func(e *models.Entity) {
		delete(b.leaving, e.ID())
		b.remove(e)
	})

	if b.compare != nil && len(b.members) > 1 {
		slices.SortStableFunc(b.members, b.compare)
		b.reindex(0)
	}

	if err := b.behavior.PreProcess(delta); err != nil {
		return 0, b.wrap("pre-process", err)
	}

	processed := 0
	b.scratch = append(b.scratch[:0], b.members...)
	for _, e := range b.scratch {
		if !b.switchedOn(e) {
			continue
		}
		if err := b.behavior.ProcessEntity(e, delta); err != nil {
			return processed, b.wrap(fmt.Sprintf("process entity %d", e.ID()), err)
		}
		processed++
	}
	clear(b.scratch)

	if err := b.behavior.PostProcess(delta); err != nil {
		return processed, b.wrap("post-process", err)
	}

	// components may have been removed mid-frame
	for i := len(b.members) - 1; i >= 0; i-- {
		if e := b.members[i]; !b.Qualifies(e) {
			b.remove(e)
		}
	}
	return processed, nil
}

// switchedOn reports whether every masked component that can be toggled is on.
func (b *Base) switchedOn(e *models.Entity) bool {
	for _, k := range b.kinds {
		c, ok := e.GetComponent(k)
		if !ok {
			continue
		}
		if t, ok := c.(models.Toggle); ok && !t.Enabled() {
			return false
		}
	}
	return true
}

func (b *Base) insert(e *models.Entity) {
	if _, ok := b.index[e.ID()]; ok {
		return
	}
	b.index[e.ID()] = len(b.members)
	b.members = append(b.members, e)
	if b.logger.Enabled(log.LevelDebug) {
		b.logger.Debug("entity added", log.Uint64("entity", uint64(e.ID())), log.String("name", e.Name()))
	}
}

func (b *Base) remove(e *models.Entity) {
	i, ok := b.index[e.ID()]
	if !ok {
		return
	}
	delete(b.index, e.ID())
	b.members = slices.Delete(b.members, i, i+1)
	b.reindex(i)
	if b.logger.Enabled(log.LevelDebug) {
		b.logger.Debug("entity removed", log.Uint64("entity", uint64(e.ID())), log.String("name", e.Name()))
	}
}

func (b *Base) reindex(from int) {
	for i := from; i < len(b.members); i++ {
		b.index[b.members[i].ID()] = i
	}
}

func (b *Base) wrap(stage string, err error) error {
	return fmt.Errorf("system %s: %s: %w", b.name, stage, err)
}

func (b *Base) record(took time.Duration, processed int, err error) {
	b.metrics.ExecutionCount++
	b.metrics.EntitiesProcessed += uint64(processed)
	b.metrics.LastExecutionTime = took
	b.metrics.TotalExecutionTime += took
	if took > b.metrics.MaxExecutionTime {
		b.metrics.MaxExecutionTime = took
	}
	if err != nil {
		b.metrics.ErrorCount++
		b.metrics.LastError = err
	}
}
