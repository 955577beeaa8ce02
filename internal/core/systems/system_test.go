package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/simcore/internal/core/models"
)

const (
	kindPosition models.ComponentKind = models.KindFirstCustom + iota
	kindSprite
	kindBrain
)

type position struct{ x int }

func (*position) Kind() models.ComponentKind { return kindPosition }

type sprite struct{ visible bool }

func (*sprite) Kind() models.ComponentKind { return kindSprite }
func (s *sprite) Enabled() bool            { return s.visible }

type brain struct{}

func (brain) Kind() models.ComponentKind { return kindBrain }

func newEntity(id models.EntityID, comps ...models.Component) *models.Entity {
	e := models.NewEntity(id, "")
	for _, c := range comps {
		e.AddComponent(c)
	}
	return e
}

// recorder logs hook calls in order.
type recorder struct {
	calls     []string
	processed []models.EntityID
	onProcess func(e *models.Entity)
	err       error
}

func (r *recorder) PreProcess(float64) error {
	r.calls = append(r.calls, "pre")
	return nil
}

func (r *recorder) ProcessEntity(e *models.Entity, _ float64) error {
	r.calls = append(r.calls, "process")
	r.processed = append(r.processed, e.ID())
	if r.onProcess != nil {
		r.onProcess(e)
	}
	return r.err
}

func (r *recorder) PostProcess(float64) error {
	r.calls = append(r.calls, "post")
	return nil
}

func TestBase_AddEntityRequiresQualification(t *testing.T) {
	s := NewBase("render", models.NewMask(kindPosition, kindSprite), nil)

	err := s.AddEntity(newEntity(1, &position{}))
	require.ErrorIs(t, err, ErrNotQualified)

	dead := newEntity(2, &position{}, &sprite{visible: true})
	dead.SetDead()
	require.ErrorIs(t, s.AddEntity(dead), ErrNotQualified)

	require.ErrorIs(t, s.AddEntity(nil), ErrNilEntity)
	require.NoError(t, s.AddEntity(newEntity(3, &position{}, &sprite{})))
}

func TestBase_QueuedAdditionsAreNotMembers(t *testing.T) {
	s := NewBase("move", models.NewMask(kindPosition), nil)
	e := newEntity(1, &position{})

	require.NoError(t, s.AddEntity(e))
	assert.False(t, s.IsMember(e))
	assert.True(t, s.IsPending(e))

	require.NoError(t, s.Update(0.016))
	assert.True(t, s.IsMember(e))
	assert.False(t, s.IsPending(e))
}

func TestBase_QueueIsolationDuringUpdate(t *testing.T) {
	a := newEntity(1, &position{})
	b := newEntity(2, &position{})

	rec := &recorder{}
	s := NewBase("move", models.NewMask(kindPosition), rec)
	rec.onProcess = func(e *models.Entity) {
		// re-entrant mutation while iterating
		s.RemoveEntity(e)
		require.NoError(t, s.AddEntity(b))
		assert.True(t, s.IsMember(e))
		assert.False(t, s.IsMember(b))
	}

	require.NoError(t, s.AddEntity(a))
	require.NoError(t, s.Update(1))
	assert.Equal(t, []models.EntityID{1}, rec.processed)
	assert.True(t, s.IsMember(a), "removal applies on the next update")
	assert.False(t, s.IsMember(b), "addition applies on the next update")

	rec.onProcess = nil
	require.NoError(t, s.Update(1))
	assert.False(t, s.IsMember(a))
	assert.True(t, s.IsMember(b))
	assert.Equal(t, []models.EntityID{1, 2}, rec.processed)
}

func TestBase_UpdateOrder(t *testing.T) {
	rec := &recorder{}
	s := NewBase("ai", models.NewMask(kindBrain), rec)
	require.NoError(t, s.AddEntity(newEntity(1, brain{})))
	require.NoError(t, s.AddEntity(newEntity(2, brain{})))

	require.NoError(t, s.Update(1))
	assert.Equal(t, []string{"pre", "process", "process", "post"}, rec.calls)

	m := s.Metrics()
	assert.Equal(t, uint64(1), m.ExecutionCount)
	assert.Equal(t, uint64(2), m.EntitiesProcessed)
	assert.Equal(t, 2, m.Members)
}

func TestBase_AddThenRemoveInSameFrame(t *testing.T) {
	s := NewBase("ai", models.NewMask(kindBrain), nil)
	e := newEntity(1, brain{})
	require.NoError(t, s.AddEntity(e))
	s.RemoveEntity(e)
	require.NoError(t, s.Update(1))
	assert.False(t, s.IsMember(e))
}

func TestBase_IdempotentRemoval(t *testing.T) {
	s := NewBase("ai", models.NewMask(kindBrain), nil)
	member := newEntity(1, brain{})
	stranger := newEntity(2, brain{})
	require.NoError(t, s.AddEntity(member))
	require.NoError(t, s.Update(1))

	s.RemoveEntity(stranger)
	s.RemoveEntity(stranger)
	require.NoError(t, s.Update(1))
	assert.False(t, s.IsMember(stranger))
	assert.Equal(t, []*models.Entity{member}, s.Entities())
}

func TestBase_SkipsSwitchedOffComponents(t *testing.T) {
	rec := &recorder{}
	s := NewBase("render", models.NewMask(kindPosition, kindSprite), rec)
	on := newEntity(1, &position{}, &sprite{visible: true})
	off := newEntity(2, &position{}, &sprite{visible: false})
	require.NoError(t, s.AddEntity(on))
	require.NoError(t, s.AddEntity(off))

	require.NoError(t, s.Update(1))
	assert.Equal(t, []models.EntityID{1}, rec.processed)
	assert.True(t, s.IsMember(off), "switched off entities stay members")
}

func TestBase_ComparatorOrdersProcessing(t *testing.T) {
	rec := &recorder{}
	s := NewBase("render", models.NewMask(kindPosition), rec,
		WithComparator(func(a, b *models.Entity) int {
			pa, _ := models.Get[*position](a, kindPosition)
			pb, _ := models.Get[*position](b, kindPosition)
			return pa.x - pb.x
		}))
	require.NoError(t, s.AddEntity(newEntity(1, &position{x: 30})))
	require.NoError(t, s.AddEntity(newEntity(2, &position{x: 10})))
	require.NoError(t, s.AddEntity(newEntity(3, &position{x: 20})))

	require.NoError(t, s.Update(1))
	assert.Equal(t, []models.EntityID{2, 3, 1}, rec.processed)

	ids := make([]models.EntityID, 0, 3)
	for _, e := range s.Entities() {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, []models.EntityID{2, 3, 1}, ids)
}

func TestBase_PrunesAfterPostProcess(t *testing.T) {
	victim := newEntity(1, &position{}, brain{})
	killed := newEntity(2, &position{})

	rec := &recorder{}
	rec.onProcess = func(e *models.Entity) {
		switch e.ID() {
		case 1:
			e.RemoveComponent(kindPosition)
		case 2:
			e.SetDead()
		}
	}
	s := NewBase("move", models.NewMask(kindPosition), rec)
	require.NoError(t, s.AddEntity(victim))
	require.NoError(t, s.AddEntity(killed))

	require.NoError(t, s.Update(1))
	assert.Empty(t, s.Entities())
}

func TestBase_DisabledIsNoop(t *testing.T) {
	rec := &recorder{}
	s := NewBase("ai", models.NewMask(kindBrain), rec, WithEnabled(false))
	e := newEntity(1, brain{})
	require.NoError(t, s.AddEntity(e))

	require.NoError(t, s.Update(1))
	assert.Empty(t, rec.calls)
	assert.False(t, s.IsMember(e))

	s.SetEnabled(true)
	require.NoError(t, s.Update(1))
	assert.True(t, s.IsMember(e))
}

func TestBase_EvictDropsQueuedAddition(t *testing.T) {
	s := NewBase("ai", models.NewMask(kindBrain), nil)
	a := newEntity(1, brain{})
	b := newEntity(2, brain{})
	require.NoError(t, s.AddEntity(a))
	require.NoError(t, s.Update(1))
	require.NoError(t, s.AddEntity(b))

	s.Evict(a)
	s.Evict(b)
	assert.False(t, s.IsMember(a))
	assert.False(t, s.IsPending(b))

	require.NoError(t, s.Update(1))
	assert.Empty(t, s.Entities())
}

func TestBase_HookErrorAbortsUpdate(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{err: boom}
	s := NewBase("ai", models.NewMask(kindBrain), rec)
	require.NoError(t, s.AddEntity(newEntity(1, brain{})))
	require.NoError(t, s.AddEntity(newEntity(2, brain{})))

	err := s.Update(1)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "system ai")
	assert.Equal(t, []string{"pre", "process"}, rec.calls)
	assert.Equal(t, uint64(1), s.Metrics().ErrorCount)
}

func TestBehaviorFuncs(t *testing.T) {
	var pre, post bool
	count := 0
	s := NewBase("funcs", models.NewMask(kindBrain), BehaviorFuncs{
		Pre:     func(float64) error { pre = true; return nil },
		Process: func(*models.Entity, float64) error { count++; return nil },
		Post:    func(float64) error { post = true; return nil },
	})
	require.NoError(t, s.AddEntity(newEntity(1, brain{})))
	require.NoError(t, s.Update(1))
	assert.True(t, pre)
	assert.True(t, post)
	assert.Equal(t, 1, count)

	require.NoError(t, NewBase("empty", models.Mask{}, BehaviorFuncs{}).Update(1))
}

func TestBase_CancelRemoval(t *testing.T) {
	s := NewBase("move", models.NewMask(kindPosition), nil)
	e := newEntity(1, &position{})
	require.NoError(t, s.AddEntity(e))
	require.NoError(t, s.Update(1))

	s.RemoveEntity(e)
	s.CancelRemoval(e)
	s.CancelRemoval(nil)
	require.NoError(t, s.Update(1))
	assert.True(t, s.IsMember(e))

	s.RemoveEntity(e)
	require.NoError(t, s.Update(1))
	assert.False(t, s.IsMember(e), "removal can be queued again after a cancel")
}
