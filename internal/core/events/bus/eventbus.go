package bus

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/simcore/internal/core/observability/log"
)

// simpleEvent is the Event used by publishers without their own event types.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a simple Event stamped with the current time.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    bool
	bus       *inMemoryBus
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.bus.mu.RLock()
	defer s.bus.mu.RUnlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.bus.cancel(s)
	return nil
}

// inMemoryBus keeps subscriptions in slices so delivery follows subscription order.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subscriptions
	handlers  map[string]map[string][]*subscription
	metrics   EventBusMetrics
	observers []EventBusObserver
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers: map[string]map[string][]*subscription{"": {}},
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if strings.TrimSpace(eventType) == "" {
		return nil, ErrEmptyEventType
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(topic)
	s := &subscription{
		id:        uuid.NewString(),
		topic:     topic,
		eventType: eventType,
		handler:   handler,
		active:    true,
		bus:       b,
	}
	b.handlers[topic][eventType] = append(b.handlers[topic][eventType], s)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) cancel(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	if types, ok := b.handlers[s.topic]; ok {
		subs := slices.DeleteFunc(types[s.eventType], func(x *subscription) bool { return x == s })
		if len(subs) == 0 {
			delete(types, s.eventType)
		} else {
			types[s.eventType] = subs
		}
	}
}

func (b *inMemoryBus) CreateTopic(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureTopicLocked(name)
	return nil
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	if obs == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.observers, obs) {
		b.observers = append(b.observers, obs)
	}
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = slices.DeleteFunc(b.observers, func(o EventBusObserver) bool { return o == obs })
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, subs := range types {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b TopicInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (b *inMemoryBus) ensureTopicLocked(topic string) {
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string][]*subscription)
	}
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if types := b.handlers[topic]; types != nil {
		subs = append(subs, types[etype]...)
		if etype != Wildcard {
			subs = append(subs, types[Wildcard]...)
		}
	}
	observers := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) == 0 {
		return all
	}
	took := time.Since(start)
	for _, obs := range observers {
		obs.OnDelivered(topic, etype, delivered, all, took)
	}
	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.Topics = uint64(len(b.handlers))
	var active uint64
	for _, types := range b.handlers {
		for _, s := range types {
			active += uint64(len(s))
		}
	}
	b.metrics.SubscribersActive = active
	b.mu.Unlock()
	return all
}

// LogObserver logs failed deliveries at warn level and every delivery at debug level.
type LogObserver struct {
	Logger log.Log
}

func (o LogObserver) OnPublish(string, string, Event) {}

func (o LogObserver) OnDelivered(topic, eventType string, handlers int, err error, took time.Duration) {
	if o.Logger == nil {
		return
	}
	fields := []log.Field{
		log.String("topic", topic),
		log.String("type", eventType),
		log.Int("handlers", handlers),
		log.Duration("took", took),
	}
	if err != nil {
		o.Logger.Warn("event delivery failed", append(fields, log.Error(err))...)
		return
	}
	if o.Logger.Enabled(log.LevelDebug) {
		o.Logger.Debug("event delivered", fields...)
	}
}
