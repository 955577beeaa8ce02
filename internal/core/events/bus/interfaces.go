package bus

import "time"

// EventBus defines a thread-safe, in-process pub/sub event bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string, or by Wildcard for every type.
// - Optional topics: handlers can subscribe within a topic for isolation and scoping.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in subscription order.
// - Error aggregation: multiple handler errors are joined and returned from Publish/PublishBatch.
// - Optional observability: metrics are produced only when observers are registered.
//
// Notes:
// - Filters are evaluated before delivery. If any filter rejects an event, it is dropped without error.
// - The default topic is "" (empty string).
// - Handlers may subscribe or unsubscribe from inside a delivery; the change applies to the next event.
type EventBus interface {
	// Publish delivers the event synchronously to the subscribers of event.Type()
	// in the default topic.
	Publish(event Event) error
	// Subscribe registers a handler for an event type in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	// PublishWithFilters drops the event when any filter returns false.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error

	// CreateTopic declares a logical topic. Repeat declarations are idempotent.
	CreateTopic(name string) error
	// SubscribeTopic registers a handler for eventType within a topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// PublishToTopic publishes to a specific topic.
	PublishToTopic(topic string, event Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns accumulated metrics. Metrics are only
	// collected while at least one observer is registered.
	GetMetrics() EventBusMetrics
	// GetTopics returns known topics sorted by name.
	GetTopics() []TopicInfo
}

// Wildcard subscribes a handler to every event type of a topic.
const Wildcard = "*"

// Event is an immutable message transported by the EventBus.
type Event interface {
	// Type is the routing key used to select handlers.
	Type() string
	// Source identifies the publisher.
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	// EventHandler is invoked per delivered event. Returned errors are joined by Publish.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries and errors. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, took time.Duration)
}

// EventBusMetrics is updated only while at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
	Topics            uint64
}

// TopicInfo provides a minimal snapshot about a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
