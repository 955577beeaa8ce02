package inspect

import (
	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems/physics"
)

// MessageFrame is the type of world snapshot messages.
const MessageFrame = "frame"

// Frame is a world snapshot taken after a registry tick.
type Frame struct {
	Tick        uint64              `json:"tick"`
	Steps       uint64              `json:"steps"`
	Digest      uint64              `json:"digest"`
	Accumulator float64             `json:"accumulator"`
	Bodies      []physics.BodyState `json:"bodies"`
}

// NewFrame captures the state of w after tick.
func NewFrame(tick uint64, w *physics.World) Frame {
	return Frame{
		Tick:        tick,
		Steps:       w.Steps(),
		Digest:      w.Digest(),
		Accumulator: w.Accumulator(),
		Bodies:      w.Snapshot(),
	}
}

func (h *Hub) PublishFrame(f Frame) error {
	return h.Broadcast(Message{Type: MessageFrame, Tick: f.Tick, Data: f})
}

// Follow forwards every event of topic to the observers.
// The tick of forwarded messages is the physics step when the payload carries one.
func (h *Hub) Follow(b bus.EventBus, topic string) (bus.Subscription, error) {
	return b.SubscribeTopic(topic, bus.Wildcard, func(e bus.Event) error {
		msg := Message{Type: e.Type(), Data: e.Data()}
		if ce, ok := e.Data().(physics.ContactEvent); ok {
			msg.Tick = ce.Step
		}
		if err := h.Broadcast(msg); err != nil {
			h.logger.Warn("forward event failed", log.String("type", e.Type()), log.Error(err))
			return err
		}
		return nil
	})
}
