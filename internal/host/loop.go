package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/systems"
)

var ErrInvalidFrames = errors.New("host: frame count must be positive")

// FrameHook runs after every successful registry tick.
type FrameHook func(tick uint64) error

// Loop drives a registry once per frame, either from a wall-clock ticker or headless.
type Loop struct {
	registry  *systems.Registry
	frameRate int
	maxDelta  float64
	logger    log.Log
	hooks     []FrameHook
	now       func() time.Time

	frames    uint64
	simulated float64
}

type Option func(*Loop)

func WithFrameRate(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.frameRate = fps
		}
	}
}

// WithMaxFrameDelta caps a measured frame delta, in seconds, so a stall does not
// turn into a burst of physics sub-steps.
func WithMaxFrameDelta(seconds float64) Option {
	return func(l *Loop) {
		if seconds > 0 {
			l.maxDelta = seconds
		}
	}
}

func WithLogger(lg log.Log) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

func WithFrameHook(h FrameHook) Option {
	return func(l *Loop) {
		if h != nil {
			l.hooks = append(l.hooks, h)
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

func NewLoop(r *systems.Registry, opts ...Option) *Loop {
	l := &Loop{
		registry:  r,
		frameRate: 60,
		maxDelta:  0.25,
		logger:    log.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("host")
	return l
}

// Frames is the number of completed frames.
func (l *Loop) Frames() uint64 { return l.frames }

// Simulated is the total delta, in seconds, fed to the registry.
func (l *Loop) Simulated() float64 { return l.simulated }

// Run ticks the registry at the configured frame rate with the measured frame delta.
// It returns nil when ctx is cancelled and the tick error when a frame aborts.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.frameRate))
	defer ticker.Stop()

	l.logger.Info("simulation started", log.Int("frame_rate", l.frameRate), log.Float64("max_frame_delta", l.maxDelta))
	last := l.now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("simulation stopped", log.Uint64("frames", l.frames), log.Float64("simulated", l.simulated))
			return nil
		case <-ticker.C:
			now := l.now()
			delta := l.clamp(now.Sub(last).Seconds())
			last = now
			if err := l.Step(delta); err != nil {
				return err
			}
		}
	}
}

// RunFrames runs n frames of fixed delta without waiting on a clock.
func (l *Loop) RunFrames(ctx context.Context, n int, delta float64) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrames, n)
	}
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Step(delta); err != nil {
			return err
		}
	}
	l.logger.Info("headless run finished", log.Uint64("frames", l.frames), log.Float64("simulated", l.simulated))
	return nil
}

// Step runs one registry tick and the frame hooks.
func (l *Loop) Step(delta float64) error {
	if err := l.registry.Update(delta); err != nil {
		l.logger.Error("frame aborted", log.Uint64("frame", l.frames), log.Error(err))
		return fmt.Errorf("frame %d: %w", l.frames, err)
	}
	l.frames++
	l.simulated += delta
	for _, h := range l.hooks {
		if err := h(l.registry.Ticks()); err != nil {
			return fmt.Errorf("frame %d hook: %w", l.frames, err)
		}
	}
	return nil
}

func (l *Loop) clamp(delta float64) float64 {
	switch {
	case delta < 0:
		return 0
	case delta > l.maxDelta:
		l.logger.Debug("frame delta clamped", log.Float64("delta", delta), log.Float64("max", l.maxDelta))
		return l.maxDelta
	default:
		return delta
	}
}
