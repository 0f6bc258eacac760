package accessibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pattern names a vibration cue
type Pattern string

const (
	Success      Pattern = "success"
	Error        Pattern = "error"
	Warning      Pattern = "warning"
	Notification Pattern = "notification"
	ButtonPress  Pattern = "button_press"
)

// ErrUnknownPattern is returned by ParsePattern for names outside the vocabulary
var ErrUnknownPattern = errors.New("unknown vibration pattern")

// pulses alternate on and off durations, starting with on
var pulses = map[Pattern][]time.Duration{
	Success:      ms(200, 100, 200),
	Error:        ms(500, 100, 500, 100, 500),
	Warning:      ms(300, 100, 300),
	Notification: ms(100, 50, 100, 50, 100),
	ButtonPress:  ms(50),
}

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

// ParsePattern maps a pattern name to a Pattern
func ParsePattern(name string) (Pattern, error) {
	p := Pattern(name)
	if _, ok := pulses[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return p, nil
}

// Pulses returns the pattern's durations
func (p Pattern) Pulses() []time.Duration {
	return append([]time.Duration(nil), pulses[p]...)
}

// Vibrator plays a pulse sequence on some physical device
type Vibrator interface {
	Vibrate(ctx context.Context, pulses []time.Duration) error
}

// Feedback delivers haptic cues without blocking the caller. Cues go onto a
// bounded queue drained by a single worker; when the queue is full or
// feedback is disabled the cue is dropped.
type Feedback struct {
	vibrator Vibrator
	tasks    chan Pattern
	enabled  atomic.Bool
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFeedback starts the feedback worker. Feedback starts enabled.
func NewFeedback(vibrator Vibrator, queueSize int) *Feedback {
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feedback{
		vibrator: vibrator,
		tasks:    make(chan Pattern, queueSize),
		timeout:  10 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
	}
	f.enabled.Store(true)

	f.wg.Add(1)
	go f.run()
	return f
}

func (f *Feedback) run() {
	defer f.wg.Done()
	for {
		select {
		case <-f.ctx.Done():
			return
		case p := <-f.tasks:
			ctx, cancel := context.WithTimeout(f.ctx, f.timeout)
			if err := f.vibrator.Vibrate(ctx, pulses[p]); err != nil {
				slog.Warn("Vibration failed", "pattern", p, "error", err)
			}
			cancel()
		}
	}
}

// SetEnabled turns feedback on or off
func (f *Feedback) SetEnabled(enabled bool) {
	f.enabled.Store(enabled)
}

// Enabled reports whether cues are being delivered
func (f *Feedback) Enabled() bool {
	return f.enabled.Load()
}

// Vibrate queues a cue and reports whether it was accepted
func (f *Feedback) Vibrate(p Pattern) bool {
	if !f.enabled.Load() || f.ctx.Err() != nil {
		return false
	}
	select {
	case f.tasks <- p:
		return true
	default:
		slog.Warn("Haptic queue full, dropping cue", "pattern", p)
		return false
	}
}

func (f *Feedback) Success() bool      { return f.Vibrate(Success) }
func (f *Feedback) Error() bool        { return f.Vibrate(Error) }
func (f *Feedback) Warning() bool      { return f.Vibrate(Warning) }
func (f *Feedback) Notification() bool { return f.Vibrate(Notification) }
func (f *Feedback) ButtonPress() bool  { return f.Vibrate(ButtonPress) }

// Close stops the worker, interrupting any cue in progress. Queued cues are
// discarded.
func (f *Feedback) Close() error {
	f.cancel()
	f.wg.Wait()
	return nil
}
