package events

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-access/pkg/types"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.RWMutex
	events []types.Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

var _ types.EventSink = (*Recorder)(nil)

// Publish implements types.EventSink.
func (r *Recorder) Publish(_ context.Context, event types.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []types.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// SinkFunc adapts a function to types.EventSink.
type SinkFunc func(context.Context, types.Event) error

// Publish implements types.EventSink.
func (f SinkFunc) Publish(ctx context.Context, event types.Event) error {
	return f(ctx, event)
}

// Multi fans events out to every sink. All sinks are attempted and their
// errors are joined.
func Multi(sinks ...types.EventSink) types.EventSink {
	filtered := make([]types.EventSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return multiSink(filtered)
}

type multiSink []types.EventSink

func (m multiSink) Publish(ctx context.Context, event types.Event) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
