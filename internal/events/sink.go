package events

import (
	"context"
	"errors"
	"sync"
)

// Sink receives events. Emit must not be called concurrently with itself
// for the same run unless the implementation says so.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// FuncSink adapts a function.
type FuncSink func(ctx context.Context, e Event) error

func (f FuncSink) Emit(ctx context.Context, e Event) error { return f(ctx, e) }

// Discard drops every event.
var Discard Sink = FuncSink(func(context.Context, Event) error { return nil })

// ChannelSink delivers events on a channel. Emit blocks until the event is
// taken or ctx is done.
type ChannelSink struct {
	C chan Event
}

// NewChannelSink creates a sink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, e Event) error {
	select {
	case s.C <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiSink emits to every sink in order and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every event, for tests and history.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what was recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
