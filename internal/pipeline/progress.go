package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

// emitter serializes events onto a sink. Phase numbers and percentages
// never decrease, even when per-item progress arrives from several
// goroutines.
type emitter struct {
	mu      sync.Mutex
	sink    events.Sink
	id      string
	logger  *logging.Logger
	phase   int
	percent int
}

func newEmitter(sink events.Sink, id string, logger *logging.Logger) *emitter {
	if sink == nil {
		sink = events.Discard
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &emitter{sink: sink, id: id, logger: logger}
}

// progress reports a position inside phase n.
func (e *emitter) progress(ctx context.Context, n int, frac float64, step, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < e.phase {
		n = e.phase
	}
	pct := percent(n, frac)
	if pct < e.percent {
		pct = e.percent
	}
	e.phase, e.percent = n, pct

	e.send(ctx, events.Event{
		Type:         events.TypeProgress,
		GenerationID: e.id,
		Progress: &events.Progress{
			Phase:       n,
			PhaseName:   PhaseName(n),
			CurrentStep: step,
			Progress:    pct,
			Message:     msg,
		},
	})
}

// emit delivers a non-progress event.
func (e *emitter) emit(ctx context.Context, ev events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ctx, ev)
}

// send must be called with mu held. Delivery is one-way: sink errors are
// logged and dropped.
func (e *emitter) send(ctx context.Context, ev events.Event) {
	if err := e.sink.Emit(ctx, ev); err != nil {
		e.logger.Debug(ctx, "progress event dropped",
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}
