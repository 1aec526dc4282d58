package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes every event to {prefix}.{generationId}.{type}.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher creates a publisher on an open connection.
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "generations"
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject for a run and event type. Use "*" as typ to
// match every type of a run.
func (p *NATSPublisher) Subject(generationID, typ string) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, generationID, typ)
}

func (p *NATSPublisher) Emit(_ context.Context, e Event) error {
	if e.GenerationID == "" {
		return fmt.Errorf("event %s has no generation id", e.Type)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	if err := p.nc.Publish(p.Subject(e.GenerationID, string(e.Type)), data); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

// Subscribe streams the events of one run until a terminal event arrives or
// ctx is done. The returned channel is closed when the stream ends.
func (p *NATSPublisher) Subscribe(ctx context.Context, generationID string) (<-chan Event, error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := p.nc.ChanSubscribe(p.Subject(generationID, "*"), msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() { _ = sub.Unsubscribe() }()
		for {
			select {
			case msg := <-msgs:
				var e Event
				if err := json.Unmarshal(msg.Data, &e); err != nil {
					continue
				}
				if e.GenerationID == "" {
					parts := strings.Split(msg.Subject, ".")
					if len(parts) >= 3 {
						e.GenerationID = parts[len(parts)-2]
					}
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
				if e.Terminal() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
