package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-menu-pricing/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Emitter wraps catalog changes in a v1 envelope and publishes them.
type Emitter struct {
	Producer Publisher
	Source   string
	Now      func() time.Time
}

func (e *Emitter) Emit(ctx context.Context, eventType, correlationID string, payload any) error {
	topic, ok := topics[eventType]
	if !ok {
		return fmt.Errorf("no topic for event type %q", eventType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    e.now().UTC(),
		Producer:      e.Source,
		TraceID:       traceID(ctx),
		CorrelationID: correlationID,
		Payload:       body,
	}
	e.Producer.Publish(topic, PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

func (e *Emitter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// traceID prefers the active span and falls back to the request id.
func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return middleware.GetReqID(ctx)
}
