package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"relay-service/internal/models"
	"relay-service/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

// EventEmitter wraps relay events into envelopes and publishes them under
// "<prefix>.<event type>" routing keys. Publishing never fails the caller.
type EventEmitter struct {
	publisher   Publisher
	prefix      string
	service     string
	environment string
}

type EventEnvelope struct {
	SchemaVersion int               `json:"schema_version"`
	EventType     string            `json:"event_type"`
	OccurredAt    string            `json:"occurred_at"`
	Service       string            `json:"service"`
	Environment   string            `json:"environment"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       models.RelayEvent `json:"payload"`
}

func NewEventEmitter(publisher Publisher, prefix, service, environment string) *EventEmitter {
	return &EventEmitter{
		publisher:   publisher,
		prefix:      prefix,
		service:     service,
		environment: environment,
	}
}

func (e *EventEmitter) Emit(ctx context.Context, event models.RelayEvent) {
	if e == nil || e.publisher == nil {
		return
	}

	traceID := observability.TraceID(ctx)
	envelope := EventEnvelope{
		SchemaVersion: 1,
		EventType:     event.Type,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		TraceID:       traceID,
		Payload:       event,
	}

	headers := map[string]string{}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	if err := e.publisher.Publish(ctx, e.prefix+"."+event.Type, envelope, headers); err != nil {
		observability.IncAMQPPublishError()
		log.Warn().Err(err).Str("event", event.Type).Msg("Relay event publish failed.")
	}
}
