package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventEnvelopeBuilder struct {
	envelope *EventEnvelope
	err      error
}

func NewEventEnvelopeBuilder() *EventEnvelopeBuilder {
	return &EventEnvelopeBuilder{
		envelope: &EventEnvelope{},
	}
}

func (b *EventEnvelopeBuilder) WithID(id string) *EventEnvelopeBuilder {
	b.envelope.ID = id
	return b
}

func (b *EventEnvelopeBuilder) WithSource(source string) *EventEnvelopeBuilder {
	b.envelope.Source = source
	return b
}

func (b *EventEnvelopeBuilder) WithType(eventType string) *EventEnvelopeBuilder {
	b.envelope.Type = eventType
	return b
}

func (b *EventEnvelopeBuilder) WithTimestamp(timestamp time.Time) *EventEnvelopeBuilder {
	b.envelope.Timestamp = timestamp
	return b
}

// WithPayload stores v as JSON. A marshal failure is reported by Build.
func (b *EventEnvelopeBuilder) WithPayload(v interface{}) *EventEnvelopeBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("failed to marshal payload: %w", err)
		return b
	}
	b.envelope.Payload = data
	return b
}

func (b *EventEnvelopeBuilder) WithTraceID(traceID string) *EventEnvelopeBuilder {
	b.envelope.Metadata.TraceID = traceID
	return b
}

func (b *EventEnvelopeBuilder) WithRequestID(requestID string) *EventEnvelopeBuilder {
	b.envelope.Metadata.RequestID = requestID
	return b
}

// Build fills in a random id and the current time when unset and validates
// the result.
func (b *EventEnvelopeBuilder) Build() (*EventEnvelope, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.envelope.ID == "" {
		b.envelope.ID = uuid.New().String()
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now().UTC()
	}
	if err := ValidateEventEnvelope(b.envelope); err != nil {
		return nil, err
	}
	return b.envelope, nil
}
