package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "MESSAGE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// envelope is the wire form shared by the in-process bus and NATS.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// Encode serializes an event with its type and time so consumers can rebuild it.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(envelope{
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Data:       e.Payload(),
	})
}

// Decode is the inverse of Encode.
func Decode(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
