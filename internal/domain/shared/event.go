package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to a backend record or to the local
// stock view. AggregateID is the backend id of the record that caused it.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64
	AggregateType() string
}

// EventHeader carries the fields every event shares. Concrete events embed it.
type EventHeader struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"occurred_at"`
	Aggregate string    `json:"aggregate_type"`
	RecordID  int64     `json:"aggregate_id"`
}

// NewEventHeader stamps a fresh id and the current time
func NewEventHeader(eventType, aggregateType string, recordID int64) EventHeader {
	return EventHeader{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: aggregateType,
		RecordID:  recordID,
	}
}

func (h *EventHeader) EventID() uuid.UUID { return h.ID }
func (h *EventHeader) EventType() string { return h.Type }
func (h *EventHeader) OccurredAt() time.Time { return h.At }
func (h *EventHeader) AggregateID() int64 { return h.RecordID }
func (h *EventHeader) AggregateType() string { return h.Aggregate }
