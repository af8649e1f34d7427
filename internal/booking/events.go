package booking

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	EventReservationCreated   = "ReservationCreated"
	EventReservationCancelled = "ReservationCancelled"
)

const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationCancelled = "reservation.cancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // room id
	Payload       json.RawMessage `json:"payload"`
}

type ReservationCreatedPayload struct {
	Reservation Reservation `json:"reservation"`
	Message     string      `json:"message"`
}

type ReservationCancelledPayload struct {
	RoomID  int    `json:"room_id,omitempty"`
	Ref     string `json:"ref,omitempty"`
	Removed int    `json:"removed"`
}

// PartitionKey keeps every event of one room on the same partition.
func PartitionKey(roomID int) []byte { return []byte(strconv.Itoa(roomID)) }
