package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published to NATS.
const (
	EventTicketAccepted = "ticket.accepted.v1"
	EventUsageRefreshed = "usage.refreshed.v1"
)

// Envelope is the canonical event envelope. Every message published to
// NATS follows this format.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	ListeroID     string          `json:"listero_id,omitempty"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// TicketAccepted is the payload emitted after a ticket is persisted.
type TicketAccepted struct {
	TicketID    uuid.UUID `json:"ticket_id"`
	ListeroID   string    `json:"listero_id"`
	ScheduleIDs []string  `json:"schedule_ids"`
	BetCount    int       `json:"bet_count"`
	TotalAmount int       `json:"total_amount"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// UsageRefreshed is the payload emitted after the daily usage rollup is
// recomputed.
type UsageRefreshed struct {
	RefreshedAt time.Time `json:"refreshed_at"`
	Duration    string    `json:"duration"`
}
