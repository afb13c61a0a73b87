// Package model holds the canonical records shared between the ticket
// service, the store and the event publisher.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/labanca/listero/internal/play"
)

// Bet is one persisted wager: a set of numbers of a single play type priced
// at AmountEach, bound to one schedule.
type Bet struct {
	ID          uuid.UUID `json:"id"`
	TicketID    uuid.UUID `json:"ticket_id"`
	ListeroID   string    `json:"listero_id"`
	ScheduleID  string    `json:"schedule_id"`
	PlayType    play.Type `json:"play_type"`
	Numbers     []string  `json:"numbers"` // zero-padded digit strings
	AmountEach  int       `json:"amount_each"`
	TotalAmount int       `json:"total_amount"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ticket groups the bets of one accepted submission. Persistence of a
// ticket is all-or-nothing: either every bet row lands or none do.
type Ticket struct {
	ID          uuid.UUID `json:"id"`
	ListeroID   string    `json:"listero_id"`
	ScheduleIDs []string  `json:"schedule_ids"`
	Note        string    `json:"note,omitempty"`
	Bets        []Bet     `json:"bets"`
	CreatedAt   time.Time `json:"created_at"`
}

// TotalAmount sums the total wagered across all bets of the ticket.
func (t Ticket) TotalAmount() int {
	sum := 0
	for _, b := range t.Bets {
		sum += b.TotalAmount
	}
	return sum
}
