package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/labanca/listero/pkg/model"
)

type mockJetStream struct {
	published []*nats.Msg
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

func testTicket() model.Ticket {
	return model.Ticket{
		ID:          uuid.New(),
		ListeroID:   "listero-1",
		ScheduleIDs: []string{"H1"},
		Bets: []model.Bet{
			{TotalAmount: 15},
			{TotalAmount: 9},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestPublishTicketAccepted(t *testing.T) {
	js := &mockJetStream{}
	p := &Publisher{js: js, logger: zap.NewNop(), subject: "evt.listero.tickets", service: "listero-service"}

	ticket := testTicket()
	if err := p.PublishTicketAccepted(context.Background(), ticket); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(js.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(js.published))
	}
	msg := js.published[0]
	if msg.Subject != "evt.listero.tickets" {
		t.Errorf("subject = %s", msg.Subject)
	}
	if got := msg.Header.Get("event_type"); got != model.EventTicketAccepted {
		t.Errorf("event_type header = %s", got)
	}

	var env model.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.CorrelationID != ticket.ID {
		t.Errorf("correlation id = %s, want ticket id %s", env.CorrelationID, ticket.ID)
	}

	var payload model.TicketAccepted
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.BetCount != 2 || payload.TotalAmount != 24 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestPublishTicketAccepted_PublishError(t *testing.T) {
	p := &Publisher{js: &mockJetStream{fail: true}, logger: zap.NewNop(), subject: "s", service: "svc"}

	if err := p.PublishTicketAccepted(context.Background(), testTicket()); err == nil {
		t.Fatal("expected error")
	}
}
