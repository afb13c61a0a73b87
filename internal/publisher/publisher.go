// Package publisher emits canonical ticket events to NATS JetStream.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/metrics"
	"github.com/labanca/listero/pkg/model"
)

// jetStream is the slice of nats.JetStreamContext the publisher needs.
type jetStream interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher publishes canonical envelopes for accepted tickets.
type Publisher struct {
	js      jetStream
	logger  *zap.Logger
	subject string
	service string
}

// New creates a Publisher backed by the connection's JetStream context.
func New(nc *nats.Conn, logger *zap.Logger, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{js: js, logger: logger, subject: subject, service: service}, nil
}

// PublishTicketAccepted wraps the ticket in an envelope and publishes it.
func (p *Publisher) PublishTicketAccepted(ctx context.Context, t model.Ticket) error {
	payload, err := json.Marshal(model.TicketAccepted{
		TicketID:    t.ID,
		ListeroID:   t.ListeroID,
		ScheduleIDs: t.ScheduleIDs,
		BetCount:    len(t.Bets),
		TotalAmount: t.TotalAmount(),
		AcceptedAt:  t.CreatedAt,
	})
	if err != nil {
		return err
	}

	env := model.Envelope{
		ID:            uuid.New(),
		CorrelationID: t.ID,
		ListeroID:     t.ListeroID,
		EventType:     model.EventTicketAccepted,
		Version:       "1",
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
	return p.publish(env)
}

// PublishUsageRefreshed announces a completed daily usage rollup.
func (p *Publisher) PublishUsageRefreshed(ctx context.Context, refreshedAt time.Time, took time.Duration) error {
	payload, err := json.Marshal(model.UsageRefreshed{
		RefreshedAt: refreshedAt,
		Duration:    took.String(),
	})
	if err != nil {
		return err
	}

	env := model.Envelope{
		ID:        uuid.New(),
		EventType: model.EventUsageRefreshed,
		Version:   "1",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	return p.publish(env)
}

func (p *Publisher) publish(env model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("publisher.marshal_failed",
			zap.String("event_type", env.EventType),
			zap.Error(err))
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
			"listero_id":     []string{env.ListeroID},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, p.subject)

	if err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("event_type", env.EventType),
			zap.Error(err))
		metrics.IncNATSMessage(p.subject, "error")
		return err
	}

	p.logger.Info("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("event_type", env.EventType),
		zap.String("listero_id", env.ListeroID))

	metrics.IncNATSMessage(p.subject, "ok")
	return nil
}
