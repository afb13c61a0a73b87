// Package ticket orchestrates the parse → dedupe → validate → persist
// cycle for a batch of shorthand bet lines.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/dedupe"
	"github.com/labanca/listero/internal/limits"
	"github.com/labanca/listero/internal/metrics"
	"github.com/labanca/listero/internal/parser"
	"github.com/labanca/listero/internal/store"
	"github.com/labanca/listero/pkg/model"
)

// Store is the slice of the persistence layer the service needs.
type Store interface {
	LoadLimitContext(ctx context.Context, scheduleIDs []string, listeroID string) (limits.Context, error)
	LoadExistingBets(ctx context.Context, scheduleIDs []string, listeroID string) ([]dedupe.ExistingBet, error)
	SaveTicket(ctx context.Context, t model.Ticket) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
}

// EventPublisher emits events for accepted tickets.
type EventPublisher interface {
	PublishTicketAccepted(ctx context.Context, t model.Ticket) error
}

// Service wires the pure core components to the persistence and event
// collaborators.
type Service struct {
	logger      *zap.Logger
	store       Store
	publisher   EventPublisher
	capacityTTL time.Duration
}

// NewService constructs the ticket service. publisher may be nil when
// event publishing is disabled.
func NewService(logger *zap.Logger, st Store, pub EventPublisher, capacityTTL time.Duration) *Service {
	return &Service{logger: logger, store: st, publisher: pub, capacityTTL: capacityTTL}
}

// Submission is one batch of shorthand lines entered by a listero.
type Submission struct {
	ListeroID   string
	ScheduleIDs []string
	Note        string
	Text        string
}

// Review is everything a submission was checked against. A non-empty field
// blocks the whole batch; there is no partial acceptance.
type Review struct {
	Instructions []parser.Instruction
	ParseErrors  []parser.LineError
	Violations   []limits.Violation
	Conflicts    []dedupe.Conflict
}

// Clean reports whether the submission may be persisted.
func (r Review) Clean() bool {
	return len(r.ParseErrors) == 0 && len(r.Violations) == 0 && len(r.Conflicts) == 0
}

// Preview runs the full check cycle without persisting anything.
func (s *Service) Preview(ctx context.Context, sub Submission) (Review, error) {
	start := time.Now()
	defer metrics.ObserveDuration(metrics.SubmitDuration, start, "preview")
	return s.review(ctx, sub)
}

func (s *Service) review(ctx context.Context, sub Submission) (Review, error) {
	var rev Review

	res := parser.Parse(sub.Text)
	rev.Instructions = res.Instructions
	rev.ParseErrors = res.Errors

	limitCtx, err := s.store.LoadLimitContext(ctx, sub.ScheduleIDs, sub.ListeroID)
	if err != nil {
		metrics.IncError("ticket", "load_limit_context")
		return rev, fmt.Errorf("load limit context: %w", err)
	}
	existing, err := s.store.LoadExistingBets(ctx, sub.ScheduleIDs, sub.ListeroID)
	if err != nil {
		metrics.IncError("ticket", "load_existing_bets")
		return rev, fmt.Errorf("load existing bets: %w", err)
	}

	rev.Conflicts = dedupe.FindConflicts(res.Instructions, sub.ScheduleIDs, sub.Note, existing)
	rev.Violations = limits.Validate(res.Instructions, sub.ScheduleIDs, limitCtx)

	metrics.AddDiagnostics("parse_error", len(rev.ParseErrors))
	metrics.AddDiagnostics("limit_violation", len(rev.Violations))
	metrics.AddDiagnostics("duplicate_conflict", len(rev.Conflicts))
	return rev, nil
}

// Submit checks the submission and, when the review comes back clean,
// persists one ticket with a bet row per (schedule, instruction) pair.
// A rejected submission returns a nil ticket and the full review.
func (s *Service) Submit(ctx context.Context, sub Submission) (*model.Ticket, Review, error) {
	start := time.Now()
	defer metrics.ObserveDuration(metrics.SubmitDuration, start, "submit")

	rev, err := s.review(ctx, sub)
	if err != nil {
		metrics.IncTicket("error")
		return nil, rev, err
	}
	if !rev.Clean() {
		s.logger.Info("ticket.rejected",
			zap.String("listero_id", sub.ListeroID),
			zap.Int("parse_errors", len(rev.ParseErrors)),
			zap.Int("violations", len(rev.Violations)),
			zap.Int("conflicts", len(rev.Conflicts)))
		metrics.IncTicket("rejected")
		return nil, rev, nil
	}
	if len(rev.Instructions) == 0 {
		metrics.IncTicket("rejected")
		return nil, rev, errors.New("empty submission")
	}

	t := buildTicket(sub, rev.Instructions)
	if err := s.store.SaveTicket(ctx, t); err != nil {
		metrics.IncTicket("error")
		return nil, rev, fmt.Errorf("save ticket: %w", err)
	}
	metrics.IncTicket("accepted")

	// The ticket is already durable; a lost event must not fail the submit.
	if s.publisher != nil {
		if err := s.publisher.PublishTicketAccepted(ctx, t); err != nil {
			s.logger.Error("ticket.publish_failed",
				zap.String("ticket_id", t.ID.String()),
				zap.Error(err))
			metrics.IncError("ticket", "publish_failed")
		}
	}

	s.logger.Info("ticket.accepted",
		zap.String("ticket_id", t.ID.String()),
		zap.String("listero_id", sub.ListeroID),
		zap.Int("bets", len(t.Bets)),
		zap.Int("total", t.TotalAmount()))
	return &t, rev, nil
}

// Capacity returns the display-only percentage-used view, cached in Redis
// for a short TTL.
func (s *Service) Capacity(ctx context.Context, scheduleIDs []string, listeroID string) ([]limits.CapacityEntry, error) {
	key := capacityKey(scheduleIDs, listeroID)

	var cached []limits.CapacityEntry
	err := s.store.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		// Cache trouble is not fatal for a read-only view.
		s.logger.Warn("ticket.capacity_cache_read_failed", zap.Error(err))
	}

	limitCtx, err := s.store.LoadLimitContext(ctx, scheduleIDs, listeroID)
	if err != nil {
		metrics.IncError("ticket", "load_limit_context")
		return nil, fmt.Errorf("load limit context: %w", err)
	}
	entries := limits.Capacity(scheduleIDs, limitCtx)

	if err := s.store.SetJSON(ctx, key, entries, s.capacityTTL); err != nil {
		s.logger.Warn("ticket.capacity_cache_write_failed", zap.Error(err))
	}
	return entries, nil
}

func capacityKey(scheduleIDs []string, listeroID string) string {
	return "capacity:" + listeroID + ":" + strings.Join(scheduleIDs, ",")
}

func buildTicket(sub Submission, insts []parser.Instruction) model.Ticket {
	now := time.Now().UTC()
	t := model.Ticket{
		ID:          uuid.New(),
		ListeroID:   sub.ListeroID,
		ScheduleIDs: sub.ScheduleIDs,
		Note:        sub.Note,
		CreatedAt:   now,
	}
	for _, sid := range sub.ScheduleIDs {
		for _, in := range insts {
			t.Bets = append(t.Bets, model.Bet{
				ID:          uuid.New(),
				TicketID:    t.ID,
				ListeroID:   sub.ListeroID,
				ScheduleID:  sid,
				PlayType:    in.PlayType,
				Numbers:     in.Numbers,
				AmountEach:  in.AmountEach,
				TotalAmount: in.TotalAmount,
				Note:        sub.Note,
				CreatedAt:   now,
			})
		}
	}
	return t
}
