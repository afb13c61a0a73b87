package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/limits"
	"github.com/labanca/listero/internal/rate"
	"github.com/labanca/listero/internal/ticket"
	"github.com/labanca/listero/pkg/model"
)

// TicketService defines the ticket operations the handler depends on.
type TicketService interface {
	Preview(ctx context.Context, sub ticket.Submission) (ticket.Review, error)
	Submit(ctx context.Context, sub ticket.Submission) (*model.Ticket, ticket.Review, error)
	Capacity(ctx context.Context, scheduleIDs []string, listeroID string) ([]limits.CapacityEntry, error)
}

// TicketHandler handles HTTP requests for ticket preview, submission and
// the capacity view.
type TicketHandler struct {
	logger  *zap.Logger
	service TicketService
	limiter *rate.Manager
}

// NewTicketHandler creates a new TicketHandler.
// limiter is optional — if nil, submissions are not throttled.
func NewTicketHandler(logger *zap.Logger, service TicketService, limiter *rate.Manager) *TicketHandler {
	return &TicketHandler{
		logger:  logger,
		service: service,
		limiter: limiter,
	}
}

// PreviewHandler runs the full check cycle without persisting.
func (h *TicketHandler) PreviewHandler(c *fiber.Ctx) error {
	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rev, err := h.service.Preview(c.Context(), toSubmission(req))
	if err != nil {
		h.logger.Error("api.preview_failed",
			zap.String("listero_id", req.ListeroID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "preview failed"})
	}

	return c.JSON(toReviewResponse(rev))
}

// SubmitHandler submits a batch; it persists iff the review is clean.
func (h *TicketHandler) SubmitHandler(c *fiber.Ctx) error {
	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if h.limiter != nil && !h.limiter.Allow(req.ListeroID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many submissions"})
	}

	t, rev, err := h.service.Submit(c.Context(), toSubmission(req))
	if err != nil {
		h.logger.Error("api.submit_failed",
			zap.String("listero_id", req.ListeroID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "submit failed"})
	}
	if t == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(toReviewResponse(rev))
	}

	return c.Status(fiber.StatusCreated).JSON(TicketResponse{
		TicketID:    t.ID.String(),
		BetCount:    len(t.Bets),
		TotalAmount: t.TotalAmount(),
	})
}

// CapacityHandler returns the display-only percentage-used view.
func (h *TicketHandler) CapacityHandler(c *fiber.Ctx) error {
	listeroID := strings.TrimSpace(c.Query("listeroId"))
	if listeroID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "listeroId is required"})
	}
	scheduleIDs := splitQueryList(c.Query("scheduleIds"))
	if len(scheduleIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduleIds is required"})
	}

	entries, err := h.service.Capacity(c.Context(), scheduleIDs, listeroID)
	if err != nil {
		h.logger.Error("api.capacity_failed",
			zap.String("listero_id", listeroID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "capacity lookup failed"})
	}

	return c.JSON(fiber.Map{"entries": entries})
}

func toSubmission(req TicketRequest) ticket.Submission {
	return ticket.Submission{
		ListeroID:   req.ListeroID,
		ScheduleIDs: req.ScheduleIDs,
		Note:        req.Note,
		Text:        req.Text,
	}
}

func splitQueryList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
