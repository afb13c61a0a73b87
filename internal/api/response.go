package api

import (
	"github.com/labanca/listero/internal/ticket"
)

// InstructionResponse mirrors one parsed bet instruction.
type InstructionResponse struct {
	PlayType         string   `json:"playType"`
	Numbers          []string `json:"numbers"`
	AmountEach       int      `json:"amountEach"`
	TotalAmount      int      `json:"totalAmount"`
	SourceLine       int      `json:"sourceLine"`
	DuplicateNumbers []string `json:"duplicateNumbers,omitempty"`
}

type ParseErrorResponse struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ViolationResponse struct {
	Number       string `json:"number"`
	PlayType     string `json:"playType"`
	Allowed      int    `json:"allowed"`
	AlreadyUsed  int    `json:"alreadyUsed"`
	AttemptedAdd int    `json:"attemptedAdd"`
}

type ConflictResponse struct {
	ScheduleID string   `json:"scheduleId"`
	PlayType   string   `json:"playType"`
	Numbers    []string `json:"numbers"`
	Reason     string   `json:"reason"`
}

// ReviewResponse carries every diagnostic of a preview or rejected submit.
type ReviewResponse struct {
	Clean        bool                  `json:"clean"`
	Instructions []InstructionResponse `json:"instructions"`
	ParseErrors  []ParseErrorResponse  `json:"parseErrors,omitempty"`
	Violations   []ViolationResponse   `json:"violations,omitempty"`
	Conflicts    []ConflictResponse    `json:"conflicts,omitempty"`
}

// TicketResponse is returned on an accepted submission.
type TicketResponse struct {
	TicketID    string `json:"ticketId"`
	BetCount    int    `json:"betCount"`
	TotalAmount int    `json:"totalAmount"`
}

func toReviewResponse(rev ticket.Review) ReviewResponse {
	out := ReviewResponse{
		Clean:        rev.Clean(),
		Instructions: make([]InstructionResponse, 0, len(rev.Instructions)),
	}
	for _, in := range rev.Instructions {
		out.Instructions = append(out.Instructions, InstructionResponse{
			PlayType:         string(in.PlayType),
			Numbers:          in.Numbers,
			AmountEach:       in.AmountEach,
			TotalAmount:      in.TotalAmount,
			SourceLine:       in.SourceLine,
			DuplicateNumbers: in.DuplicateNumbers,
		})
	}
	for _, e := range rev.ParseErrors {
		out.ParseErrors = append(out.ParseErrors, ParseErrorResponse{Line: e.Line, Message: e.Message})
	}
	for _, v := range rev.Violations {
		out.Violations = append(out.Violations, ViolationResponse{
			Number:       v.Number,
			PlayType:     string(v.PlayType),
			Allowed:      v.Allowed,
			AlreadyUsed:  v.AlreadyUsed,
			AttemptedAdd: v.AttemptedAdd,
		})
	}
	for _, c := range rev.Conflicts {
		out.Conflicts = append(out.Conflicts, ConflictResponse{
			ScheduleID: c.ScheduleID,
			PlayType:   string(c.PlayType),
			Numbers:    c.Numbers,
			Reason:     string(c.Reason),
		})
	}
	return out
}
