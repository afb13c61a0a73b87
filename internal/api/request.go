package api

// TicketRequest is the payload for both previewing and submitting a batch
// of shorthand bet lines.
type TicketRequest struct {
	ListeroID   string   `json:"listeroId" example:"listero-001"`
	ScheduleIDs []string `json:"scheduleIds" example:"florida-noon"`
	Note        string   `json:"note,omitempty" example:"maria"`
	Text        string   `json:"text" example:"10.20.30 con 5f 3c"`
}
