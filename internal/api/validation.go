package api

import (
	"fmt"
	"strings"
)

func (r TicketRequest) Validate() error {
	if strings.TrimSpace(r.ListeroID) == "" {
		return fmt.Errorf("listeroId is required")
	}
	if len(r.ScheduleIDs) == 0 {
		return fmt.Errorf("at least one scheduleId is required")
	}
	for _, sid := range r.ScheduleIDs {
		if strings.TrimSpace(sid) == "" {
			return fmt.Errorf("scheduleIds must not contain blank entries")
		}
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}
