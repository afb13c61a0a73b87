package api

import (
	"testing"
)

func TestTicketRequest_Validate(t *testing.T) {
	valid := TicketRequest{
		ListeroID:   "listero-1",
		ScheduleIDs: []string{"florida-noon"},
		Note:        "maria",
		Text:        "10.20 con 5f",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(r *TicketRequest)
		wantErr string
	}{
		{
			name:    "missing listeroId",
			mutate:  func(r *TicketRequest) { r.ListeroID = "" },
			wantErr: "listeroId is required",
		},
		{
			name:    "whitespace listeroId",
			mutate:  func(r *TicketRequest) { r.ListeroID = "   " },
			wantErr: "listeroId is required",
		},
		{
			name:    "no schedules",
			mutate:  func(r *TicketRequest) { r.ScheduleIDs = nil },
			wantErr: "at least one scheduleId is required",
		},
		{
			name:    "blank schedule entry",
			mutate:  func(r *TicketRequest) { r.ScheduleIDs = []string{"florida-noon", " "} },
			wantErr: "scheduleIds must not contain blank entries",
		},
		{
			name:    "missing text",
			mutate:  func(r *TicketRequest) { r.Text = "" },
			wantErr: "text is required",
		},
		{
			name:   "note is optional",
			mutate: func(r *TicketRequest) { r.Note = "" },
		},
		{
			name:   "multiple schedules accepted",
			mutate: func(r *TicketRequest) { r.ScheduleIDs = []string{"a", "b"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid // copy
			tt.mutate(&r)
			err := r.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
