package dedupe

import (
	"reflect"
	"testing"

	"github.com/labanca/listero/internal/parser"
	"github.com/labanca/listero/internal/play"
)

func inst(typ play.Type, numbers ...string) parser.Instruction {
	return parser.Instruction{PlayType: typ, Numbers: numbers, AmountEach: 1, TotalAmount: len(numbers)}
}

func TestFindConflicts_WithinBatch(t *testing.T) {
	insts := []parser.Instruction{
		inst(play.Fijo, "12", "34"),
		inst(play.Fijo, "34", "12"), // same set, different raw order
	}

	got := FindConflicts(insts, []string{"H1"}, "maria", nil)

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(got))
	}
	c := got[0]
	if c.Reason != WithinBatch {
		t.Errorf("reason = %s, want %s", c.Reason, WithinBatch)
	}
	if !reflect.DeepEqual(c.Numbers, []string{"12", "34"}) {
		t.Errorf("numbers = %v, want sorted canonical set", c.Numbers)
	}
}

func TestFindConflicts_WithinBatchReportedOnce(t *testing.T) {
	insts := []parser.Instruction{
		inst(play.Fijo, "12"),
		inst(play.Fijo, "12"),
		inst(play.Fijo, "12"),
	}

	got := FindConflicts(insts, []string{"H1"}, "", nil)
	if len(got) != 1 {
		t.Errorf("triple repeat should report one conflict, got %d", len(got))
	}
}

func TestFindConflicts_AgainstExisting(t *testing.T) {
	existing := []ExistingBet{
		{ScheduleID: "H1", PlayType: play.Parle, Numbers: []string{"3412"}, Note: " Maria "},
	}
	insts := []parser.Instruction{inst(play.Parle, "1234")}

	got := FindConflicts(insts, []string{"H1"}, "maria", existing)

	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
	if got[0].Reason != AgainstExisting {
		t.Errorf("reason = %s, want %s", got[0].Reason, AgainstExisting)
	}
	if !reflect.DeepEqual(got[0].Numbers, []string{"1234"}) {
		t.Errorf("numbers = %v, want canonical [1234]", got[0].Numbers)
	}
}

func TestFindConflicts_NoteDistinguishes(t *testing.T) {
	existing := []ExistingBet{
		{ScheduleID: "H1", PlayType: play.Fijo, Numbers: []string{"12"}, Note: "maria"},
	}
	insts := []parser.Instruction{inst(play.Fijo, "12")}

	if got := FindConflicts(insts, []string{"H1"}, "pedro", existing); len(got) != 0 {
		t.Errorf("different note must not conflict, got %v", got)
	}
}

func TestFindConflicts_PartialOverlapIsNotAConflict(t *testing.T) {
	existing := []ExistingBet{
		{ScheduleID: "H1", PlayType: play.Fijo, Numbers: []string{"12", "34"}, Note: ""},
	}
	insts := []parser.Instruction{inst(play.Fijo, "12", "34", "56")}

	if got := FindConflicts(insts, []string{"H1"}, "", existing); len(got) != 0 {
		t.Errorf("superset must not conflict, got %v", got)
	}
}

func TestFindConflicts_PerSchedule(t *testing.T) {
	existing := []ExistingBet{
		{ScheduleID: "H2", PlayType: play.Fijo, Numbers: []string{"12"}, Note: ""},
	}
	insts := []parser.Instruction{inst(play.Fijo, "12")}

	got := FindConflicts(insts, []string{"H1", "H2"}, "", existing)

	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
	if got[0].ScheduleID != "H2" {
		t.Errorf("schedule = %s, want H2", got[0].ScheduleID)
	}
}

func TestFindConflicts_DifferentPlayTypesDoNotConflict(t *testing.T) {
	existing := []ExistingBet{
		{ScheduleID: "H1", PlayType: play.Corrido, Numbers: []string{"12"}, Note: ""},
	}
	insts := []parser.Instruction{inst(play.Fijo, "12")}

	if got := FindConflicts(insts, []string{"H1"}, "", existing); len(got) != 0 {
		t.Errorf("play types must be isolated, got %v", got)
	}
}

func TestFindConflicts_CleanBatch(t *testing.T) {
	insts := []parser.Instruction{
		inst(play.Fijo, "12", "34"),
		inst(play.Corrido, "12", "34"),
	}

	if got := FindConflicts(insts, []string{"H1", "H2"}, "x", nil); len(got) != 0 {
		t.Errorf("expected no conflicts, got %v", got)
	}
}
