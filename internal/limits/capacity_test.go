package limits

import (
	"testing"

	"github.com/labanca/listero/internal/play"
)

func findEntry(entries []CapacityEntry, sid string, typ play.Type, number string) *CapacityEntry {
	for i := range entries {
		e := &entries[i]
		if e.ScheduleID == sid && e.PlayType == typ && e.Number == number {
			return e
		}
	}
	return nil
}

func TestCapacity_SynthesizesTwoDigitSpace(t *testing.T) {
	ctx := Context{Specific: map[play.Type]int{play.Fijo: 100}}

	got := Capacity([]string{"H1"}, ctx)

	if len(got) != 100 {
		t.Fatalf("expected full 00-99 space, got %d entries", len(got))
	}
	e := findEntry(got, "H1", play.Fijo, "00")
	if e == nil {
		t.Fatal("missing entry for 00")
	}
	if e.Limit != 100 || e.Used != 0 || e.PercentUsed != 0 {
		t.Errorf("zero-usage entry wrong: %+v", e)
	}
}

func TestCapacity_SynthesizesThreeDigitSpace(t *testing.T) {
	ctx := Context{Specific: map[play.Type]int{play.Centena: 50}}

	got := Capacity([]string{"H1"}, ctx)

	if len(got) != 1000 {
		t.Fatalf("expected full 000-999 space, got %d entries", len(got))
	}
}

func TestCapacity_ParleSpaceNotEnumerated(t *testing.T) {
	usedKey := Key{ScheduleID: "H1", PlayType: play.Parle, Number: "1020"}
	ctx := Context{
		Specific: map[play.Type]int{play.Parle: 200},
		Usage:    map[Key]int{usedKey: 50},
	}

	got := Capacity([]string{"H1"}, ctx)

	// Only the key with usage appears; no 10000-entry enumeration.
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Number != "1020" || got[0].PercentUsed != 25 {
		t.Errorf("entry wrong: %+v", got[0])
	}
}

func TestCapacity_PercentCappedAt100(t *testing.T) {
	key := Key{ScheduleID: "H1", PlayType: play.Fijo, Number: "07"}
	ctx := Context{
		PerNumber: map[Key]int{key: 100},
		Usage:     map[Key]int{key: 250},
	}

	got := Capacity([]string{"H1"}, ctx)
	e := findEntry(got, "H1", play.Fijo, "07")
	if e == nil {
		t.Fatal("missing entry")
	}
	if e.PercentUsed != 100 {
		t.Errorf("percent = %v, want capped at 100", e.PercentUsed)
	}
}

func TestCapacity_NoLimitShowsZeroPercent(t *testing.T) {
	key := Key{ScheduleID: "H1", PlayType: play.Tripleta, Number: "123456"}
	ctx := Context{Usage: map[Key]int{key: 500}}

	got := Capacity([]string{"H1"}, ctx)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].PercentUsed != 0 || got[0].Limit != 0 {
		t.Errorf("unlimited entry should report 0%%: %+v", got[0])
	}
}

func TestCapacity_PerNumberLimitBindsOverSpecific(t *testing.T) {
	key := Key{ScheduleID: "H1", PlayType: play.Fijo, Number: "07"}
	ctx := Context{
		Specific:  map[play.Type]int{play.Fijo: 100},
		PerNumber: map[Key]int{key: 40},
		Usage:     map[Key]int{key: 20},
	}

	got := Capacity([]string{"H1"}, ctx)
	e := findEntry(got, "H1", play.Fijo, "07")
	if e == nil {
		t.Fatal("missing entry")
	}
	if e.Limit != 40 || e.PercentUsed != 50 {
		t.Errorf("entry wrong: %+v", e)
	}
}

func TestCapacity_IgnoresOtherSchedules(t *testing.T) {
	ctx := Context{
		PerNumber: map[Key]int{
			{ScheduleID: "H9", PlayType: play.Fijo, Number: "07"}: 40,
		},
	}

	if got := Capacity([]string{"H1"}, ctx); len(got) != 0 {
		t.Errorf("expected no entries for unrelated schedule, got %v", got)
	}
}

func TestCapacity_DeterministicOrder(t *testing.T) {
	ctx := Context{
		PerNumber: map[Key]int{
			{ScheduleID: "H2", PlayType: play.Fijo, Number: "05"}:    10,
			{ScheduleID: "H1", PlayType: play.Parle, Number: "1020"}: 10,
			{ScheduleID: "H1", PlayType: play.Fijo, Number: "99"}:    10,
			{ScheduleID: "H1", PlayType: play.Fijo, Number: "01"}:    10,
		},
	}

	got := Capacity([]string{"H1", "H2"}, ctx)

	wantOrder := []Key{
		{"H1", play.Fijo, "01"},
		{"H1", play.Fijo, "99"},
		{"H1", play.Parle, "1020"},
		{"H2", play.Fijo, "05"},
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(got))
	}
	for i, k := range wantOrder {
		if got[i].ScheduleID != k.ScheduleID || got[i].PlayType != k.PlayType || got[i].Number != k.Number {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], k)
		}
	}
}
