// Package dedupe flags exact resubmissions of a bet, both within a batch
// and against bets already persisted for the same day.
package dedupe

import (
	"sort"
	"strings"

	"github.com/labanca/listero/internal/parser"
	"github.com/labanca/listero/internal/play"
)

// Reason tells which side of the comparison produced a conflict.
type Reason string

const (
	WithinBatch     Reason = "within-batch"
	AgainstExisting Reason = "against-existing"
)

// ExistingBet is a bet already recorded today for the listero, as loaded by
// the persistence collaborator.
type ExistingBet struct {
	ScheduleID string
	PlayType   play.Type
	Numbers    []string
	Note       string
}

// Conflict reports one exact-match duplicate.
type Conflict struct {
	ScheduleID string
	PlayType   play.Type
	Numbers    []string // sorted canonical forms
	Reason     Reason
}

// FindConflicts checks every (schedule, instruction) pair against the batch
// itself and against existing bets. Equality is on the full sorted canonical
// number set plus the normalized note — adding one number to an otherwise
// identical bet is not a conflict.
func FindConflicts(insts []parser.Instruction, scheduleIDs []string, note string, existing []ExistingBet) []Conflict {
	existingKeys := make(map[string]bool, len(existing))
	for _, b := range existing {
		existingKeys[betKey(b.ScheduleID, b.PlayType, canonicalSorted(b.PlayType, b.Numbers), b.Note)] = true
	}

	var out []Conflict
	batchSeen := make(map[string]bool)
	reported := make(map[string]Reason)

	for _, in := range insts {
		for _, sid := range scheduleIDs {
			nums := canonicalSorted(in.PlayType, in.Numbers)
			key := betKey(sid, in.PlayType, nums, note)

			switch {
			case batchSeen[key]:
				if reported[key] != WithinBatch {
					reported[key] = WithinBatch
					out = append(out, Conflict{ScheduleID: sid, PlayType: in.PlayType, Numbers: nums, Reason: WithinBatch})
				}
			case existingKeys[key]:
				reported[key] = AgainstExisting
				out = append(out, Conflict{ScheduleID: sid, PlayType: in.PlayType, Numbers: nums, Reason: AgainstExisting})
			}
			batchSeen[key] = true
		}
	}
	return out
}

func canonicalSorted(typ play.Type, numbers []string) []string {
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = play.Canonical(typ, n)
	}
	sort.Strings(out)
	return out
}

func betKey(scheduleID string, typ play.Type, canonicalNums []string, note string) string {
	return strings.Join([]string{
		scheduleID,
		string(typ),
		strings.Join(canonicalNums, ","),
		strings.ToLower(strings.TrimSpace(note)),
	}, "|")
}
