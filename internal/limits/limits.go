// Package limits validates prospective bets against hierarchical exposure
// caps and renders display-only capacity views.
package limits

import (
	"github.com/labanca/listero/internal/parser"
	"github.com/labanca/listero/internal/play"
)

// Key addresses every limit, usage and violation entry. Number is always
// canonical; building a Key from a raw number is a bug.
type Key struct {
	ScheduleID string
	PlayType   play.Type
	Number     string
}

// Context is the point-in-time snapshot the engine validates against. It is
// loaded by the persistence collaborator; validation never does I/O.
//
// Absence of a limit means unlimited. The maps never hold a zero value to
// mean "no limit" — a configured zero is a real cap of zero.
type Context struct {
	// PerNumber holds explicit per-number caps.
	PerNumber map[Key]int
	// Specific holds the listero's per-play-type caps.
	Specific map[play.Type]int
	// Usage holds amounts already wagered today, keyed by canonical number.
	Usage map[Key]int
}

// Effective resolves the binding cap for k: the minimum of the per-number
// and play-type caps that are present. ok is false when neither exists.
func (c Context) Effective(k Key) (limit int, ok bool) {
	per, okPer := c.PerNumber[k]
	typ, okTyp := c.Specific[k.PlayType]

	switch {
	case okPer && okTyp:
		if per < typ {
			return per, true
		}
		return typ, true
	case okPer:
		return per, true
	case okTyp:
		return typ, true
	}
	return 0, false
}

// Violation reports one key whose projected exposure exceeds its cap.
type Violation struct {
	Number       string
	PlayType     play.Type
	Allowed      int
	AlreadyUsed  int
	AttemptedAdd int
}

// Validate projects every instruction onto every target schedule and reports
// each key whose usage plus attempted amount exceeds its effective limit.
// A number listed twice in one instruction counts twice — exposure is
// additive, not deduplicated. All violating keys are reported, in the order
// the aggregation first touched them.
func Validate(insts []parser.Instruction, scheduleIDs []string, ctx Context) []Violation {
	attempted := make(map[Key]int)
	var order []Key

	for _, in := range insts {
		for _, n := range in.Numbers {
			canon := play.Canonical(in.PlayType, n)
			for _, sid := range scheduleIDs {
				k := Key{ScheduleID: sid, PlayType: in.PlayType, Number: canon}
				if _, seen := attempted[k]; !seen {
					order = append(order, k)
				}
				attempted[k] += in.AmountEach
			}
		}
	}

	var out []Violation
	for _, k := range order {
		allowed, ok := ctx.Effective(k)
		if !ok {
			continue // unlimited
		}
		used := ctx.Usage[k]
		add := attempted[k]
		if used+add > allowed {
			out = append(out, Violation{
				Number:       k.Number,
				PlayType:     k.PlayType,
				Allowed:      allowed,
				AlreadyUsed:  used,
				AttemptedAdd: add,
			})
		}
	}
	return out
}
