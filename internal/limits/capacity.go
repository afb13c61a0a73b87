package limits

import (
	"fmt"
	"sort"

	"github.com/labanca/listero/internal/play"
)

// CapacityEntry is one row of the display-only capacity view.
type CapacityEntry struct {
	ScheduleID  string    `json:"scheduleId"`
	PlayType    play.Type `json:"playType"`
	Number      string    `json:"number"`
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	PercentUsed float64   `json:"percentUsed"`
}

// Capacity renders the percentage-used view for the given schedules.
//
// For 2- and 3-digit play types with a play-type cap the whole number space
// is synthesized, so numbers with zero usage still show up. Parle and
// tripleta spaces are too large to enumerate and only surface for keys that
// already have usage or an explicit per-number cap.
func Capacity(scheduleIDs []string, ctx Context) []CapacityEntry {
	keys := make(map[Key]bool)
	var order []Key
	touch := func(k Key) {
		if !keys[k] {
			keys[k] = true
			order = append(order, k)
		}
	}

	for _, sid := range scheduleIDs {
		for _, typ := range play.All {
			d := play.Describe(typ)
			if _, ok := ctx.Specific[typ]; ok && d.Enumerable {
				for i := 0; i < pow10(d.DigitLen); i++ {
					touch(Key{ScheduleID: sid, PlayType: typ, Number: fmt.Sprintf("%0*d", d.DigitLen, i)})
				}
			}
		}
	}
	for k := range ctx.PerNumber {
		if containsSchedule(scheduleIDs, k.ScheduleID) {
			touch(k)
		}
	}
	for k := range ctx.Usage {
		if containsSchedule(scheduleIDs, k.ScheduleID) {
			touch(k)
		}
	}

	// Map iteration above is unordered; sort for a stable report.
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.ScheduleID != b.ScheduleID {
			return a.ScheduleID < b.ScheduleID
		}
		if a.PlayType != b.PlayType {
			return typeRank(a.PlayType) < typeRank(b.PlayType)
		}
		return a.Number < b.Number
	})

	out := make([]CapacityEntry, 0, len(order))
	for _, k := range order {
		used := ctx.Usage[k]
		limit, ok := ctx.Effective(k)

		pct := 0.0
		if ok && limit > 0 {
			pct = float64(used) / float64(limit) * 100
			if pct > 100 {
				pct = 100
			}
		}
		if !ok {
			limit = 0
		}
		out = append(out, CapacityEntry{
			ScheduleID:  k.ScheduleID,
			PlayType:    k.PlayType,
			Number:      k.Number,
			Limit:       limit,
			Used:        used,
			PercentUsed: pct,
		})
	}
	return out
}

func typeRank(t play.Type) int {
	for i, typ := range play.All {
		if typ == t {
			return i
		}
	}
	return len(play.All)
}

func containsSchedule(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}

func pow10(n int) int {
	out := 1
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
