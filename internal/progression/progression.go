// Package progression computes a user's position within a training program:
// the next uncompleted week/day, deload detection, and hint formatting. All
// functions are pure and total for well-formed programs.
package progression

import (
	"fmt"

	"github.com/lumafit/coach-api/internal/models"
)

// Target identifies a week/day position within a program.
type Target struct {
	WeekIdx int `json:"week_idx"`
	DayIdx  int `json:"day_idx"`
}

// NextTarget returns the next uncompleted week/day given the last completed
// marker. Negative markers mean nothing has been completed yet. On the final
// day of the final week the target pins at the end instead of overflowing.
func NextTarget(program models.Program, lastCompletedWeekIdx, lastCompletedDayIdx int) Target {
	if len(program.Weeks) == 0 || lastCompletedWeekIdx < 0 || lastCompletedDayIdx < 0 {
		return Target{WeekIdx: 0, DayIdx: 0}
	}

	weekIdx := lastCompletedWeekIdx
	if weekIdx >= len(program.Weeks) {
		weekIdx = len(program.Weeks) - 1
	}

	days := program.Weeks[weekIdx].Days
	if lastCompletedDayIdx < len(days)-1 {
		return Target{WeekIdx: weekIdx, DayIdx: lastCompletedDayIdx + 1}
	}

	if weekIdx+1 < len(program.Weeks) {
		return Target{WeekIdx: weekIdx + 1, DayIdx: 0}
	}

	// Program complete: stay pinned at the final week's last valid day.
	lastDay := lastCompletedDayIdx
	if max := len(days) - 1; lastDay > max {
		lastDay = max
	}
	if lastDay < 0 {
		lastDay = 0
	}
	return Target{WeekIdx: weekIdx, DayIdx: lastDay}
}

// IsDeloadWeek reports whether the week index appears in the program's
// deload marker list. The caller supplies markers in whatever indexing
// convention it uses consistently.
func IsDeloadWeek(weekIdx int, deloadWeeks []int) bool {
	for _, w := range deloadWeeks {
		if w == weekIdx {
			return true
		}
	}
	return false
}

// Hint formats a short coaching cue for the upcoming target.
func Hint(program models.Program, target Target) string {
	if IsDeloadWeek(target.WeekIdx+1, program.DeloadWeeks) {
		return fmt.Sprintf("Week %d is a deload week: drop the loads and focus on recovery.", target.WeekIdx+1)
	}
	return fmt.Sprintf("Week %d, day %d: add load or reps where last session felt easy.", target.WeekIdx+1, target.DayIdx+1)
}
