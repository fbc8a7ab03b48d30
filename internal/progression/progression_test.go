package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumafit/coach-api/internal/models"
)

func program(weeks, daysPerWeek int) models.Program {
	p := models.Program{ID: "prog_1", Title: "Test Program"}
	for w := 0; w < weeks; w++ {
		week := models.Week{}
		for d := 0; d < daysPerWeek; d++ {
			week.Days = append(week.Days, models.Day{Name: "Session"})
		}
		p.Weeks = append(p.Weeks, week)
	}
	return p
}

func TestNextTarget(t *testing.T) {
	tests := []struct {
		name     string
		program  models.Program
		lastWeek int
		lastDay  int
		want     Target
	}{
		{"nothing completed", program(4, 3), -1, -1, Target{0, 0}},
		{"negative day only", program(4, 3), 0, -1, Target{0, 0}},
		{"mid week advances day", program(4, 3), 0, 0, Target{0, 1}},
		{"last day advances week", program(4, 3), 0, 2, Target{1, 0}},
		{"final day pins at end", program(4, 3), 3, 2, Target{3, 2}},
		{"week out of range clamps", program(4, 3), 9, 2, Target{3, 2}},
		{"day out of range clamps", program(2, 3), 1, 7, Target{1, 2}},
		{"empty program", models.Program{}, 2, 2, Target{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTarget(tt.program, tt.lastWeek, tt.lastDay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDeloadWeek(t *testing.T) {
	markers := []int{4, 8}
	assert.True(t, IsDeloadWeek(4, markers))
	assert.True(t, IsDeloadWeek(8, markers))
	assert.False(t, IsDeloadWeek(1, markers))
	assert.False(t, IsDeloadWeek(0, markers))
	assert.False(t, IsDeloadWeek(4, nil))
}

func TestHint(t *testing.T) {
	p := program(4, 3)
	p.DeloadWeeks = []int{4}

	hint := Hint(p, Target{WeekIdx: 3, DayIdx: 0})
	assert.Contains(t, hint, "deload")

	hint = Hint(p, Target{WeekIdx: 0, DayIdx: 1})
	assert.Contains(t, hint, "Week 1, day 2")
}
