// Package match implements the catalog suitability heuristic: a weighted,
// per-axis score in [0,100] used to rank programs against a user's stated
// preferences. The score is a ranking heuristic, not a guaranteed optimum;
// callers break ties by stable sort over catalog order.
package match

import (
	"math"

	"github.com/lumafit/coach-api/internal/models"
)

// Axis weights. Tunable policy: keeps goal above days/equipment above level
// above time, per the product's matching quiz.
const (
	goalWeight      = 30.0
	daysWeight      = 25.0
	equipmentWeight = 20.0
	levelWeight     = 15.0
	timeWeight      = 10.0

	// daysDecayPerGap is subtracted for every day of gap beyond one.
	daysDecayPerGap = 8.0
	// timeOverGraceMin grants partial credit when a session runs at most
	// this many minutes over the stated budget.
	timeOverGraceMin = 15
)

// Score computes the suitability of a program for the given preferences.
// Deterministic, pure, and total: unset axes contribute a neutral value so an
// empty preference set still produces a valid moderate score.
func Score(meta models.ProgramMeta, prefs models.ProgramPreferences) int {
	total := goalScore(meta, prefs.Goal) +
		daysScore(meta, prefs.Days) +
		equipmentScore(meta, prefs.Equipment) +
		levelScore(meta, prefs.Level) +
		timeScore(meta, prefs.Time)

	return clamp(int(math.Round(total)))
}

func goalScore(meta models.ProgramMeta, pref models.GoalPreference) float64 {
	goal, ok := pref.Get()
	if !ok {
		return goalWeight / 2
	}
	if goal == meta.Goal {
		return goalWeight
	}
	return 0
}

func daysScore(meta models.ProgramMeta, pref models.DaysPreference) float64 {
	days, ok := pref.Get()
	if !ok {
		return daysWeight / 2
	}
	gap := meta.DaysPerWeek - days
	if gap < 0 {
		gap = -gap
	}
	if gap <= 1 {
		return daysWeight
	}
	score := daysWeight - float64(gap-1)*daysDecayPerGap
	if score < 0 {
		return 0
	}
	return score
}

func equipmentScore(meta models.ProgramMeta, pref models.EquipmentPreference) float64 {
	required := requiredEquipment(meta)
	if len(required) == 0 {
		// Bodyweight-only programs always fit on this axis.
		return equipmentWeight
	}
	if !pref.IsSet() {
		return equipmentWeight / 2
	}
	for _, tag := range required {
		if !pref.Owns(tag) {
			return 0
		}
	}
	return equipmentWeight
}

func levelScore(meta models.ProgramMeta, pref models.LevelPreference) float64 {
	level, ok := pref.Get()
	if !ok {
		return levelWeight / 2
	}
	switch models.LevelDistance(meta.Level, level) {
	case 0:
		return levelWeight
	case 1:
		return levelWeight / 2
	}
	return 0
}

func timeScore(meta models.ProgramMeta, pref models.TimePreference) float64 {
	budget, ok := pref.Get()
	if !ok || meta.DurationPerSessionMin <= 0 {
		// No constraint to violate.
		return timeWeight
	}
	over := meta.DurationPerSessionMin - budget
	if over <= 0 {
		return timeWeight
	}
	if over <= timeOverGraceMin {
		return timeWeight / 2
	}
	return 0
}

func requiredEquipment(meta models.ProgramMeta) []string {
	var required []string
	for _, tag := range meta.Equipment {
		if tag == "" || tag == "none" {
			continue
		}
		required = append(required, tag)
	}
	return required
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
