package match

import (
	"fmt"

	"github.com/lumafit/coach-api/internal/models"
)

// Reasons derives human-readable match explanations by re-checking the same
// predicates the scorer uses. Presentation only: not part of the score
// contract.
func Reasons(meta models.ProgramMeta, prefs models.ProgramPreferences) []string {
	var reasons []string

	if goal, ok := prefs.Goal.Get(); ok && goal == meta.Goal {
		reasons = append(reasons, "Matches your goal")
	}
	if days, ok := prefs.Days.Get(); ok {
		gap := meta.DaysPerWeek - days
		if gap < 0 {
			gap = -gap
		}
		if gap <= 1 {
			reasons = append(reasons, fmt.Sprintf("Fits your %d-day routine", days))
		}
	}
	if level, ok := prefs.Level.Get(); ok && models.LevelDistance(meta.Level, level) == 0 {
		reasons = append(reasons, "Suited to your experience level")
	}
	if required := requiredEquipment(meta); len(required) == 0 {
		reasons = append(reasons, "No equipment needed")
	} else if prefs.Equipment.IsSet() {
		owned := true
		for _, tag := range required {
			if !prefs.Equipment.Owns(tag) {
				owned = false
				break
			}
		}
		if owned {
			reasons = append(reasons, "Works with your equipment")
		}
	}
	if budget, ok := prefs.Time.Get(); ok && meta.DurationPerSessionMin > 0 && meta.DurationPerSessionMin <= budget {
		reasons = append(reasons, fmt.Sprintf("Sessions fit in %d minutes", budget))
	}

	return reasons
}
