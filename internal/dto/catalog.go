package dto

import "github.com/lumafit/coach-api/internal/models"

// MatchRequest captures POST /programs/match payload. Every preference is
// optional; an absent field simply contributes nothing to the ranking.
type MatchRequest struct {
	Goal              *string  `json:"goal,omitempty"`
	DaysPerWeek       *int     `json:"daysPerWeek,omitempty"`
	Level             *string  `json:"level,omitempty"`
	Equipment         []string `json:"equipment,omitempty"`
	TimePerSessionMin *int     `json:"timePerSessionMin,omitempty"`
}

// Preferences converts the raw payload into tagged preference values. A nil
// pointer stays unset. A JSON equipment field of [] decodes to a non-nil
// empty slice and counts as a real preference ("bodyweight only"), while an
// absent field leaves the slice nil and the axis unset.
func (r MatchRequest) Preferences() models.ProgramPreferences {
	var prefs models.ProgramPreferences
	if r.Goal != nil {
		prefs.Goal = models.PreferGoal(models.Goal(*r.Goal))
	}
	if r.DaysPerWeek != nil {
		prefs.Days = models.PreferDays(*r.DaysPerWeek)
	}
	if r.Level != nil {
		prefs.Level = models.PreferLevel(models.Level(*r.Level))
	}
	if r.Equipment != nil {
		prefs.Equipment = models.PreferEquipment(r.Equipment)
	}
	if r.TimePerSessionMin != nil {
		prefs.Time = models.PreferTime(*r.TimePerSessionMin)
	}
	return prefs
}

// ProgramSummary is the catalog listing shape returned to clients.
type ProgramSummary struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	Goal                  string   `json:"goal"`
	Level                 string   `json:"level"`
	DaysPerWeek           int      `json:"daysPerWeek"`
	Weeks                 int      `json:"weeks"`
	Equipment             []string `json:"equipment"`
	DurationPerSessionMin int      `json:"durationPerSessionMin"`
}

// MatchResult pairs a catalog program with its fit score and the
// human-readable reasons behind it.
type MatchResult struct {
	Program ProgramSummary `json:"program"`
	Score   int            `json:"score"`
	Reasons []string       `json:"reasons"`
}

// SummaryFromEntry maps a catalog entry onto the client-facing shape.
func SummaryFromEntry(entry models.CatalogEntry) ProgramSummary {
	return ProgramSummary{
		ID:                    entry.Meta.ID,
		Title:                 entry.Program.Title,
		Goal:                  string(entry.Meta.Goal),
		Level:                 string(entry.Meta.Level),
		DaysPerWeek:           entry.Meta.DaysPerWeek,
		Weeks:                 entry.Meta.Weeks,
		Equipment:             entry.Meta.Equipment,
		DurationPerSessionMin: entry.Meta.DurationPerSessionMin,
	}
}
