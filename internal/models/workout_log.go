package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WorkoutSetResult records how one set went during a completed day.
type WorkoutSetResult struct {
	Exercise string   `json:"exercise"`
	Set      int      `json:"set"`
	Reps     string   `json:"reps"`
	Done     bool     `json:"done"`
	Weight   *float64 `json:"weight,omitempty"`
}

// WorkoutLogEntry is one record per completed training day. Append-only:
// created when a user finishes a day, never mutated afterwards.
type WorkoutLogEntry struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	ProgramID   string         `db:"program_id" json:"program_id"`
	WeekIdx     int            `db:"week_idx" json:"week_idx"`
	DayIdx      int            `db:"day_idx" json:"day_idx"`
	CompletedAt time.Time      `db:"completed_at" json:"completed_at"`
	DurationSec int            `db:"duration_sec" json:"duration_sec"`
	Sets        types.JSONText `db:"sets" json:"sets"`
}
