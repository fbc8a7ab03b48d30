package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ActivePlanState is the persisted per-user pointer into a catalog program.
// It is the single source of truth for "where is the user in their program".
// Created on first activation, merged on every later activation or
// day-completion event. Last-write-wins: a user's own client is the only
// writer in normal operation.
type ActivePlanState struct {
	UserID               string    `db:"user_id" json:"user_id"`
	CurrentProgramID     string    `db:"current_program_id" json:"current_program_id"`
	ActiveProgramID      string    `db:"active_program_id" json:"active_program_id"`
	CurrentWeekIdx       int       `db:"current_week_idx" json:"current_week_idx"`
	CurrentDayIdx        int       `db:"current_day_idx" json:"current_day_idx"`
	LastCompletedWeekIdx int       `db:"last_completed_week_idx" json:"last_completed_week_idx"`
	LastCompletedDayIdx  int       `db:"last_completed_day_idx" json:"last_completed_day_idx"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// ProfilePatch is an explicit field-level merge applied to a user's coaching
// profile. Nil fields are left untouched by the write.
type ProfilePatch struct {
	CurrentProgramID     *string
	ActiveProgramID      *string
	CurrentWeekIdx       *int
	CurrentDayIdx        *int
	LastCompletedWeekIdx *int
	LastCompletedDayIdx  *int
}

// CurrentPlan is the richer per-user plan record written alongside the
// coaching profile on activation.
type CurrentPlan struct {
	UserID        string         `db:"user_id" json:"user_id"`
	ProgramID     string         `db:"program_id" json:"program_id"`
	PlanID        string         `db:"plan_id" json:"plan_id"`
	Title         string         `db:"title" json:"title"`
	WeekSummaries types.JSONText `db:"week_summaries" json:"week_summaries"`
	CalorieTarget int            `db:"calorie_target" json:"calorie_target"`
	ProteinTarget int            `db:"protein_target" json:"protein_target"`
	DeloadWeeks   types.JSONText `db:"deload_weeks" json:"deload_weeks"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// WeekSummary describes one week's sessions in the current-plan record.
type WeekSummary struct {
	Week     int      `json:"week"`
	Sessions []string `json:"sessions"`
	Deload   bool     `json:"deload"`
}
