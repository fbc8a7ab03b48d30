package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lumafit/coach-api/internal/models"
)

// ProfileRepository persists the per-user coaching profile and the richer
// current-plan record that sits next to it.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetState returns the stored plan state for a user.
func (r *ProfileRepository) GetState(ctx context.Context, userID string) (*models.ActivePlanState, error) {
	const query = `SELECT user_id, current_program_id, active_program_id, current_week_idx, current_day_idx, last_completed_week_idx, last_completed_day_idx, updated_at
FROM active_plan_state WHERE user_id = $1`
	var state models.ActivePlanState
	if err := r.db.GetContext(ctx, &state, query, userID); err != nil {
		return nil, err
	}
	return &state, nil
}

// ApplyPatch merges the non-nil patch fields into the user's plan state,
// creating the row on first activation. Untouched columns keep their value.
func (r *ProfileRepository) ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) error {
	now := time.Now().UTC()
	const ensure = `INSERT INTO active_plan_state (user_id, last_completed_week_idx, last_completed_day_idx, updated_at)
VALUES ($1, -1, -1, $2)
ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, ensure, userID, now); err != nil {
		return fmt.Errorf("ensure plan state: %w", err)
	}

	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	argPos := 1

	if patch.CurrentProgramID != nil {
		set = append(set, fmt.Sprintf("current_program_id = $%d", argPos))
		args = append(args, *patch.CurrentProgramID)
		argPos++
	}
	if patch.ActiveProgramID != nil {
		set = append(set, fmt.Sprintf("active_program_id = $%d", argPos))
		args = append(args, *patch.ActiveProgramID)
		argPos++
	}
	if patch.CurrentWeekIdx != nil {
		set = append(set, fmt.Sprintf("current_week_idx = $%d", argPos))
		args = append(args, *patch.CurrentWeekIdx)
		argPos++
	}
	if patch.CurrentDayIdx != nil {
		set = append(set, fmt.Sprintf("current_day_idx = $%d", argPos))
		args = append(args, *patch.CurrentDayIdx)
		argPos++
	}
	if patch.LastCompletedWeekIdx != nil {
		set = append(set, fmt.Sprintf("last_completed_week_idx = $%d", argPos))
		args = append(args, *patch.LastCompletedWeekIdx)
		argPos++
	}
	if patch.LastCompletedDayIdx != nil {
		set = append(set, fmt.Sprintf("last_completed_day_idx = $%d", argPos))
		args = append(args, *patch.LastCompletedDayIdx)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	set = append(set, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, now)
	argPos++

	query := fmt.Sprintf("UPDATE active_plan_state SET %s WHERE user_id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, userID)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("patch plan state: %w", err)
	}
	return nil
}

// GetCurrentPlan returns the stored current-plan record for a user.
func (r *ProfileRepository) GetCurrentPlan(ctx context.Context, userID string) (*models.CurrentPlan, error) {
	const query = `SELECT user_id, program_id, plan_id, title, week_summaries, calorie_target, protein_target, deload_weeks, updated_at
FROM current_plans WHERE user_id = $1`
	var plan models.CurrentPlan
	if err := r.db.GetContext(ctx, &plan, query, userID); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpsertCurrentPlan creates or replaces the user's current-plan record.
func (r *ProfileRepository) UpsertCurrentPlan(ctx context.Context, plan *models.CurrentPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	if len(plan.WeekSummaries) == 0 {
		plan.WeekSummaries = []byte("[]")
	}
	if len(plan.DeloadWeeks) == 0 {
		plan.DeloadWeeks = []byte("[]")
	}

	const query = `INSERT INTO current_plans (user_id, program_id, plan_id, title, week_summaries, calorie_target, protein_target, deload_weeks, updated_at)
		VALUES (:user_id, :program_id, :plan_id, :title, :week_summaries, :calorie_target, :protein_target, :deload_weeks, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET program_id = EXCLUDED.program_id,
		    plan_id = EXCLUDED.plan_id,
		    title = EXCLUDED.title,
		    week_summaries = EXCLUDED.week_summaries,
		    calorie_target = EXCLUDED.calorie_target,
		    protein_target = EXCLUDED.protein_target,
		    deload_weeks = EXCLUDED.deload_weeks,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("upsert current plan: %w", err)
	}
	return nil
}
