package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lumafit/coach-api/internal/models"
)

// WorkoutLogRepository persists completed training days.
type WorkoutLogRepository struct {
	db *sqlx.DB
}

// NewWorkoutLogRepository constructs the repository.
func NewWorkoutLogRepository(db *sqlx.DB) *WorkoutLogRepository {
	return &WorkoutLogRepository{db: db}
}

// Insert appends one workout log entry.
func (r *WorkoutLogRepository) Insert(ctx context.Context, entry *models.WorkoutLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	if len(entry.Sets) == 0 {
		entry.Sets = []byte("[]")
	}
	const query = `INSERT INTO workout_logs (id, user_id, program_id, week_idx, day_idx, completed_at, duration_sec, sets)
VALUES (:id, :user_id, :program_id, :week_idx, :day_idx, :completed_at, :duration_sec, :sets)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert workout log: %w", err)
	}
	return nil
}

// ListByUser returns a user's workout history, most recent first.
func (r *WorkoutLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WorkoutLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, user_id, program_id, week_idx, day_idx, completed_at, duration_sec, sets
FROM workout_logs WHERE user_id = $1 ORDER BY completed_at DESC LIMIT $2 OFFSET $3`
	var entries []models.WorkoutLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	return entries, nil
}

// CountByProgram returns how many days a user has logged against a program.
func (r *WorkoutLogRepository) CountByProgram(ctx context.Context, userID, programID string) (int, error) {
	const query = `SELECT COUNT(*) FROM workout_logs WHERE user_id = $1 AND program_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, programID); err != nil {
		return 0, fmt.Errorf("count workout logs: %w", err)
	}
	return count, nil
}
