package dto

import (
	"time"

	"github.com/lumafit/coach-api/internal/models"
)

// ActivatePlanRequest captures POST /plans/activate payload.
type ActivatePlanRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

// ActivatePlanResponse is returned after a successful activation.
type ActivatePlanResponse struct {
	ProgramID   string `json:"programId"`
	PlanID      string `json:"planId"`
	Title       string `json:"title"`
	Weeks       int    `json:"weeks"`
	DeloadWeeks []int  `json:"deloadWeeks,omitempty"`
}

// CurrentPlanResponse exposes the user's stored plan record with the JSON
// columns decoded.
type CurrentPlanResponse struct {
	ProgramID     string               `json:"programId"`
	PlanID        string               `json:"planId"`
	Title         string               `json:"title"`
	Weeks         []models.WeekSummary `json:"weeks"`
	CalorieTarget int                  `json:"calorieTarget"`
	ProteinTarget int                  `json:"proteinTarget"`
	DeloadWeeks   []int                `json:"deloadWeeks"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// NextTargetResponse points the client at the next session to run.
type NextTargetResponse struct {
	ProgramID         string `json:"programId"`
	WeekIdx           int    `json:"weekIdx"`
	DayIdx            int    `json:"dayIdx"`
	DayName           string `json:"dayName"`
	Deload            bool   `json:"deload"`
	Hint              string `json:"hint"`
	Completed         bool   `json:"completed"`
	CompletedSessions int    `json:"completedSessions"`
}

// CompleteDayRequest captures POST /progress/complete-day payload.
type CompleteDayRequest struct {
	WeekIdx     int                       `json:"weekIdx" binding:"min=0"`
	DayIdx      int                       `json:"dayIdx" binding:"min=0"`
	DurationSec int                       `json:"durationSec"`
	Sets        []models.WorkoutSetResult `json:"sets"`
}

// HistoryEntry is one completed day in the workout history listing.
type HistoryEntry struct {
	ID          string                    `json:"id"`
	ProgramID   string                    `json:"programId"`
	WeekIdx     int                       `json:"weekIdx"`
	DayIdx      int                       `json:"dayIdx"`
	CompletedAt time.Time                 `json:"completedAt"`
	DurationSec int                       `json:"durationSec"`
	Sets        []models.WorkoutSetResult `json:"sets"`
}
