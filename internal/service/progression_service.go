package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/progression"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
)

type planStateStore interface {
	GetState(ctx context.Context, userID string) (*models.ActivePlanState, error)
	ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) error
}

type workoutLogStore interface {
	Insert(ctx context.Context, entry *models.WorkoutLogEntry) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WorkoutLogEntry, error)
	CountByProgram(ctx context.Context, userID, programID string) (int, error)
}

// ProgressionService answers "what do I train next" and records completed
// days. The profile row is the single source of truth for position; the
// workout log is append-only history.
type ProgressionService struct {
	catalog *CatalogService
	states  planStateStore
	logs    workoutLogStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewProgressionService constructs the progression service.
func NewProgressionService(catalog *CatalogService, states planStateStore, logs workoutLogStore, metrics *MetricsService, logger *zap.Logger) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{catalog: catalog, states: states, logs: logs, metrics: metrics, logger: logger}
}

// NextFor resolves the user's next session target.
func (s *ProgressionService) NextFor(ctx context.Context, claims *models.JWTClaims) (*dto.NextTargetResponse, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrSignInRequired
	}

	state, entry, err := s.loadActive(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	target := progression.NextTarget(entry.Program, state.LastCompletedWeekIdx, state.LastCompletedDayIdx)
	return s.targetResponse(entry, state, target, s.completedSessions(ctx, claims.UserID, state.ActiveProgramID)), nil
}

// CompleteDay records a finished session and advances the profile pointer.
// Returns the new next target.
func (s *ProgressionService) CompleteDay(ctx context.Context, claims *models.JWTClaims, req dto.CompleteDayRequest) (*dto.NextTargetResponse, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrSignInRequired
	}

	state, entry, err := s.loadActive(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if req.WeekIdx < 0 || req.WeekIdx >= len(entry.Program.Weeks) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekIdx out of range")
	}
	if req.DayIdx < 0 || req.DayIdx >= len(entry.Program.Weeks[req.WeekIdx].Days) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dayIdx out of range")
	}

	sets := req.Sets
	if sets == nil {
		sets = []models.WorkoutSetResult{}
	}
	setsJSON, err := json.Marshal(sets)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode set results")
	}

	entryRow := &models.WorkoutLogEntry{
		UserID:      claims.UserID,
		ProgramID:   state.ActiveProgramID,
		WeekIdx:     req.WeekIdx,
		DayIdx:      req.DayIdx,
		DurationSec: req.DurationSec,
		Sets:        setsJSON,
	}
	start := time.Now()
	err = s.logs.Insert(ctx, entryRow)
	s.metrics.ObserveDBQuery("workout_log_insert", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record workout")
	}

	next := progression.NextTarget(entry.Program, req.WeekIdx, req.DayIdx)
	patch := models.ProfilePatch{
		CurrentWeekIdx:       &next.WeekIdx,
		CurrentDayIdx:        &next.DayIdx,
		LastCompletedWeekIdx: &req.WeekIdx,
		LastCompletedDayIdx:  &req.DayIdx,
	}
	if err := s.states.ApplyPatch(ctx, claims.UserID, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance plan state")
	}

	state.LastCompletedWeekIdx = req.WeekIdx
	state.LastCompletedDayIdx = req.DayIdx
	return s.targetResponse(entry, state, next, s.completedSessions(ctx, claims.UserID, state.ActiveProgramID)), nil
}

// History lists the user's completed days, newest first.
func (s *ProgressionService) History(ctx context.Context, claims *models.JWTClaims, limit, offset int) ([]dto.HistoryEntry, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrSignInRequired
	}

	start := time.Now()
	rows, err := s.logs.ListByUser(ctx, claims.UserID, limit, offset)
	s.metrics.ObserveDBQuery("workout_log_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workout history")
	}

	history := make([]dto.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		var sets []models.WorkoutSetResult
		if len(row.Sets) > 0 {
			if err := json.Unmarshal(row.Sets, &sets); err != nil {
				s.logger.Warn("skipping workout log with bad set payload",
					zap.String("log_id", row.ID),
					zap.Error(err))
				continue
			}
		}
		history = append(history, dto.HistoryEntry{
			ID:          row.ID,
			ProgramID:   row.ProgramID,
			WeekIdx:     row.WeekIdx,
			DayIdx:      row.DayIdx,
			CompletedAt: row.CompletedAt,
			DurationSec: row.DurationSec,
			Sets:        sets,
		})
	}
	return history, nil
}

func (s *ProgressionService) loadActive(ctx context.Context, userID string) (*models.ActivePlanState, *models.CatalogEntry, error) {
	state, err := s.states.GetState(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no active plan")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan state")
	}
	if state.ActiveProgramID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no active plan")
	}
	entry, err := s.catalog.Get(ctx, state.ActiveProgramID)
	if err != nil {
		return nil, nil, err
	}
	return state, entry, nil
}

// completedSessions counts logged days for the active program. A count
// failure degrades to zero rather than failing the whole request.
func (s *ProgressionService) completedSessions(ctx context.Context, userID, programID string) int {
	start := time.Now()
	count, err := s.logs.CountByProgram(ctx, userID, programID)
	s.metrics.ObserveDBQuery("workout_log_count", time.Since(start))
	if err != nil {
		s.logger.Warn("failed to count completed sessions",
			zap.String("user_id", userID),
			zap.String("program_id", programID),
			zap.Error(err))
		return 0
	}
	return count
}

func (s *ProgressionService) targetResponse(entry *models.CatalogEntry, state *models.ActivePlanState, target progression.Target, sessions int) *dto.NextTargetResponse {
	dayName := ""
	if target.WeekIdx < len(entry.Program.Weeks) {
		days := entry.Program.Weeks[target.WeekIdx].Days
		if target.DayIdx < len(days) {
			dayName = days[target.DayIdx].Name
		}
	}

	completed := false
	if n := len(entry.Program.Weeks); n > 0 && state.LastCompletedWeekIdx >= n-1 {
		if days := entry.Program.Weeks[n-1].Days; state.LastCompletedDayIdx >= len(days)-1 {
			completed = true
		}
	}

	return &dto.NextTargetResponse{
		ProgramID:         entry.Meta.ID,
		WeekIdx:           target.WeekIdx,
		DayIdx:            target.DayIdx,
		DayName:           dayName,
		Deload:            progression.IsDeloadWeek(target.WeekIdx+1, entry.Program.DeloadWeeks),
		Hint:              progression.Hint(entry.Program, target),
		Completed:         completed,
		CompletedSessions: sessions,
	}
}
