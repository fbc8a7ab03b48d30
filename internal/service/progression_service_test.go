package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/models"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
)

type planStateStub struct {
	state    *models.ActivePlanState
	getErr   error
	patches  []models.ProfilePatch
	patchErr error
}

func (s *planStateStub) GetState(ctx context.Context, userID string) (*models.ActivePlanState, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.state == nil {
		return nil, sql.ErrNoRows
	}
	return s.state, nil
}

func (s *planStateStub) ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.patches = append(s.patches, patch)
	return nil
}

type workoutLogStub struct {
	inserted []*models.WorkoutLogEntry
	rows     []models.WorkoutLogEntry
	insErr   error
	listErr  error
	countErr error
}

func (s *workoutLogStub) Insert(ctx context.Context, entry *models.WorkoutLogEntry) error {
	if s.insErr != nil {
		return s.insErr
	}
	s.inserted = append(s.inserted, entry)
	return nil
}

func (s *workoutLogStub) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WorkoutLogEntry, error) {
	return s.rows, s.listErr
}

func (s *workoutLogStub) CountByProgram(ctx context.Context, userID, programID string) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.rows) + len(s.inserted), nil
}

func activeState(programID string, lastWeek, lastDay int) *models.ActivePlanState {
	return &models.ActivePlanState{
		UserID:               "user_1",
		CurrentProgramID:     programID,
		ActiveProgramID:      programID,
		LastCompletedWeekIdx: lastWeek,
		LastCompletedDayIdx:  lastDay,
	}
}

func TestNextForFreshPlan(t *testing.T) {
	entry := testEntry("prog_1", 3, 4)
	entry.Program.DeloadWeeks = []int{4}
	svc := NewProgressionService(testCatalog(t, entry), &planStateStub{state: activeState("prog_1", -1, -1)}, &workoutLogStub{}, nil, nil)

	res, err := svc.NextFor(context.Background(), memberClaims("user_1"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.WeekIdx)
	assert.Equal(t, 0, res.DayIdx)
	assert.Equal(t, "Session", res.DayName)
	assert.False(t, res.Deload)
	assert.False(t, res.Completed)
	assert.NotEmpty(t, res.Hint)
}

func TestNextForDeloadWeek(t *testing.T) {
	entry := testEntry("prog_1", 2, 4)
	entry.Program.DeloadWeeks = []int{4}
	svc := NewProgressionService(testCatalog(t, entry), &planStateStub{state: activeState("prog_1", 2, 1)}, &workoutLogStub{}, nil, nil)

	res, err := svc.NextFor(context.Background(), memberClaims("user_1"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.WeekIdx)
	assert.True(t, res.Deload)
}

func TestNextForNoActivePlan(t *testing.T) {
	svc := NewProgressionService(testCatalog(t), &planStateStub{}, &workoutLogStub{}, nil, nil)

	_, err := svc.NextFor(context.Background(), memberClaims("user_1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestNextForRequiresSignIn(t *testing.T) {
	svc := NewProgressionService(testCatalog(t), &planStateStub{}, &workoutLogStub{}, nil, nil)

	_, err := svc.NextFor(context.Background(), nil)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrSignInRequired.Code, appErr.Code)
}

func TestCompleteDayAdvances(t *testing.T) {
	states := &planStateStub{state: activeState("prog_1", -1, -1)}
	logs := &workoutLogStub{}
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), states, logs, nil, nil)

	res, err := svc.CompleteDay(context.Background(), memberClaims("user_1"), dto.CompleteDayRequest{WeekIdx: 0, DayIdx: 0, DurationSec: 3600})
	require.NoError(t, err)
	assert.Equal(t, 0, res.WeekIdx)
	assert.Equal(t, 1, res.DayIdx)
	assert.False(t, res.Completed)

	require.Len(t, logs.inserted, 1)
	assert.Equal(t, "prog_1", logs.inserted[0].ProgramID)
	assert.Equal(t, 3600, logs.inserted[0].DurationSec)
	assert.JSONEq(t, `[]`, string(logs.inserted[0].Sets))

	require.Len(t, states.patches, 1)
	patch := states.patches[0]
	assert.Equal(t, 0, *patch.CurrentWeekIdx)
	assert.Equal(t, 1, *patch.CurrentDayIdx)
	assert.Equal(t, 0, *patch.LastCompletedWeekIdx)
	assert.Equal(t, 0, *patch.LastCompletedDayIdx)
}

func TestCompleteDayFinalSessionReportsCompleted(t *testing.T) {
	states := &planStateStub{state: activeState("prog_1", 3, 1)}
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), states, &workoutLogStub{}, nil, nil)

	res, err := svc.CompleteDay(context.Background(), memberClaims("user_1"), dto.CompleteDayRequest{WeekIdx: 3, DayIdx: 2})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 3, res.WeekIdx)
	assert.Equal(t, 2, res.DayIdx)
}

func TestCompleteDayBoundsChecks(t *testing.T) {
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), &planStateStub{state: activeState("prog_1", -1, -1)}, &workoutLogStub{}, nil, nil)

	_, err := svc.CompleteDay(context.Background(), memberClaims("user_1"), dto.CompleteDayRequest{WeekIdx: 4, DayIdx: 0})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.CompleteDay(context.Background(), memberClaims("user_1"), dto.CompleteDayRequest{WeekIdx: 0, DayIdx: 3})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestNextForReportsCompletedSessions(t *testing.T) {
	logs := &workoutLogStub{rows: []models.WorkoutLogEntry{{ID: "log_1"}, {ID: "log_2"}}}
	metrics := NewMetricsService()
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), &planStateStub{state: activeState("prog_1", 0, 1)}, logs, metrics, nil)

	res, err := svc.NextFor(context.Background(), memberClaims("user_1"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.CompletedSessions)
	assert.GreaterOrEqual(t, metrics.Snapshot().DBQueryCount, uint64(1))
}

func TestNextForCountFailureDegradesToZero(t *testing.T) {
	logs := &workoutLogStub{countErr: errors.New("count timed out")}
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), &planStateStub{state: activeState("prog_1", 0, 1)}, logs, nil, nil)

	res, err := svc.NextFor(context.Background(), memberClaims("user_1"))
	require.NoError(t, err)
	assert.Zero(t, res.CompletedSessions)
}

func TestHistorySkipsCorruptRows(t *testing.T) {
	now := time.Now().UTC()
	logs := &workoutLogStub{rows: []models.WorkoutLogEntry{
		{ID: "log_1", ProgramID: "prog_1", WeekIdx: 0, DayIdx: 0, CompletedAt: now, Sets: []byte(`[{"exercise":"Squat","set":1,"reps":"5","done":true}]`)},
		{ID: "log_2", ProgramID: "prog_1", WeekIdx: 0, DayIdx: 1, CompletedAt: now, Sets: []byte(`{broken`)},
	}}
	svc := NewProgressionService(testCatalog(t, testEntry("prog_1", 3, 4)), &planStateStub{state: activeState("prog_1", 0, 1)}, logs, nil, nil)

	history, err := svc.History(context.Background(), memberClaims("user_1"), 50, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "log_1", history[0].ID)
	require.Len(t, history[0].Sets, 1)
}
