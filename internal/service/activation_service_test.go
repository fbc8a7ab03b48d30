package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/planner"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
	"github.com/lumafit/coach-api/pkg/jobs"
)

type catalogSourceStub struct {
	entries []models.CatalogEntry
	err     error
}

func (s catalogSourceStub) LoadAll() ([]models.CatalogEntry, error) {
	return s.entries, s.err
}

type plannerSpy struct {
	planID      string
	err         error
	submissions []planner.CatalogPlanSubmission
}

func (s *plannerSpy) Submit(ctx context.Context, sub planner.CatalogPlanSubmission) (string, error) {
	s.submissions = append(s.submissions, sub)
	if s.err != nil {
		return "", s.err
	}
	return s.planID, nil
}

type profileStoreSpy struct {
	patches     []models.ProfilePatch
	patchErr    error
	currentPlan *models.CurrentPlan
	getErr      error
	upserts     []*models.CurrentPlan
	upsertErr   error
}

func (s *profileStoreSpy) ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.patches = append(s.patches, patch)
	return nil
}

func (s *profileStoreSpy) GetCurrentPlan(ctx context.Context, userID string) (*models.CurrentPlan, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.currentPlan == nil {
		return nil, sql.ErrNoRows
	}
	return s.currentPlan, nil
}

func (s *profileStoreSpy) UpsertCurrentPlan(ctx context.Context, plan *models.CurrentPlan) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, plan)
	return nil
}

type queueSpy struct {
	jobs []jobs.Job
	err  error
}

func (s *queueSpy) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func testEntry(id string, daysPerWeek, weeks int) models.CatalogEntry {
	program := models.Program{ID: id, Title: "Test " + id, Goal: models.GoalHypertrophy}
	for w := 0; w < weeks; w++ {
		week := models.Week{}
		for d := 0; d < daysPerWeek; d++ {
			week.Days = append(week.Days, models.Day{
				Name: "Session",
				Blocks: []models.Block{{
					Title:     "Main",
					Exercises: []models.Exercise{{Name: "Squat", Sets: 3, Reps: "5"}},
				}},
			})
		}
		program.Weeks = append(program.Weeks, week)
	}
	return models.CatalogEntry{
		Meta: models.ProgramMeta{
			ID:          id,
			Goal:        models.GoalHypertrophy,
			Level:       models.LevelIntermediate,
			DaysPerWeek: daysPerWeek,
			Weeks:       weeks,
		},
		Program: program,
	}
}

func testCatalog(t *testing.T, entries ...models.CatalogEntry) *CatalogService {
	t.Helper()
	return NewCatalogService(catalogSourceStub{entries: entries}, nil, nil, CatalogConfig{})
}

func memberClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleMember}
}

func TestActivationStart(t *testing.T) {
	catalog := testCatalog(t, testEntry("prog_1", 3, 4))
	submitter := &plannerSpy{planID: "plan_42"}
	profiles := &profileStoreSpy{}
	queue := &queueSpy{}
	svc := NewActivationService(catalog, submitter, profiles, queue, NewMetricsService(), nil)

	res, err := svc.Start(context.Background(), memberClaims("user_1"), dto.ActivatePlanRequest{ProgramID: "prog_1"})
	require.NoError(t, err)
	assert.Equal(t, "prog_1", res.ProgramID)
	assert.Equal(t, "plan_42", res.PlanID)
	assert.Equal(t, 4, res.Weeks)

	require.Len(t, profiles.patches, 1)
	patch := profiles.patches[0]
	assert.Equal(t, "prog_1", *patch.ActiveProgramID)
	assert.Equal(t, 0, *patch.CurrentWeekIdx)
	assert.Equal(t, 0, *patch.CurrentDayIdx)
	assert.Equal(t, -1, *patch.LastCompletedWeekIdx)
	assert.Equal(t, -1, *patch.LastCompletedDayIdx)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypePlanDetail, queue.jobs[0].Type)
	payload, ok := queue.jobs[0].Payload.(PlanDetailPayload)
	require.True(t, ok)
	assert.Equal(t, "user_1", payload.UserID)
	assert.Equal(t, "plan_42", payload.PlanID)
}

func TestActivationStartRequiresSignIn(t *testing.T) {
	svc := NewActivationService(testCatalog(t), &plannerSpy{}, &profileStoreSpy{}, &queueSpy{}, NewMetricsService(), nil)

	_, err := svc.Start(context.Background(), nil, dto.ActivatePlanRequest{ProgramID: "prog_1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrSignInRequired.Code, appErr.Code)
}

func TestActivationStartUnknownProgram(t *testing.T) {
	svc := NewActivationService(testCatalog(t, testEntry("prog_1", 3, 4)), &plannerSpy{}, &profileStoreSpy{}, &queueSpy{}, NewMetricsService(), nil)

	_, err := svc.Start(context.Background(), memberClaims("user_1"), dto.ActivatePlanRequest{ProgramID: "missing"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestActivationStartPlannerRejectionWritesNothing(t *testing.T) {
	profiles := &profileStoreSpy{}
	queue := &queueSpy{}
	submitter := &plannerSpy{err: errors.New("planner down")}
	svc := NewActivationService(testCatalog(t, testEntry("prog_1", 3, 4)), submitter, profiles, queue, NewMetricsService(), nil)

	_, err := svc.Start(context.Background(), memberClaims("user_1"), dto.ActivatePlanRequest{ProgramID: "prog_1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPlannerUnavailable.Code, appErr.Code)

	assert.Empty(t, profiles.patches)
	assert.Empty(t, profiles.upserts)
	assert.Empty(t, queue.jobs)
}

func TestActivationStartEnqueueFailureDoesNotFail(t *testing.T) {
	profiles := &profileStoreSpy{}
	queue := &queueSpy{err: errors.New("queue full")}
	svc := NewActivationService(testCatalog(t, testEntry("prog_1", 3, 4)), &plannerSpy{planID: "plan_1"}, profiles, queue, NewMetricsService(), nil)

	res, err := svc.Start(context.Background(), memberClaims("user_1"), dto.ActivatePlanRequest{ProgramID: "prog_1"})
	require.NoError(t, err)
	assert.Equal(t, "plan_1", res.PlanID)
	assert.Len(t, profiles.patches, 1)
}

func TestBuildSubmissionWeekdayLabels(t *testing.T) {
	tests := []struct {
		days int
		want []string
	}{
		{1, []string{"Mon"}},
		{2, []string{"Mon", "Thu"}},
		{3, []string{"Mon", "Wed", "Fri"}},
		{4, []string{"Mon", "Tue", "Thu", "Fri"}},
		{5, []string{"Mon", "Tue", "Wed", "Thu", "Fri"}},
		{6, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}},
		{7, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
	}
	for _, tt := range tests {
		entry := testEntry("prog_1", tt.days, 1)
		sub := buildSubmission(&entry)
		got := make([]string, 0, len(sub.Days))
		for _, d := range sub.Days {
			got = append(got, d.Day)
		}
		assert.Equal(t, tt.want, got, "days=%d", tt.days)
	}
}

func TestBuildSubmissionPlaceholderForEmptyDay(t *testing.T) {
	entry := testEntry("prog_1", 2, 1)
	entry.Program.Weeks[0].Days[1] = models.Day{Name: "Steady State", Blocks: []models.Block{}}

	sub := buildSubmission(&entry)
	require.Len(t, sub.Days, 2)
	require.Len(t, sub.Days[1].Exercises, 1)
	assert.Equal(t, "Session", sub.Days[1].Exercises[0].Name)
	assert.Equal(t, 3, sub.Days[1].Exercises[0].Sets)
	assert.Equal(t, "10", sub.Days[1].Exercises[0].Reps)
}

func TestPlanDetailWorkerWritesSummaries(t *testing.T) {
	entry := testEntry("prog_1", 2, 4)
	entry.Program.DeloadWeeks = []int{4}
	catalog := testCatalog(t, entry)
	profiles := &profileStoreSpy{}
	worker := NewPlanDetailWorker(catalog, profiles, nil)

	err := worker.Handle(context.Background(), jobs.Job{
		Type:    JobTypePlanDetail,
		Payload: PlanDetailPayload{UserID: "user_1", ProgramID: "prog_1", PlanID: "plan_1"},
	})
	require.NoError(t, err)

	require.Len(t, profiles.upserts, 1)
	plan := profiles.upserts[0]
	assert.Equal(t, "user_1", plan.UserID)
	assert.Equal(t, "plan_1", plan.PlanID)
	assert.JSONEq(t, `[4]`, string(plan.DeloadWeeks))

	// Hypertrophy defaults apply on the first plan.
	assert.Equal(t, 2600, plan.CalorieTarget)
	assert.Equal(t, 180, plan.ProteinTarget)

	var summaries []models.WeekSummary
	require.NoError(t, json.Unmarshal(plan.WeekSummaries, &summaries))
	require.Len(t, summaries, 4)
	assert.False(t, summaries[0].Deload)
	assert.True(t, summaries[3].Deload)
	assert.Equal(t, []string{"Session", "Session"}, summaries[0].Sessions)
}

func TestPlanDetailWorkerCarriesOverTargets(t *testing.T) {
	catalog := testCatalog(t, testEntry("prog_1", 2, 2))
	profiles := &profileStoreSpy{
		currentPlan: &models.CurrentPlan{CalorieTarget: 2100, ProteinTarget: 155},
	}
	worker := NewPlanDetailWorker(catalog, profiles, nil)

	err := worker.Handle(context.Background(), jobs.Job{
		Type:    JobTypePlanDetail,
		Payload: PlanDetailPayload{UserID: "user_1", ProgramID: "prog_1", PlanID: "plan_2"},
	})
	require.NoError(t, err)

	require.Len(t, profiles.upserts, 1)
	assert.Equal(t, 2100, profiles.upserts[0].CalorieTarget)
	assert.Equal(t, 155, profiles.upserts[0].ProteinTarget)
}

func TestPlanDetailWorkerRejectsForeignPayload(t *testing.T) {
	worker := NewPlanDetailWorker(testCatalog(t), &profileStoreSpy{}, nil)
	err := worker.Handle(context.Background(), jobs.Job{Type: JobTypePlanDetail, Payload: "bogus"})
	require.Error(t, err)
}
