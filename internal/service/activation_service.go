package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/planner"
	"github.com/lumafit/coach-api/internal/progression"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
	"github.com/lumafit/coach-api/pkg/jobs"
)

// JobTypePlanDetail labels deferred current-plan writes on the queue.
const JobTypePlanDetail = "plan_detail"

type planProfileStore interface {
	ApplyPatch(ctx context.Context, userID string, patch models.ProfilePatch) error
	GetCurrentPlan(ctx context.Context, userID string) (*models.CurrentPlan, error)
	UpsertCurrentPlan(ctx context.Context, plan *models.CurrentPlan) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// PlanDetailPayload travels on the queue from activation to the detail writer.
type PlanDetailPayload struct {
	UserID    string
	ProgramID string
	PlanID    string
}

// ActivationService runs the start-program flow: validate the catalog entry,
// submit the weekly schedule to the external planner, then record the plan on
// the user's profile. The planner submission is the gate: nothing is written
// to the profile until it succeeds.
type ActivationService struct {
	catalog  *CatalogService
	planner  planner.Submitter
	profiles planProfileStore
	queue    jobDispatcher
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewActivationService constructs the activation service.
func NewActivationService(catalog *CatalogService, submitter planner.Submitter, profiles planProfileStore, queue jobDispatcher, metrics *MetricsService, logger *zap.Logger) *ActivationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivationService{
		catalog:  catalog,
		planner:  submitter,
		profiles: profiles,
		queue:    queue,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start activates a catalog program for the authenticated user.
func (s *ActivationService) Start(ctx context.Context, claims *models.JWTClaims, req dto.ActivatePlanRequest) (*dto.ActivatePlanResponse, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrSignInRequired
	}

	entry, err := s.catalog.Get(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if len(entry.Program.Weeks) == 0 || len(entry.Program.Weeks[0].Days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrBadCatalog, "program has no scheduled sessions")
	}

	submission := buildSubmission(entry)
	started := time.Now()
	planID, err := s.planner.Submit(ctx, submission)
	if err != nil {
		s.metrics.ObservePlannerSubmission("error", time.Since(started))
		s.logger.Warn("planner submission failed",
			zap.String("program_id", req.ProgramID),
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPlannerUnavailable.Code, appErrors.ErrPlannerUnavailable.Status, appErrors.ErrPlannerUnavailable.Message)
	}
	s.metrics.ObservePlannerSubmission("ok", time.Since(started))

	week, day := 0, 0
	lastWeek, lastDay := -1, -1
	patch := models.ProfilePatch{
		CurrentProgramID:     &req.ProgramID,
		ActiveProgramID:      &req.ProgramID,
		CurrentWeekIdx:       &week,
		CurrentDayIdx:        &day,
		LastCompletedWeekIdx: &lastWeek,
		LastCompletedDayIdx:  &lastDay,
	}
	if err := s.profiles.ApplyPatch(ctx, claims.UserID, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record active plan")
	}

	// The richer plan record is written off the request path. It is gated on
	// the planner success above, not on the profile patch.
	if err := s.queue.Enqueue(jobs.Job{
		ID:   planID,
		Type: JobTypePlanDetail,
		Payload: PlanDetailPayload{
			UserID:    claims.UserID,
			ProgramID: req.ProgramID,
			PlanID:    planID,
		},
	}); err != nil {
		s.logger.Warn("failed to enqueue plan detail write",
			zap.String("plan_id", planID),
			zap.String("user_id", claims.UserID),
			zap.Error(err))
	}

	return &dto.ActivatePlanResponse{
		ProgramID:   entry.Meta.ID,
		PlanID:      planID,
		Title:       entry.Program.Title,
		Weeks:       entry.Meta.Weeks,
		DeloadWeeks: entry.Program.DeloadWeeks,
	}, nil
}

// CurrentPlan returns the user's stored plan record.
func (s *ActivationService) CurrentPlan(ctx context.Context, claims *models.JWTClaims) (*dto.CurrentPlanResponse, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrSignInRequired
	}
	plan, err := s.profiles.GetCurrentPlan(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active plan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current plan")
	}

	var weeks []models.WeekSummary
	if err := json.Unmarshal(plan.WeekSummaries, &weeks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode plan weeks")
	}
	var deload []int
	if err := json.Unmarshal(plan.DeloadWeeks, &deload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode deload weeks")
	}

	return &dto.CurrentPlanResponse{
		ProgramID:     plan.ProgramID,
		PlanID:        plan.PlanID,
		Title:         plan.Title,
		Weeks:         weeks,
		CalorieTarget: plan.CalorieTarget,
		ProteinTarget: plan.ProteinTarget,
		DeloadWeeks:   deload,
		UpdatedAt:     plan.UpdatedAt,
	}, nil
}

// weekdayLabels picks which weekdays carry sessions for a given weekly day
// count. Lower counts spread sessions for recovery; six and seven day
// schedules fill the weekend.
func weekdayLabels(count int) []string {
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []string{"Mon"}
	case count == 2:
		return []string{"Mon", "Thu"}
	case count == 3:
		return []string{"Mon", "Wed", "Fri"}
	case count == 4:
		return []string{"Mon", "Tue", "Thu", "Fri"}
	case count == 5:
		return []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	case count == 6:
		return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	default:
		return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	}
}

func buildSubmission(entry *models.CatalogEntry) planner.CatalogPlanSubmission {
	days := entry.Program.Weeks[0].Days
	labels := weekdayLabels(len(days))

	scheduled := make([]planner.ScheduleDay, 0, len(days))
	for i, day := range days {
		exercises := day.FlattenExercises()
		out := make([]planner.ScheduleExercise, 0, len(exercises))
		for _, ex := range exercises {
			out = append(out, planner.ScheduleExercise{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps})
		}
		if len(out) == 0 {
			// Rest-style days still need one entry for the planner to accept
			// the schedule.
			out = append(out, planner.ScheduleExercise{Name: "Session", Sets: 3, Reps: "10"})
		}
		scheduled = append(scheduled, planner.ScheduleDay{Day: labels[i], Exercises: out})
	}

	return planner.CatalogPlanSubmission{
		ProgramID: entry.Meta.ID,
		Title:     entry.Program.Title,
		Goal:      entry.Meta.Goal,
		Level:     entry.Meta.Level,
		Days:      scheduled,
	}
}

// PlanDetailWorker consumes deferred plan-detail jobs and writes the
// current-plan record.
type PlanDetailWorker struct {
	catalog  *CatalogService
	profiles planProfileStore
	logger   *zap.Logger
}

// NewPlanDetailWorker constructs the worker.
func NewPlanDetailWorker(catalog *CatalogService, profiles planProfileStore, logger *zap.Logger) *PlanDetailWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanDetailWorker{catalog: catalog, profiles: profiles, logger: logger}
}

// Handle builds and upserts the current-plan record for one activation.
func (w *PlanDetailWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(PlanDetailPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	entry, err := w.catalog.Get(ctx, payload.ProgramID)
	if err != nil {
		return err
	}

	summaries := make([]models.WeekSummary, 0, len(entry.Program.Weeks))
	for i, week := range entry.Program.Weeks {
		sessions := make([]string, 0, len(week.Days))
		for _, day := range week.Days {
			sessions = append(sessions, day.Name)
		}
		summaries = append(summaries, models.WeekSummary{
			Week:     i + 1,
			Sessions: sessions,
			Deload:   progression.IsDeloadWeek(i+1, entry.Program.DeloadWeeks),
		})
	}
	summariesJSON, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("marshal week summaries: %w", err)
	}
	deload := entry.Program.DeloadWeeks
	if deload == nil {
		deload = []int{}
	}
	deloadJSON, err := json.Marshal(deload)
	if err != nil {
		return fmt.Errorf("marshal deload weeks: %w", err)
	}

	calories, protein := defaultTargets(entry.Meta.Goal)
	prior, err := w.profiles.GetCurrentPlan(ctx, payload.UserID)
	switch {
	case err == nil:
		if prior.CalorieTarget > 0 {
			calories = prior.CalorieTarget
		}
		if prior.ProteinTarget > 0 {
			protein = prior.ProteinTarget
		}
	case errors.Is(err, sql.ErrNoRows):
		// first plan, defaults stand
	default:
		w.logger.Warn("failed to load prior plan for target carry-over",
			zap.String("user_id", payload.UserID),
			zap.Error(err))
	}

	plan := &models.CurrentPlan{
		UserID:        payload.UserID,
		ProgramID:     payload.ProgramID,
		PlanID:        payload.PlanID,
		Title:         entry.Program.Title,
		WeekSummaries: summariesJSON,
		CalorieTarget: calories,
		ProteinTarget: protein,
		DeloadWeeks:   deloadJSON,
		UpdatedAt:     time.Now().UTC(),
	}
	return w.profiles.UpsertCurrentPlan(ctx, plan)
}

// defaultTargets seeds nutrition targets for users with no prior plan.
func defaultTargets(goal models.Goal) (calories, protein int) {
	switch goal {
	case models.GoalCut:
		return 1900, 160
	case models.GoalHypertrophy:
		return 2600, 180
	case models.GoalStrength:
		return 2800, 170
	default:
		return 2300, 150
	}
}
