package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/pkg/config"
)

func testSubmission() CatalogPlanSubmission {
	return CatalogPlanSubmission{
		ProgramID: "full-body",
		Title:     "Full Body",
		Goal:      models.GoalHypertrophy,
		Level:     models.LevelIntermediate,
		Days: []ScheduleDay{{
			Day:       "Mon",
			Exercises: []ScheduleExercise{{Name: "Squat", Sets: 3, Reps: "5"}},
		}},
	}
}

func TestClientSubmit(t *testing.T) {
	var gotAuth string
	var gotBody CatalogPlanSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/plans", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"planId":"plan-42"}`))
	}))
	defer srv.Close()

	client := NewClient(config.PlannerConfig{BaseURL: srv.URL, APIKey: "secret"})
	planID, err := client.Submit(context.Background(), testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "plan-42", planID)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "full-body", gotBody.ProgramID)
	require.Len(t, gotBody.Days, 1)
	assert.Equal(t, "Mon", gotBody.Days[0].Day)
}

func TestClientSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "planner overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(config.PlannerConfig{BaseURL: srv.URL})
	_, err := client.Submit(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "planner overloaded")
}

func TestClientSubmitEmptyPlanID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"planId":""}`))
	}))
	defer srv.Close()

	client := NewClient(config.PlannerConfig{BaseURL: srv.URL})
	_, err := client.Submit(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty plan id")
}

func TestClientSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.PlannerConfig{BaseURL: srv.URL})
	_, err := client.Submit(context.Background(), testSubmission())
	require.Error(t, err)
}
