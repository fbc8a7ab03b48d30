// Package planner talks to the external workout-planner service that
// materialises a catalog program as a trackable plan. This service only
// submits schedules; plan processing lives entirely on the planner side.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/pkg/config"
)

// ScheduleExercise is one exercise in the submitted schedule.
type ScheduleExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

// ScheduleDay maps a weekday label to the exercises trained that day.
type ScheduleDay struct {
	Day       string             `json:"day"`
	Exercises []ScheduleExercise `json:"exercises"`
}

// CatalogPlanSubmission is the day-by-day payload the planner consumes.
type CatalogPlanSubmission struct {
	ProgramID string        `json:"programId"`
	Title     string        `json:"title"`
	Goal      models.Goal   `json:"goal"`
	Level     models.Level  `json:"level"`
	Days      []ScheduleDay `json:"days"`
}

type submitResponse struct {
	PlanID string `json:"planId"`
}

// Submitter is the consumer-side contract the activation flow depends on.
type Submitter interface {
	Submit(ctx context.Context, sub CatalogPlanSubmission) (string, error)
}

// Client is an HTTP client for the planner service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a planner client from configuration.
func NewClient(cfg config.PlannerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit posts the schedule and returns the plan identifier. An empty plan id
// in the response counts as a failure.
func (c *Client) Submit(ctx context.Context, sub CatalogPlanSubmission) (string, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("marshal plan submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plans", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build plan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit plan: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("planner returned %d: %s", resp.StatusCode, snippet)
	}

	var parsed submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode planner response: %w", err)
	}
	if parsed.PlanID == "" {
		return "", fmt.Errorf("planner returned empty plan id")
	}
	return parsed.PlanID, nil
}
