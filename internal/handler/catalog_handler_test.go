package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/service"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
)

type catalogSourceStub struct {
	entries []models.CatalogEntry
	err     error
}

func (s *catalogSourceStub) LoadAll() ([]models.CatalogEntry, error) {
	return s.entries, s.err
}

func catalogEntry(id string) models.CatalogEntry {
	day := models.Day{Name: "Full Body A", Blocks: []models.Block{{
		Title:     "Main",
		Exercises: []models.Exercise{{Name: "Squat", Sets: 3, Reps: "5"}},
	}}}
	return models.CatalogEntry{
		Meta: models.ProgramMeta{
			ID:                    id,
			Goal:                  models.GoalHypertrophy,
			Level:                 models.LevelIntermediate,
			DaysPerWeek:           1,
			Weeks:                 2,
			Equipment:             []string{"barbell"},
			DurationPerSessionMin: 60,
		},
		Program: models.Program{
			ID:    id,
			Title: "Full Body",
			Goal:  models.GoalHypertrophy,
			Weeks: []models.Week{{Days: []models.Day{day}}, {Days: []models.Day{day}}},
		},
	}
}

func newCatalogHandler(t *testing.T, entries ...models.CatalogEntry) *CatalogHandler {
	t.Helper()
	catalog := service.NewCatalogService(&catalogSourceStub{entries: entries}, nil, nil, service.CatalogConfig{})
	return NewCatalogHandler(catalog, service.NewMatchService(catalog, nil))
}

func TestCatalogHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandler(t, catalogEntry("full-body"), catalogEntry("upper-lower"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []dto.ProgramSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "full-body", body.Data[0].ID)
	assert.Equal(t, "Full Body", body.Data[0].Title)
	assert.Equal(t, 2, body.Data[0].Weeks)
}

func TestCatalogHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandler(t, catalogEntry("full-body"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs/full-body", nil)
	c.Params = gin.Params{{Key: "id", Value: "full-body"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.CatalogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "full-body", body.Data.Meta.ID)
	assert.Len(t, body.Data.Program.Weeks, 2)
}

func TestCatalogHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandler(t, catalogEntry("full-body"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/programs/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, body.Error.Code)
}

func TestCatalogHandlerMatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandler(t, catalogEntry("full-body"))

	payload, _ := json.Marshal(gin.H{"goal": "hypertrophy", "daysPerWeek": 1})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/programs/match", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Match(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []dto.MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "full-body", body.Data[0].Program.ID)
	assert.Greater(t, body.Data[0].Score, 0)
	assert.NotEmpty(t, body.Data[0].Reasons)
}

func TestCatalogHandlerMatchInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogHandler(t, catalogEntry("full-body"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/programs/match", bytes.NewBufferString("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Match(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, body.Error.Code)
}
