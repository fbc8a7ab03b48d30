package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/repository"
	"github.com/lumafit/coach-api/pkg/storage"
)

type exportJobStoreStub struct {
	jobs      map[string]*models.ExportJob
	listCalls int
}

func newExportJobStoreStub() *exportJobStoreStub {
	return &exportJobStoreStub{jobs: map[string]*models.ExportJob{}}
}

func (s *exportJobStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *exportJobStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (s *exportJobStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportJobStoreStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.Status != models.ExportStatusQueued {
			continue
		}
		out = append(out, *job)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListFinishedBefore mirrors the SQL filter: finished rows only, finished
// before the cutoff, capped at limit.
func (s *exportJobStoreStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	s.listCalls++
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.Status != models.ExportStatusFinished || job.FinishedAt == nil || !job.FinishedAt.Before(cutoff) {
			continue
		}
		out = append(out, *job)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestCleanupExpiredDrainsFinishedRows(t *testing.T) {
	store := newFileStorageStub()
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	exporter := NewExportService(testCatalog(t), &workoutLogStub{}, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	repo := newExportJobStoreStub()
	finishedAt := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 150; i++ {
		id := fmt.Sprintf("job_%03d", i)
		relPath := fmt.Sprintf("exports/%s.csv", id)
		store.saved[relPath] = []byte("data")
		token, _, err := signer.Generate(id, relPath)
		require.NoError(t, err)
		url := "/api/v1/exports/download/" + token
		at := finishedAt
		repo.jobs[id] = &models.ExportJob{ID: id, Status: models.ExportStatusFinished, ResultURL: &url, FinishedAt: &at}
	}

	svc := NewExportJobService(repo, testCatalog(t), &queueSpy{}, exporter, nil, ExportJobServiceConfig{ResultTTL: 24 * time.Hour})
	svc.cleanupExpired(context.Background())

	// 150 rows drain in exactly two pages: a full 100 and then 50. Rows
	// flip to EXPIRED as they are processed, so no page repeats.
	assert.Equal(t, 2, repo.listCalls)
	for id, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusExpired, job.Status, id)
	}
	assert.Empty(t, store.saved)

	svc.cleanupExpired(context.Background())
	assert.Equal(t, 3, repo.listCalls, "a second pass should find nothing left")
}

func TestCleanupExpiredHandlesMissingResultURL(t *testing.T) {
	store := newFileStorageStub()
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	exporter := NewExportService(testCatalog(t), &workoutLogStub{}, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	repo := newExportJobStoreStub()
	finishedAt := time.Now().Add(-48 * time.Hour)
	repo.jobs["job_1"] = &models.ExportJob{ID: "job_1", Status: models.ExportStatusFinished, FinishedAt: &finishedAt}

	svc := NewExportJobService(repo, testCatalog(t), &queueSpy{}, exporter, nil, ExportJobServiceConfig{ResultTTL: 24 * time.Hour})
	svc.cleanupExpired(context.Background())

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, models.ExportStatusExpired, repo.jobs["job_1"].Status)

	svc.cleanupExpired(context.Background())
	assert.Equal(t, 2, repo.listCalls)
}

func TestCleanupExpiredLeavesRecentResults(t *testing.T) {
	store := newFileStorageStub()
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	exporter := NewExportService(testCatalog(t), &workoutLogStub{}, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	repo := newExportJobStoreStub()
	finishedAt := time.Now().Add(-time.Hour)
	relPath := "exports/job_1.csv"
	store.saved[relPath] = []byte("data")
	token, _, err := signer.Generate("job_1", relPath)
	require.NoError(t, err)
	url := "/api/v1/exports/download/" + token
	repo.jobs["job_1"] = &models.ExportJob{ID: "job_1", Status: models.ExportStatusFinished, ResultURL: &url, FinishedAt: &finishedAt}

	svc := NewExportJobService(repo, testCatalog(t), &queueSpy{}, exporter, nil, ExportJobServiceConfig{ResultTTL: 24 * time.Hour})
	svc.cleanupExpired(context.Background())

	assert.Equal(t, models.ExportStatusFinished, repo.jobs["job_1"].Status)
	assert.Contains(t, store.saved, relPath)
}
