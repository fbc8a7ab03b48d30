package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/pkg/storage"
)

type fileStorageStub struct {
	saved map[string][]byte
}

func newFileStorageStub() *fileStorageStub {
	return &fileStorageStub{saved: map[string][]byte{}}
}

func (s *fileStorageStub) Save(filename string, data []byte) (string, error) {
	s.saved[filename] = data
	return filename, nil
}

func (s *fileStorageStub) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (s *fileStorageStub) Delete(filename string) error {
	delete(s.saved, filename)
	return nil
}

func (s *fileStorageStub) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func testExportService(t *testing.T, store *fileStorageStub, logs workoutLogStore, entries ...models.CatalogEntry) *ExportService {
	t.Helper()
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)
	return NewExportService(testCatalog(t, entries...), logs, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
}

func TestGenerateProgramSheetCSV(t *testing.T) {
	entry := testEntry("prog_1", 2, 2)
	entry.Program.DeloadWeeks = []int{2}
	store := newFileStorageStub()
	svc := testExportService(t, store, &workoutLogStub{}, entry)

	job := &models.ExportJob{
		ID:        "job_1",
		Type:      models.ExportTypeProgramSheet,
		Params:    models.ExportJobParams{ProgramID: "prog_1", Format: models.ExportFormatCSV},
		CreatedBy: "user_1",
	}
	res, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, res.Format)
	assert.True(t, strings.HasPrefix(res.URL, "/api/v1/exports/download/"))

	require.Len(t, store.saved, 1)
	var content string
	for _, data := range store.saved {
		content = string(data)
	}
	assert.Contains(t, content, "Week")
	assert.Contains(t, content, "Squat")
}

func TestGenerateProgramSheetPDF(t *testing.T) {
	store := newFileStorageStub()
	svc := testExportService(t, store, &workoutLogStub{}, testEntry("prog_1", 2, 2))

	job := &models.ExportJob{
		ID:        "job_1",
		Type:      models.ExportTypeProgramSheet,
		Params:    models.ExportJobParams{ProgramID: "prog_1", Format: models.ExportFormatPDF},
		CreatedBy: "user_1",
	}
	res, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatPDF, res.Format)

	require.Len(t, store.saved, 1)
	for name, data := range store.saved {
		assert.True(t, strings.HasSuffix(name, ".pdf"), "filename %s", name)
		assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	}
}

func TestGenerateWorkoutLog(t *testing.T) {
	logs := &workoutLogStub{rows: []models.WorkoutLogEntry{
		{ID: "log_1", UserID: "user_1", ProgramID: "prog_1", WeekIdx: 0, DayIdx: 0, CompletedAt: time.Now().UTC(), DurationSec: 1800},
	}}
	store := newFileStorageStub()
	svc := testExportService(t, store, logs, testEntry("prog_1", 2, 2))

	job := &models.ExportJob{
		ID:        "job_2",
		Type:      models.ExportTypeWorkoutLog,
		Params:    models.ExportJobParams{Format: models.ExportFormatCSV},
		CreatedBy: "user_1",
	}
	_, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	for _, data := range store.saved {
		assert.Contains(t, string(data), "prog_1")
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	svc := testExportService(t, newFileStorageStub(), &workoutLogStub{}, testEntry("prog_1", 2, 2))

	_, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job_3", Type: "bogus"})
	require.Error(t, err)
}

func TestParseTokenRoundTrip(t *testing.T) {
	store := newFileStorageStub()
	svc := testExportService(t, store, &workoutLogStub{}, testEntry("prog_1", 2, 2))

	job := &models.ExportJob{
		ID:        "job_1",
		Type:      models.ExportTypeProgramSheet,
		Params:    models.ExportJobParams{ProgramID: "prog_1", Format: models.ExportFormatCSV},
		CreatedBy: "user_1",
	}
	res, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(res.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job_1", jobID)
	assert.Equal(t, res.RelativePath, relPath)
}
