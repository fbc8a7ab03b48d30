package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/pkg/export"
	"github.com/lumafit/coach-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderSections(title string, sections []export.Section) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders export payloads and persists the files. Program
// sheets come straight from the catalog; workout-log exports read the
// requesting user's history.
type ExportService struct {
	catalog *CatalogService
	logs    workoutLogStore
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(catalog *CatalogService, logs workoutLogStore, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		catalog: catalog,
		logs:    logs,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the export described by the job and stores the result.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}

	var payload []byte
	var err error
	switch job.Type {
	case models.ExportTypeProgramSheet:
		payload, err = s.renderProgramSheet(ctx, job)
	case models.ExportTypeWorkoutLog:
		payload, err = s.renderWorkoutLog(ctx, job)
	default:
		err = fmt.Errorf("unsupported export type %s", job.Type)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) renderProgramSheet(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	entry, err := s.catalog.Get(ctx, job.Params.ProgramID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s Program Sheet", entry.Program.Title)

	if job.Params.Format == models.ExportFormatPDF {
		sections := make([]export.Section, 0, len(entry.Program.Weeks))
		for i, week := range entry.Program.Weeks {
			sections = append(sections, export.Section{
				Heading: weekHeading(i, entry.Program.DeloadWeeks),
				Data:    weekDataset(week),
			})
		}
		return s.pdf.RenderSections(title, sections)
	}

	headers := []string{"Week", "Day", "Exercise", "Sets", "Reps", "Rest (s)"}
	rows := make([]map[string]string, 0)
	for wi, week := range entry.Program.Weeks {
		for _, day := range week.Days {
			for _, ex := range day.FlattenExercises() {
				rows = append(rows, map[string]string{
					"Week":     strconv.Itoa(wi + 1),
					"Day":      day.Name,
					"Exercise": ex.Name,
					"Sets":     strconv.Itoa(ex.Sets),
					"Reps":     ex.Reps,
					"Rest (s)": strconv.Itoa(ex.RestSec),
				})
			}
		}
	}
	return s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
}

func (s *ExportService) renderWorkoutLog(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	entries, err := s.logs.ListByUser(ctx, job.CreatedBy, 500, 0)
	if err != nil {
		return nil, err
	}

	headers := []string{"Date", "Program", "Week", "Day", "Duration (min)"}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Date":           entry.CompletedAt.UTC().Format("2006-01-02"),
			"Program":        entry.ProgramID,
			"Week":           strconv.Itoa(entry.WeekIdx + 1),
			"Day":            strconv.Itoa(entry.DayIdx + 1),
			"Duration (min)": strconv.Itoa(entry.DurationSec / 60),
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := "Workout Log"

	if job.Params.Format == models.ExportFormatPDF {
		return s.pdf.Render(dataset, title)
	}
	return s.csv.Render(dataset)
}

func weekHeading(weekIdx int, deloadWeeks []int) string {
	for _, w := range deloadWeeks {
		if w == weekIdx+1 {
			return fmt.Sprintf("Week %d (deload)", weekIdx+1)
		}
	}
	return fmt.Sprintf("Week %d", weekIdx+1)
}

func weekDataset(week models.Week) export.Dataset {
	headers := []string{"Day", "Exercise", "Sets", "Reps", "Rest (s)"}
	rows := make([]map[string]string, 0)
	for _, day := range week.Days {
		for _, ex := range day.FlattenExercises() {
			rows = append(rows, map[string]string{
				"Day":      day.Name,
				"Exercise": ex.Name,
				"Sets":     strconv.Itoa(ex.Sets),
				"Reps":     ex.Reps,
				"Rest (s)": strconv.Itoa(ex.RestSec),
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	subject := sanitizeFilename(job.Params.ProgramID)
	if job.Type == models.ExportTypeWorkoutLog {
		subject = sanitizeFilename(job.CreatedBy)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), subject, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
