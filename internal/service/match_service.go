package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/lumafit/coach-api/internal/dto"
	"github.com/lumafit/coach-api/internal/match"
	"github.com/lumafit/coach-api/internal/models"
)

// MatchService ranks catalog programs against stated preferences.
type MatchService struct {
	catalog *CatalogService
	logger  *zap.Logger
}

// NewMatchService constructs the match service.
func NewMatchService(catalog *CatalogService, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{catalog: catalog, logger: logger}
}

// Rank scores every catalog program and returns results ordered best-first.
// Ties keep catalog order, so repeated calls with the same preferences give
// the same ordering.
func (s *MatchService) Rank(ctx context.Context, prefs models.ProgramPreferences) ([]dto.MatchResult, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]dto.MatchResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, dto.MatchResult{
			Program: dto.SummaryFromEntry(entry),
			Score:   match.Score(entry.Meta, prefs),
			Reasons: match.Reasons(entry.Meta, prefs),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
