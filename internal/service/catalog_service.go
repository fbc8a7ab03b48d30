package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lumafit/coach-api/internal/models"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
)

type catalogSource interface {
	LoadAll() ([]models.CatalogEntry, error)
}

const catalogCacheKey = "catalog:programs"

// CatalogConfig tunes catalog caching.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CatalogService exposes the embedded program catalog. The catalog is
// immutable at runtime, so after the first successful load entries are
// served from memory; Redis fronts the parsed form so sibling instances
// skip the YAML parse on cold start.
type CatalogService struct {
	source catalogSource
	cache  *CacheService
	logger *zap.Logger
	cfg    CatalogConfig

	mu      sync.RWMutex
	entries []models.CatalogEntry
	byID    map[string]int
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(source catalogSource, cache *CacheService, logger *zap.Logger, cfg CatalogConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &CatalogService{source: source, cache: cache, logger: logger, cfg: cfg}
}

// List returns every catalog entry in stable catalog order.
func (s *CatalogService) List(ctx context.Context) ([]models.CatalogEntry, error) {
	s.mu.RLock()
	if s.entries != nil {
		entries := s.entries
		s.mu.RUnlock()
		return entries, nil
	}
	s.mu.RUnlock()

	return s.load(ctx)
}

// Get returns the catalog entry for a program id.
func (s *CatalogService) Get(ctx context.Context, programID string) (*models.CatalogEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	idx, ok := s.byID[programID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	entry := entries[idx]
	return &entry, nil
}

func (s *CatalogService) load(ctx context.Context) ([]models.CatalogEntry, error) {
	if s.cfg.CacheEnabled && s.cache.Enabled() {
		var cached []models.CatalogEntry
		hit, err := s.cache.Get(ctx, catalogCacheKey, &cached)
		if err == nil && hit && len(cached) > 0 {
			s.index(cached)
			return cached, nil
		}
	}

	entries, err := s.source.LoadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBadCatalog.Code, appErrors.ErrBadCatalog.Status, appErrors.ErrBadCatalog.Message)
	}
	s.index(entries)

	if s.cfg.CacheEnabled && s.cache.Enabled() {
		if err := s.cache.Set(ctx, catalogCacheKey, entries, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

func (s *CatalogService) index(entries []models.CatalogEntry) {
	byID := make(map[string]int, len(entries))
	for i, entry := range entries {
		byID[entry.Meta.ID] = i
	}
	s.mu.Lock()
	s.entries = entries
	s.byID = byID
	s.mu.Unlock()
}
