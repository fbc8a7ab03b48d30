package repository

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lumafit/coach-api/internal/models"
)

//go:embed programs/*.yaml
var programFS embed.FS

// CatalogRepository loads the static training-program catalog. Program
// definitions are YAML documents embedded in the binary; there is no write
// interface.
type CatalogRepository struct{}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

type programDocument struct {
	Meta    models.ProgramMeta `yaml:"meta"`
	Program models.Program     `yaml:"program"`
}

// LoadAll parses every embedded program definition. All-or-nothing: a single
// malformed document fails the whole load so callers never see a partial
// catalog. Entries are returned in filename order, which is stable across
// calls and is the tie-break order for equal match scores.
func (r *CatalogRepository) LoadAll() ([]models.CatalogEntry, error) {
	names, err := fs.Glob(programFS, "programs/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalog programs: %w", err)
	}
	sort.Strings(names)

	entries := make([]models.CatalogEntry, 0, len(names))
	for _, name := range names {
		raw, err := programFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read catalog program %s: %w", name, err)
		}
		var doc programDocument
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog program %s: %w", name, err)
		}
		entry := models.CatalogEntry{Meta: doc.Meta, Program: doc.Program}
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("invalid catalog program %s: %w", name, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func validateEntry(entry models.CatalogEntry) error {
	if entry.Meta.ID == "" {
		return fmt.Errorf("missing meta id")
	}
	if entry.Meta.ID != entry.Program.ID {
		return fmt.Errorf("meta id %q does not match program id %q", entry.Meta.ID, entry.Program.ID)
	}
	if entry.Meta.DaysPerWeek < 1 {
		return fmt.Errorf("days_per_week must be >= 1")
	}
	if entry.Meta.Weeks < 1 {
		return fmt.Errorf("weeks must be >= 1")
	}
	for wi, week := range entry.Program.Weeks {
		if len(week.Days) > 7 {
			return fmt.Errorf("week %d has %d days, max is 7", wi+1, len(week.Days))
		}
		for di, day := range week.Days {
			for _, block := range day.Blocks {
				for _, ex := range block.Exercises {
					if ex.Sets <= 0 {
						return fmt.Errorf("week %d day %d exercise %q has non-positive sets", wi+1, di+1, ex.Name)
					}
				}
			}
		}
	}
	return nil
}
