package models

// Goal enumerates the training goals a program targets.
type Goal string

const (
	GoalHypertrophy Goal = "hypertrophy"
	GoalStrength    Goal = "strength"
	GoalCut         Goal = "cut"
	GoalGeneral     Goal = "general"
)

// Level enumerates experience levels.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// LevelDistance returns how many steps apart two levels are (0 exact, 1
// adjacent, 2 distant). Unknown levels count as distant.
func LevelDistance(a, b Level) int {
	rank := func(l Level) int {
		switch l {
		case LevelBeginner:
			return 0
		case LevelIntermediate:
			return 1
		case LevelAdvanced:
			return 2
		}
		return -1
	}
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return 2
	}
	d := ra - rb
	if d < 0 {
		d = -d
	}
	return d
}

// Exercise is one prescribed movement within a block.
type Exercise struct {
	Name    string `yaml:"name" json:"name"`
	Sets    int    `yaml:"sets" json:"sets"`
	Reps    string `yaml:"reps" json:"reps"`
	RestSec int    `yaml:"rest_sec,omitempty" json:"rest_sec,omitempty"`
}

// Block groups exercises under a title, e.g. "Warm-up" or "Main lifts".
type Block struct {
	Title     string     `yaml:"title" json:"title"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// Day is a single training day composed of ordered blocks.
type Day struct {
	Name   string  `yaml:"name" json:"name"`
	Blocks []Block `yaml:"blocks" json:"blocks"`
}

// FlattenExercises concatenates every block's exercises in block order.
func (d Day) FlattenExercises() []Exercise {
	var out []Exercise
	for _, block := range d.Blocks {
		out = append(out, block.Exercises...)
	}
	return out
}

// Week is an ordered sequence of training days.
type Week struct {
	Days []Day `yaml:"days" json:"days"`
}

// Program holds the full training content of a catalog program.
type Program struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Goal  Goal   `yaml:"goal" json:"goal"`
	Weeks []Week `yaml:"weeks" json:"weeks"`
	// DeloadWeeks lists scheduled lower-intensity week markers. The markers
	// use the same indexing convention the caller supplies to IsDeloadWeek.
	DeloadWeeks []int `yaml:"deload_weeks,omitempty" json:"deload_weeks,omitempty"`
}

// ProgramMeta is the catalog-level descriptor used for matching and browsing.
type ProgramMeta struct {
	ID          string   `yaml:"id" json:"id"`
	Goal        Goal     `yaml:"goal" json:"goal"`
	Level       Level    `yaml:"level" json:"level"`
	DaysPerWeek int      `yaml:"days_per_week" json:"days_per_week"`
	Weeks       int      `yaml:"weeks" json:"weeks"`
	// Equipment lists required equipment tags; empty means bodyweight-only.
	Equipment []string `yaml:"equipment,omitempty" json:"equipment,omitempty"`
	// DurationPerSessionMin is the expected session length; 0 means undeclared.
	DurationPerSessionMin int `yaml:"duration_per_session_min,omitempty" json:"duration_per_session_min,omitempty"`
}

// CatalogEntry pairs a program with its metadata. Invariant: Meta.ID == Program.ID.
type CatalogEntry struct {
	Meta    ProgramMeta `json:"meta"`
	Program Program     `json:"program"`
}
