package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenExercisesPreservesEveryBlockEntry(t *testing.T) {
	day := Day{
		Name: "Upper A",
		Blocks: []Block{
			{Title: "Warm-up", Exercises: []Exercise{
				{Name: "Band Pull-Apart", Sets: 2, Reps: "15"},
			}},
			{Title: "Mobility"},
			{Title: "Main", Exercises: []Exercise{
				{Name: "Bench Press", Sets: 3, Reps: "5"},
				{Name: "Row", Sets: 3, Reps: "8"},
			}},
		},
	}

	flat := day.FlattenExercises()

	total := 0
	for _, block := range day.Blocks {
		total += len(block.Exercises)
	}
	require.Len(t, flat, total)
	assert.Equal(t, "Band Pull-Apart", flat[0].Name)
	assert.Equal(t, "Bench Press", flat[1].Name)
	assert.Equal(t, "Row", flat[2].Name)
}

func TestFlattenExercisesEmptyDay(t *testing.T) {
	assert.Empty(t, Day{Name: "Rest"}.FlattenExercises())
}
