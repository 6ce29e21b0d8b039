package roadmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/storage"
)

func TestDefaultRoadmap(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	require.Len(t, r.Levels, 7)
	assert.Equal(t, 33, r.TaskCount())

	for i, l := range r.Levels {
		assert.Equal(t, i+1, l.Number)
	}
	assert.Equal(t, models.ColorSuccess, r.Levels[0].Color)
	assert.Equal(t, models.ColorPurple, r.Levels[6].Color)
	assert.Equal(t, "HTML基本構造の理解", r.Levels[0].Tasks[0])
}

func TestParseRejectsBadRoadmaps(t *testing.T) {
	cases := map[string]string{
		"empty":     "levels: []",
		"number":    "levels: [{number: 0, title: a, color: primary}]",
		"duplicate": "levels: [{number: 1, title: a, color: primary}, {number: 1, title: b, color: accent}]",
		"title":     "levels: [{number: 1, title: '', color: primary}]",
		"color":     "levels: [{number: 1, title: a, color: teal}]",
		"task":      "levels: [{number: 1, title: a, color: primary, tasks: ['']}]",
		"yaml":      "levels: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSortsByNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.yaml")
	doc := `
levels:
  - number: 2
    title: Second
    color: accent
    tasks: [b1]
  - number: 1
    title: First
    color: primary
    tasks: [a1, a2]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	require.Len(t, r.Levels, 2)
	assert.Equal(t, "First", r.Levels[0].Title)
	assert.Equal(t, 3, r.TaskCount())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	r, err := Default()
	require.NoError(t, err)

	res, err := Seed(ctx, repo, r)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Levels: 7, Tasks: 33}, res)

	res, err = Seed(ctx, repo, r)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)

	levels, err := repo.ListLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 7)
	for _, l := range levels {
		assert.Equal(t, 0, l.Progress)
		assert.False(t, l.IsCompleted)
	}

	tasks, err := repo.ListTasksByLevel(ctx, levels[1].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, i, task.Order)
	}

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.StreakDays)
	assert.Nil(t, stats.LastActivityDate)
}

func TestSeedKeepsExistingLevels(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	require.NoError(t, repo.CreateLevel(ctx, &models.Level{LevelNumber: 1, Title: "Mine", Color: models.ColorDanger}))

	r, err := Default()
	require.NoError(t, err)
	res, err := Seed(ctx, repo, r)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Levels)
	assert.Equal(t, 30, res.Tasks)

	l, err := repo.GetLevelByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mine", l.Title)
}
