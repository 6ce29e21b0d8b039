// Package roadmap loads the level/task roadmap from YAML and seeds it into
// a repository.
package roadmap

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/storage"
)

//go:embed default.yaml
var defaultRoadmap []byte

// Roadmap is an ordered list of levels with their task titles
type Roadmap struct {
	Levels []Level `yaml:"levels"`
}

// Level is one roadmap entry
type Level struct {
	Number      int               `yaml:"number"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Color       models.LevelColor `yaml:"color"`
	Tasks       []string          `yaml:"tasks"`
}

// TaskCount returns the number of tasks across all levels
func (r *Roadmap) TaskCount() int {
	n := 0
	for _, l := range r.Levels {
		n += len(l.Tasks)
	}
	return n
}

// Default returns the built-in seven-level roadmap
func Default() (*Roadmap, error) {
	return Parse(defaultRoadmap)
}

// Load reads a roadmap from a YAML file
func Load(path string) (*Roadmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a YAML roadmap
func Parse(data []byte) (*Roadmap, error) {
	var r Roadmap
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(r.Levels, func(i, j int) bool { return r.Levels[i].Number < r.Levels[j].Number })
	return &r, nil
}

// Validate checks level numbers, titles and colors
func (r *Roadmap) Validate() error {
	if len(r.Levels) == 0 {
		return fmt.Errorf("roadmap has no levels")
	}
	seen := make(map[int]bool, len(r.Levels))
	for i, l := range r.Levels {
		if l.Number < 1 {
			return fmt.Errorf("level %d: number must be positive", i)
		}
		if seen[l.Number] {
			return fmt.Errorf("level %d: duplicate number", l.Number)
		}
		seen[l.Number] = true
		if strings.TrimSpace(l.Title) == "" {
			return fmt.Errorf("level %d: title is required", l.Number)
		}
		if !l.Color.IsValid() {
			return fmt.Errorf("level %d: unknown color %q", l.Number, l.Color)
		}
		for j, task := range l.Tasks {
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("level %d: task %d has no title", l.Number, j)
			}
		}
	}
	return nil
}

// SeedResult counts what Seed created
type SeedResult struct {
	Levels int
	Tasks  int
}

// Seed creates every roadmap level whose number is not taken yet, together
// with its tasks, and the stats singleton if there is none. Existing levels
// are left untouched, so running it twice is harmless.
func Seed(ctx context.Context, repo storage.Repository, r *Roadmap) (SeedResult, error) {
	var res SeedResult

	for _, l := range r.Levels {
		existing, err := repo.GetLevelByNumber(ctx, l.Number)
		if err != nil {
			return res, fmt.Errorf("failed to look up level %d: %w", l.Number, err)
		}
		if existing != nil {
			continue
		}

		level := &models.Level{
			LevelNumber: l.Number,
			Title:       l.Title,
			Description: l.Description,
			Color:       l.Color,
		}
		if err := repo.CreateLevel(ctx, level); err != nil {
			return res, fmt.Errorf("failed to create level %d: %w", l.Number, err)
		}
		res.Levels++

		for i, title := range l.Tasks {
			task := &models.Task{LevelID: level.ID, Title: title, Order: i}
			if err := repo.CreateTask(ctx, task); err != nil {
				return res, fmt.Errorf("failed to create task %q: %w", title, err)
			}
			res.Tasks++
		}
	}

	stats, err := repo.GetStats(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats == nil {
		if _, err := repo.UpdateStats(ctx, models.StatsPatch{}); err != nil {
			return res, fmt.Errorf("failed to create user stats: %w", err)
		}
	}

	slog.Info("roadmap seeded", "levels_created", res.Levels, "tasks_created", res.Tasks)
	return res, nil
}
