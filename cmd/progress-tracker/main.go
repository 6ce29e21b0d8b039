// Package main provides the progress-tracker server and its maintenance commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/progress-tracker/internal/config"
	"github.com/terra-clan/progress-tracker/internal/roadmap"
	"github.com/terra-clan/progress-tracker/internal/storage"
)

var roadmapFile string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "progress-tracker",
		Short:         "Learning roadmap progress tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newRoadmapCmd())

	return rootCmd
}

// setup loads configuration and installs the JSON logger
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DATABASE_DSN is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
			if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			return nil
		},
	}
}

func newRoadmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Validate and print a roadmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := loadRoadmap(roadmapFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range r.Levels {
				fmt.Fprintf(out, "%d. %s [%s]\n", l.Number, l.Title, l.Color)
				for i, task := range l.Tasks {
					fmt.Fprintf(out, "   %d) %s\n", i+1, task)
				}
			}
			fmt.Fprintf(out, "%d levels, %d tasks\n", len(r.Levels), r.TaskCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&roadmapFile, "file", "", "roadmap YAML file (default: built-in roadmap)")
	return cmd
}

func loadRoadmap(path string) (*roadmap.Roadmap, error) {
	if path == "" {
		return roadmap.Default()
	}
	return roadmap.Load(path)
}
