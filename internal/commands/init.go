package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/backend"
	"github.com/spendwise/spendwise/internal/config"
	"github.com/spendwise/spendwise/internal/gitops"
	"github.com/spendwise/spendwise/internal/store"
)

type initOptions struct {
	user    string
	backend string
	noGit   bool
	empty   bool
}

func newInitCommand(dataDir *string) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new spendwise data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := *dataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.user, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendCSV, "storage backend (csv or sqlite)")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")
	cmd.Flags().BoolVar(&opts.empty, "empty", false, "do not seed default categories")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory logs: %w", err)
	}

	cfg := config.Default(opts.user)
	cfg.Storage.Backend = opts.backend
	if opts.noGit {
		cfg.Git.AutoCommit = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := ".env\n*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logs", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	s, err := backend.Open(cfg, dir)
	if err != nil {
		return err
	}
	defer s.Close()

	seeded := 0
	if !opts.empty {
		cats, err := store.Seed(ctx, s, store.DefaultCategories(opts.user))
		if err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
		seeded = len(cats)
	}

	if opts.noGit {
		fmt.Fprintf(out, "Initialized spendwise data at %s with %d categories\n", dir, seeded)
		return nil
	}

	repo := gitops.Open(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err := repo.Init(); err != nil {
		return err
	}
	hash, err := repo.CommitAll("init: spendwise data for " + opts.user)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized spendwise data at %s with %d categories (%s)\n", dir, seeded, hash)
	return nil
}
