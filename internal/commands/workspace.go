package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/spendwise/spendwise/internal/backend"
	"github.com/spendwise/spendwise/internal/config"
	"github.com/spendwise/spendwise/internal/gitops"
	"github.com/spendwise/spendwise/internal/store"
)

// workspace is an opened data directory: its config and store.
type workspace struct {
	dir   string
	cfg   *config.Config
	store store.Store
}

func openWorkspace(dataDir string) (*workspace, error) {
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}
	applyLogLevel(cfg.Log.Level)

	if cfg.User.ID == "" {
		return nil, errors.New("no user id configured; run spendwise init or set SPENDWISE_USER_ID")
	}

	s, err := backend.Open(cfg, dir)
	if err != nil {
		return nil, err
	}
	return &workspace{dir: dir, cfg: cfg, store: s}, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

func (w *workspace) user() string {
	return w.cfg.User.ID
}

// commit records the data directory in git when auto-commit is on.
func (w *workspace) commit(message string) {
	if !w.cfg.Git.AutoCommit || !gitops.IsRepo(w.dir) {
		return
	}
	repo := gitops.Open(w.dir, w.cfg.Git.AuthorName, w.cfg.Git.AuthorEmail)
	if _, err := repo.CommitAll(message); err != nil {
		log.Warnf("auto-commit failed: %v", err)
	}
}

// applyLogLevel sets the configured level unless LOG_LEVEL already did.
func applyLogLevel(level string) {
	if level == "" || os.Getenv("LOG_LEVEL") != "" {
		return
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("ignoring log.level %q: %v", level, err)
		return
	}
	log.SetLevel(lvl)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}
