// Package backend opens the configured store for a data directory.
package backend

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/spendwise/spendwise/internal/config"
	"github.com/spendwise/spendwise/internal/store"
	"github.com/spendwise/spendwise/internal/store/csvstore"
	"github.com/spendwise/spendwise/internal/store/sqlitestore"
)

// Open returns the store selected by cfg.Storage.Backend, rooted at dataDir.
// A relative sqlite path is resolved against dataDir.
func Open(cfg *config.Config, dataDir string) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendCSV:
		log.Debugf("using CSV store in %s", dataDir)
		return csvstore.New(dataDir), nil
	case config.BackendSQLite:
		path := cfg.Storage.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
