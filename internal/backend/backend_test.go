package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/config"
	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store/csvstore"
	"github.com/spendwise/spendwise/internal/store/sqlitestore"
)

func TestOpen_CSV(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(config.Default("u1"), dir)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &csvstore.Store{}, s)
}

func TestOpen_SQLiteRelativePath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default("u1")
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.SQLitePath = filepath.Join("db", "spend.db")

	s, err := Open(cfg, dir)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &sqlitestore.Store{}, s)

	_, err = s.AddCategory(context.Background(), model.Category{UserID: "u1", Name: "Food"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "db", "spend.db"))
	require.NoError(t, err, "database is created under the data directory")
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.Default("u1")
	cfg.Storage.Backend = "postgres"

	_, err := Open(cfg, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}
