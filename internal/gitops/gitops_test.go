package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func lastCommit(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Open(dir, "Test", "test@example.com").Init())

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestInit_Idempotent(t *testing.T) {
	requireGit(t)
	repo := Open(t.TempDir(), "Test", "test@example.com")
	require.NoError(t, repo.Init())
	require.NoError(t, repo.Init())
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Open(dir, "Test", "test@example.com").Init())
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	repo := Open(dir, "Test Author", "test@example.com")
	require.NoError(t, repo.Init())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.csv"), []byte("hello"), 0o644))

	hash, err := repo.CommitAll("category: add Food")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, lastCommit(t, dir, "%s"), "category: add Food")
	assert.Contains(t, lastCommit(t, dir, "%an <%ae>"), "Test Author <test@example.com>")
}

func TestCommitAll_CleanTree(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	repo := Open(dir, "Test Author", "test@example.com")
	require.NoError(t, repo.Init())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	_, err := repo.CommitAll("first")
	require.NoError(t, err)

	hash, err := repo.CommitAll("second")
	require.NoError(t, err)
	assert.Empty(t, hash, "clean tree produces no commit")
	assert.Contains(t, lastCommit(t, dir, "%s"), "first")
}

func TestDirty(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	repo := Open(dir, "Test", "test@example.com")
	require.NoError(t, repo.Init())

	dirty, err := repo.Dirty()
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	dirty, err = repo.Dirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}
