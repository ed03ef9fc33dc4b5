// Package gitops records changes to a data directory as git commits.
package gitops

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Repo is a data directory under git, committing as a fixed author.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Open returns a Repo for dir. It does not touch the filesystem.
func Open(dir, authorName, authorEmail string) *Repo {
	return &Repo{Dir: dir, AuthorName: authorName, AuthorEmail: authorEmail}
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Init creates the repository if it does not exist yet.
func (r *Repo) Init() error {
	if IsRepo(r.Dir) {
		return nil
	}
	if _, err := r.git("init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// Dirty reports whether the working tree has uncommitted changes.
func (r *Repo) Dirty() (bool, error) {
	out, err := r.git("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// CommitAll stages everything and commits it. It returns the short hash of
// the new commit, or "" when there was nothing to commit.
func (r *Repo) CommitAll(message string) (string, error) {
	dirty, err := r.Dirty()
	if err != nil {
		return "", err
	}
	if !dirty {
		log.Debugf("git: nothing to commit in %s", r.Dir)
		return "", nil
	}

	if _, err := r.git("add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.git("commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := r.git("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	hash := strings.TrimSpace(string(out))
	log.Debugf("git: committed %s %q", hash, message)
	return hash, nil
}

// git runs a git subcommand in the repo. Committer identity falls back to
// the author so commits work on machines without a global git config.
func (r *Repo) git(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w", bytes.TrimSpace(out), err)
	}
	return out, nil
}
