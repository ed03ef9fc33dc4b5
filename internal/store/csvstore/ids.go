package csvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// idMarks holds the highest id ever issued, so ids freed by a delete stay retired.
type idMarks struct {
	Categories   int `yaml:"categories"`
	Transactions int `yaml:"transactions"`
}

func (s *Store) readIDMarks() (idMarks, error) {
	var m idMarks
	path := filepath.Join(s.dir, IDsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

func (s *Store) writeIDMarks(m idMarks) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling id marks: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, IDsFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", IDsFile, err)
	}
	return nil
}
