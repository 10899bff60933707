package store

import (
	"fmt"
	"os"
	"path/filepath"
)

func (s *Store) rssPath() string { return filepath.Join(s.dataDir, "feed.xml") }

// SaveRSS overwrites the rendered feed document.
func (s *Store) SaveRSS(document string) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, "tmp-*.xml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(document); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close feed: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.rssPath()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename feed: %w", err)
	}
	return nil
}
