// Package store persists all cross-run state as JSON files under the data
// directory: the current paper set, the dated archive with its index, and
// the per-platform post ledgers. Writes go through a temp-file rename so an
// overlapping run never observes a partial file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) papersPath() string  { return filepath.Join(s.dataDir, "papers.json") }
func (s *Store) archiveDir() string  { return filepath.Join(s.dataDir, "archive") }
func (s *Store) indexPath() string   { return filepath.Join(s.archiveDir(), "index.json") }
func (s *Store) newsPath() string    { return filepath.Join(s.dataDir, "arxiv_news.json") }
func (s *Store) ledgerPath(platform string) string {
	return filepath.Join(s.dataDir, platform+"_posted.json")
}

// SavePaperSet overwrites the current day's paper set.
func (s *Store) SavePaperSet(set *paper.DailySet) error {
	set.PaperCount = len(set.Papers)
	return writeJSONAtomic(s.papersPath(), set)
}

// LoadPaperSet reads the current paper set. A missing file yields an empty set.
func (s *Store) LoadPaperSet() (*paper.DailySet, error) {
	var set paper.DailySet
	ok, err := readJSON(s.papersPath(), &set)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &paper.DailySet{}, nil
	}
	return &set, nil
}

func writeJSONAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// readJSON reports (false, nil) when the file does not exist or is empty.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
