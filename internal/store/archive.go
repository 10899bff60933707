package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
)

// ArchiveIndex lists the dates with an archived paper set, newest first.
type ArchiveIndex struct {
	Dates []string `json:"dates"`
}

// Contains reports whether the index already has the given date.
func (idx *ArchiveIndex) Contains(date string) bool {
	for _, d := range idx.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// Archive writes the set into its dated slot and registers the date in the
// index. Re-running for the same date overwrites the slot without adding a
// second index entry.
func (s *Store) Archive(set *paper.DailySet, retentionDays int) error {
	if set.AnnouncementDate == "" {
		return fmt.Errorf("cannot archive a set without an announcement date")
	}

	slot := filepath.Join(s.archiveDir(), set.AnnouncementDate+".json")
	if err := writeJSONAtomic(slot, set); err != nil {
		return fmt.Errorf("write archive slot: %w", err)
	}

	idx, err := s.LoadIndex()
	if err != nil {
		return err
	}

	if !idx.Contains(set.AnnouncementDate) {
		idx.Dates = append(idx.Dates, set.AnnouncementDate)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(idx.Dates)))
	idx.Dates = pruneOldDates(idx.Dates, retentionDays, time.Now().UTC())

	if err := writeJSONAtomic(s.indexPath(), idx); err != nil {
		return fmt.Errorf("write archive index: %w", err)
	}

	logger.Info("archived paper set", "date", set.AnnouncementDate, "papers", len(set.Papers))
	return nil
}

// LoadIndex reads the archive index; a missing file yields an empty index.
func (s *Store) LoadIndex() (*ArchiveIndex, error) {
	var idx ArchiveIndex
	if _, err := readJSON(s.indexPath(), &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// LoadArchived reads one archived day's paper set.
func (s *Store) LoadArchived(date string) (*paper.DailySet, error) {
	var set paper.DailySet
	ok, err := readJSON(filepath.Join(s.archiveDir(), date+".json"), &set)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no archive entry for %s", date)
	}
	return &set, nil
}

// pruneOldDates drops index entries older than the retention horizon.
// Slot files stay on disk; only the index forgets them.
func pruneOldDates(dates []string, retentionDays int, now time.Time) []string {
	if retentionDays <= 0 {
		return dates
	}
	cutoff := now.AddDate(0, 0, -retentionDays).Format("2006-01-02")
	kept := dates[:0]
	for _, d := range dates {
		if d >= cutoff {
			kept = append(kept, d)
		}
	}
	return kept
}

// SplitArchive regroups the current paper set into per-date archive slots
// using each paper's published date. Used to repair a papers.json that
// accumulated several announcement days.
func (s *Store) SplitArchive(retentionDays int) (int, error) {
	set, err := s.LoadPaperSet()
	if err != nil {
		return 0, err
	}

	byDate := make(map[string][]paper.Paper)
	for _, p := range set.Papers {
		date := p.Published
		if date == "" {
			date = set.AnnouncementDate
		}
		byDate[date] = append(byDate[date], p)
	}

	for date, papers := range byDate {
		day := &paper.DailySet{
			AnnouncementDate: date,
			UpdatedAt:        set.UpdatedAt,
			Category:         set.Category,
			PaperCount:       len(papers),
			Papers:           papers,
		}
		if err := s.Archive(day, retentionDays); err != nil {
			return 0, fmt.Errorf("split archive for %s: %w", date, err)
		}
	}

	return len(byDate), nil
}
