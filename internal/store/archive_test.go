package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

func TestArchiveIsIdempotent(t *testing.T) {
	st := New(t.TempDir())
	set := testSet("2025-06-02", "2506.00001")

	require.NoError(t, st.Archive(set, 0))
	require.NoError(t, st.Archive(set, 0))
	require.NoError(t, st.Archive(set, 0))

	idx, err := st.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-02"}, idx.Dates, "repeated archiving must not duplicate index entries")

	archived, err := st.LoadArchived("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, set.AnnouncementDate, archived.AnnouncementDate)
	require.Len(t, archived.Papers, 1)
}

func TestArchiveKeepsIndexNewestFirst(t *testing.T) {
	st := New(t.TempDir())

	require.NoError(t, st.Archive(testSet("2025-06-02", "a"), 0))
	require.NoError(t, st.Archive(testSet("2025-06-04", "b"), 0))
	require.NoError(t, st.Archive(testSet("2025-06-03", "c"), 0))

	idx, err := st.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-04", "2025-06-03", "2025-06-02"}, idx.Dates)
}

func TestArchiveRejectsUndatedSet(t *testing.T) {
	st := New(t.TempDir())
	err := st.Archive(&paper.DailySet{}, 0)
	require.Error(t, err)
}

func TestPruneOldDates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	dates := []string{"2025-06-09", "2025-03-15", "2024-12-01"}

	kept := pruneOldDates(dates, 90, now)
	assert.Equal(t, []string{"2025-06-09", "2025-03-15"}, kept)

	// Retention disabled keeps everything.
	all := []string{"2025-06-09", "2020-01-01"}
	assert.Equal(t, all, pruneOldDates(all, 0, now))
}

func TestLoadArchivedMissingDate(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.LoadArchived("1999-01-01")
	require.Error(t, err)
}

func TestSplitArchive(t *testing.T) {
	st := New(t.TempDir())

	set := &paper.DailySet{
		AnnouncementDate: "2025-06-04",
		Category:         "astro-ph.EP",
		Papers: []paper.Paper{
			{ID: "2506.00001", Published: "2025-06-02"},
			{ID: "2506.00002", Published: "2025-06-03"},
			{ID: "2506.00003", Published: "2025-06-03"},
			{ID: "2506.00004"}, // no date: falls back to the set's
		},
	}
	require.NoError(t, st.SavePaperSet(set))

	days, err := st.SplitArchive(0)
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	idx, err := st.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-04", "2025-06-03", "2025-06-02"}, idx.Dates)

	day, err := st.LoadArchived("2025-06-03")
	require.NoError(t, err)
	assert.Len(t, day.Papers, 2)
	assert.Equal(t, 2, day.PaperCount)
}
