package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

func testSet(date string, ids ...string) *paper.DailySet {
	set := &paper.DailySet{
		AnnouncementDate: date,
		UpdatedAt:        time.Now().UTC(),
		Category:         "astro-ph.EP",
	}
	for _, id := range ids {
		set.Papers = append(set.Papers, paper.Paper{
			ID:        id,
			Title:     "Paper " + id,
			Published: date,
		})
	}
	return set
}

func TestPaperSetRoundtrip(t *testing.T) {
	st := New(t.TempDir())

	saved := testSet("2025-06-02", "2506.00001", "2506.00002")
	require.NoError(t, st.SavePaperSet(saved))

	loaded, err := st.LoadPaperSet()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", loaded.AnnouncementDate)
	assert.Equal(t, 2, loaded.PaperCount)
	require.Len(t, loaded.Papers, 2)
	assert.Equal(t, "2506.00001", loaded.Papers[0].ID)
}

func TestLoadPaperSetMissingFile(t *testing.T) {
	st := New(t.TempDir())

	set, err := st.LoadPaperSet()
	require.NoError(t, err)
	assert.Empty(t, set.Papers)
	assert.Empty(t, set.AnnouncementDate)
}

func TestByID(t *testing.T) {
	set := testSet("2025-06-02", "2506.00001", "2506.00002")

	assert.NotNil(t, set.ByID("2506.00002"))
	assert.Nil(t, set.ByID("2506.99999"))
}
