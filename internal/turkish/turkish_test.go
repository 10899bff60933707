package turkish

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/summarize"
)

const validArticleJSON = `{"title":"Yeni Bir Öte Gezegen Keşfedildi","text":"**Gökbilimciler** yeni bir gezegen buldu.","tags":["ötegezegen","keşif"]}`

type fakeGen struct {
	calls int
	resp  string
	err   error
}

func (f *fakeGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.resp != "" {
		return f.resp, nil
	}
	return validArticleJSON, nil
}

func (f *fakeGen) Close() error { return nil }

func summarizedSet(ids ...string) *paper.DailySet {
	set := &paper.DailySet{AnnouncementDate: "2025-06-02"}
	for _, id := range ids {
		set.Papers = append(set.Papers, paper.Paper{
			ID:          id,
			Title:       "Paper " + id,
			Abstract:    "An abstract.",
			Summary:     "A summary.",
			SummaryHTML: "<p>A summary.</p>",
			TweetHook:   paper.TweetHook{Hook: "hook"},
		})
	}
	return set
}

func TestGenerateCreatesArticles(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(0), 5, 50)

	articles, err := g.Generate(context.Background(), summarizedSet("a", "b"), nil)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "news-2025-06-02-a", articles[0].ID)
	assert.Equal(t, "a", articles[0].ArxivID)
	assert.Equal(t, "Yeni Bir Öte Gezegen Keşfedildi", articles[0].Title)
	assert.Equal(t, "2025-06-02", articles[0].Date)
	assert.NotEmpty(t, articles[0].ImageURL)
	assert.False(t, articles[0].Edited)
}

func TestGenerateSkipsProcessedPapers(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(0), 5, 50)

	existing := []Article{{ID: "news-2025-06-01-a", ArxivID: "a", Title: "Eski haber"}}
	articles, err := g.Generate(context.Background(), summarizedSet("a", "b"), existing)
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "b", articles[0].ArxivID, "fresh articles come first")
	assert.Equal(t, "a", articles[1].ArxivID)
	assert.Equal(t, 1, gen.calls, "already-processed papers cost no AI calls")
}

func TestGenerateSkipsUnsummarizedPapers(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(0), 5, 50)

	set := summarizedSet("a")
	set.Papers = append(set.Papers, paper.Paper{ID: "bare", Title: "No summary yet"})

	articles, err := g.Generate(context.Background(), set, nil)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "a", articles[0].ArxivID)
}

func TestGenerateHonorsPerDayCap(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(0), 1, 50)

	articles, err := g.Generate(context.Background(), summarizedSet("a", "b", "c"), nil)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateStopsOnQuota(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(1), 5, 50)

	articles, err := g.Generate(context.Background(), summarizedSet("a", "b", "c"), nil)
	require.NoError(t, err, "quota exhaustion keeps partial results")
	assert.Len(t, articles, 1)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateCapsStoredItems(t *testing.T) {
	gen := &fakeGen{}
	g := New(gen, summarize.NewBudget(0), 5, 3)

	var existing []Article
	for i := 0; i < 3; i++ {
		existing = append(existing, Article{ArxivID: fmt.Sprintf("old-%d", i)})
	}

	articles, err := g.Generate(context.Background(), summarizedSet("a"), existing)
	require.NoError(t, err)
	require.Len(t, articles, 3, "feed is capped at maxItems")
	assert.Equal(t, "a", articles[0].ArxivID, "newest first")
	assert.Equal(t, "old-1", articles[2].ArxivID, "oldest entry falls off")
}

func TestParseNewsJSON(t *testing.T) {
	payload, err := parseNewsJSON("```json\n" + validArticleJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Yeni Bir Öte Gezegen Keşfedildi", payload.Title)
	assert.Len(t, payload.Tags, 2)

	_, err = parseNewsJSON("not json")
	require.Error(t, err)

	_, err = parseNewsJSON(`{"title":"","text":""}`)
	require.Error(t, err)
}

func TestApplyEdit(t *testing.T) {
	articles := []Article{
		{ArxivID: "a", Title: "Orijinal", Text: "Metin"},
		{ArxivID: "b", Title: "Diğer"},
	}

	edited := ApplyEdit(articles, "a", "Düzeltilmiş", "", nil)

	assert.Equal(t, "Düzeltilmiş", edited[0].Title)
	assert.Equal(t, "Metin", edited[0].Text, "empty fields keep their value")
	assert.True(t, edited[0].Edited)
	assert.False(t, edited[1].Edited)
}
