package summarize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

const validSummary = `**Why It Matters**

Planets around other stars tell us how common worlds like ours are.

**What They Did**

The team watched a star dim as its planet crossed in front of it.

**Key Findings**

The planet is twice Earth's size and orbits every three days.

**Looking Forward**

Follow-up observations could reveal whether it holds an atmosphere.`

const validHookJSON = `{"hook":"A scorching world just showed up where none should exist.","claim":"Astronomers confirmed a planet twice Earth's size on a 3-day orbit.","evidence":"Transit depth measurements pin its radius to 2.1 Earth radii.","question":"Could worlds like this keep an atmosphere?"}`

// fakeGen answers summary prompts with canned text and hook prompts with
// canned JSON, counting every call.
type fakeGen struct {
	calls       int
	badSummary  int // serve this many section-less summaries first
	summaryText string
	hookJSON    string
}

func (f *fakeGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if strings.Contains(prompt, "Twitter thread hook") {
		if f.hookJSON != "" {
			return f.hookJSON, nil
		}
		return validHookJSON, nil
	}
	if f.badSummary > 0 {
		f.badSummary--
		return "Just a plain paragraph with no sections.", nil
	}
	if f.summaryText != "" {
		return f.summaryText, nil
	}
	return validSummary, nil
}

func (f *fakeGen) Close() error { return nil }

func testPaper(id string) paper.Paper {
	return paper.Paper{
		ID:       id,
		Title:    "A transiting super-earth",
		Abstract: "We report the discovery of a transiting planet.",
	}
}

func TestEnrichGeneratesSummaryAndHook(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(0)
	papers := []paper.Paper{testPaper("2506.00001")}

	papers = New(gen, budget).Enrich(context.Background(), papers)

	p := &papers[0]
	assert.True(t, p.HasSummary())
	assert.True(t, p.HasHook())
	assert.Contains(t, p.Summary, "**Key Findings**")
	assert.Contains(t, p.SummaryHTML, "<h4>Key Findings</h4>")
	assert.Equal(t, 2, gen.calls, "one summary call plus one hook call")
}

func TestEnrichSkipsAlreadyEnrichedPapers(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(0)

	p := testPaper("2506.00001")
	p.Summary = validSummary
	p.SummaryHTML = FormatSummaryHTML(validSummary)
	p.TweetHook = paper.TweetHook{Hook: "Cached hook."}

	New(gen, budget).Enrich(context.Background(), []paper.Paper{p})

	assert.Zero(t, gen.calls, "cached content must cost no AI calls")
	_, _, cacheHits := budget.Stats()
	assert.Equal(t, 1, cacheHits)
}

func TestEnrichRegeneratesOnlyMissingHook(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(0)

	// Carried over from a previous run where the hook call failed.
	p := testPaper("2506.00001")
	p.Summary = validSummary
	p.SummaryHTML = FormatSummaryHTML(validSummary)

	papers := New(gen, budget).Enrich(context.Background(), []paper.Paper{p})

	assert.Equal(t, 1, gen.calls, "an existing summary must not be regenerated")
	assert.Equal(t, validSummary, papers[0].Summary)
	assert.True(t, papers[0].HasHook())
}

func TestEnrichRegeneratesOnlyMissingSummary(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(0)

	p := testPaper("2506.00001")
	p.TweetHook = paper.TweetHook{Hook: "Cached hook."}

	papers := New(gen, budget).Enrich(context.Background(), []paper.Paper{p})

	assert.Equal(t, 1, gen.calls, "an existing hook must not be regenerated")
	assert.True(t, papers[0].HasSummary())
	assert.Equal(t, "Cached hook.", papers[0].TweetHook.Hook)
}

func TestEnrichMemoizesWithinRun(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(0)
	papers := []paper.Paper{testPaper("2506.00001"), testPaper("2506.00001")}

	New(gen, budget).Enrich(context.Background(), papers)

	assert.Equal(t, 2, gen.calls, "duplicate ids share one generation")
	assert.Equal(t, papers[0].Summary, papers[1].Summary)
}

func TestEnrichStopsAtBudget(t *testing.T) {
	gen := &fakeGen{}
	budget := NewBudget(2) // enough for exactly one paper
	papers := []paper.Paper{testPaper("a"), testPaper("b"), testPaper("c")}

	papers = New(gen, budget).Enrich(context.Background(), papers)

	assert.True(t, papers[0].HasSummary())
	assert.False(t, papers[1].HasSummary())
	assert.Equal(t, paper.SummaryUnavailableHTML, papers[1].SummaryHTML)
	assert.Equal(t, paper.SummaryUnavailableHTML, papers[2].SummaryHTML)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateSummaryRetriesOnMissingSections(t *testing.T) {
	gen := &fakeGen{badSummary: 1}
	budget := NewBudget(0)
	papers := []paper.Paper{testPaper("a")}

	papers = New(gen, budget).Enrich(context.Background(), papers)

	assert.True(t, papers[0].HasSummary())
	assert.Equal(t, 3, gen.calls, "one failed summary, one retry, one hook")
}

func TestGenerateSummaryGivesUpAfterRetry(t *testing.T) {
	gen := &fakeGen{badSummary: 2}
	budget := NewBudget(0)
	papers := []paper.Paper{testPaper("a")}

	papers = New(gen, budget).Enrich(context.Background(), papers)

	assert.False(t, papers[0].HasSummary())
	assert.Equal(t, paper.SummaryUnavailableHTML, papers[0].SummaryHTML)
	// The hook is still attempted.
	assert.True(t, papers[0].HasHook())
}

func TestParseHook(t *testing.T) {
	hook, err := ParseHook(validHookJSON)
	require.NoError(t, err)
	assert.Contains(t, hook.Hook, "scorching")

	// Markdown fences are tolerated.
	fenced := "```json\n" + validHookJSON + "\n```"
	hook, err = ParseHook(fenced)
	require.NoError(t, err)
	assert.NotEmpty(t, hook.Claim)

	_, err = ParseHook("not json at all")
	require.Error(t, err)

	_, err = ParseHook(`{"hook":"","claim":"","evidence":"","question":""}`)
	require.Error(t, err, "an all-empty hook is useless")
}

func TestFormatSummaryHTML(t *testing.T) {
	html := FormatSummaryHTML(validSummary)

	assert.Contains(t, html, "<h4>Why It Matters</h4>")
	assert.Contains(t, html, "<h4>Looking Forward</h4>")
	assert.Contains(t, html, "<p>Planets around other stars tell us how common worlds like ours are.</p>")
	assert.NotContains(t, html, "**")

	assert.Equal(t, paper.SummaryUnavailableHTML, FormatSummaryHTML(""))
}
