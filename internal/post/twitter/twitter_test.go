package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

func hookedPaper() *paper.Paper {
	return &paper.Paper{
		ID:       "2506.00001",
		Title:    "A transiting super-earth around a nearby M dwarf",
		Abstract: "JWST observations of a habitable-zone candidate.",
		AbsLink:  "https://arxiv.org/abs/2506.00001",
		TweetHook: paper.TweetHook{
			Hook:     "A scorching world just showed up where none should exist.",
			Claim:    "Astronomers confirmed a planet twice Earth's size on a 3-day orbit.",
			Evidence: "Transit depth pins its radius to 2.1 Earth radii.",
			Question: "Could worlds like this keep an atmosphere?",
		},
	}
}

func TestFormatContentTweet(t *testing.T) {
	p := hookedPaper()

	tweet := FormatContentTweet(p)
	assert.LessOrEqual(t, len(tweet), maxTweetLength)
	assert.Contains(t, tweet, p.TweetHook.Hook)
	assert.Contains(t, tweet, p.TweetHook.Claim)
	assert.Contains(t, tweet, p.TweetHook.Question)
}

func TestFormatContentTweetDropsQuestionWhenLong(t *testing.T) {
	p := hookedPaper()
	p.TweetHook.Hook = strings.Repeat("long hook ", 12)   // ~120 chars
	p.TweetHook.Claim = strings.Repeat("big claim ", 12)  // ~120 chars
	p.TweetHook.Question = strings.Repeat("and why? ", 8) // pushes over 280

	tweet := FormatContentTweet(p)
	assert.LessOrEqual(t, len(tweet), maxTweetLength)
	assert.NotContains(t, tweet, "and why?")
	assert.Contains(t, tweet, "big claim")
}

func TestFormatContentTweetFallsBackToTitle(t *testing.T) {
	p := hookedPaper()
	p.TweetHook = paper.TweetHook{}

	assert.Equal(t, p.Title, FormatContentTweet(p))
}

func TestFormatFollowUpTweet(t *testing.T) {
	p := hookedPaper()
	tweet := FormatFollowUpTweet(p, "https://example.github.io/arxiv")

	assert.Contains(t, tweet, "https://arxiv.org/abs/2506.00001")
	assert.Contains(t, tweet, "#paper-2506-00001")
	assert.Contains(t, tweet, "#Exoplanets")
	assert.LessOrEqual(t, len(tweet), maxTweetLength)
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags(hookedPaper())

	assert.Contains(t, tags, "#Exoplanets")
	assert.Contains(t, tags, "#Astronomy")
	assert.Contains(t, tags, "#JWST")
	assert.LessOrEqual(t, len(tags), 5)
}

func TestSafeID(t *testing.T) {
	assert.Equal(t, "2506-00001", SafeID("2506.00001"))
	assert.Equal(t, "astro-ph-0601001", SafeID("astro-ph/0601001"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 20))

	long := "alpha beta gamma delta epsilon"
	cut := Truncate(long, 20)
	assert.LessOrEqual(t, len(cut), 20)
	assert.True(t, strings.HasSuffix(cut, "..."))
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	// Greek designations like "κ Andromedae b" are common in titles; a
	// byte-indexed cut would split the two-byte κ in half.
	long := strings.Repeat("κ", 400)
	cut := Truncate(long, 280)
	assert.True(t, utf8.ValidString(cut), "truncated text must stay valid UTF-8")
	assert.LessOrEqual(t, utf8.RuneCountInString(cut), 280)

	mixed := "Boötis " + strings.Repeat("planets orbiting λ Boötis stars ", 20)
	cut = Truncate(mixed, 100)
	assert.True(t, utf8.ValidString(cut))
	assert.LessOrEqual(t, utf8.RuneCountInString(cut), 100)
}

func TestTruncateTinyBudget(t *testing.T) {
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, "κλ", Truncate("κλμν", 2))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
}

func TestFormatContentTweetMultibyteTitle(t *testing.T) {
	p := hookedPaper()
	p.TweetHook = paper.TweetHook{}
	p.Title = "κ Andromedae b revisited: " + strings.Repeat("κ", 300)

	tweet := FormatContentTweet(p)
	assert.True(t, utf8.ValidString(tweet))
	assert.LessOrEqual(t, utf8.RuneCountInString(tweet), maxTweetLength)
}

func TestPostSendsThread(t *testing.T) {
	var payloads []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		payloads = append(payloads, payload)

		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "111"},
		})
	}))
	defer srv.Close()

	c := New(Options{BearerToken: "token123", APIURL: srv.URL, PageURL: "https://example.github.io/arxiv"})
	id, err := c.Post(context.Background(), hookedPaper())
	require.NoError(t, err)
	assert.Equal(t, "111", id)

	require.Len(t, payloads, 2)
	_, hasReply := payloads[0]["reply"]
	assert.False(t, hasReply, "content tweet starts the thread")

	reply, ok := payloads[1]["reply"].(map[string]any)
	require.True(t, ok, "follow-up must reference the content tweet")
	assert.Equal(t, "111", reply["in_reply_to_tweet_id"])
}

func TestPostSurvivesFollowUpFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "111"},
		})
	}))
	defer srv.Close()

	c := New(Options{BearerToken: "token123", APIURL: srv.URL})
	id, err := c.Post(context.Background(), hookedPaper())

	require.NoError(t, err, "reply failure must not unpost the paper")
	assert.Equal(t, "111", id)
}

func TestPostFailsOnContentTweetError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Options{BearerToken: "bad", APIURL: srv.URL})
	_, err := c.Post(context.Background(), hookedPaper())
	require.Error(t, err)
}
