// Package twitter posts papers as two-tweet threads through the v2 API.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

const maxTweetLength = 280

type Client struct {
	bearerToken string
	apiURL      string
	pageURL     string
	httpClient  *http.Client
}

type Options struct {
	BearerToken string
	APIURL      string // override for tests
	PageURL     string
	Timeout     time.Duration
}

func New(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.twitter.com/2/tweets"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		bearerToken: opts.BearerToken,
		apiURL:      opts.APIURL,
		pageURL:     opts.PageURL,
		httpClient:  &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "twitter" }

// Post publishes the content tweet, then a follow-up reply carrying the
// links and hashtags. The follow-up is best-effort: once the content tweet
// is out the paper counts as posted even if the reply fails.
func (c *Client) Post(ctx context.Context, p *paper.Paper) (string, error) {
	content := FormatContentTweet(p)

	tweetID, err := c.sendTweet(ctx, content, "")
	if err != nil {
		return "", err
	}

	followUp := FormatFollowUpTweet(p, c.pageURL)
	if _, err := c.sendTweet(ctx, followUp, tweetID); err != nil {
		logger.Warn("follow-up tweet failed, keeping paper as posted",
			"paper", p.ID, "tweet_id", tweetID, "error", err)
	}

	return tweetID, nil
}

func (c *Client) sendTweet(ctx context.Context, text, inReplyTo string) (string, error) {
	payload := map[string]any{"text": text}
	if inReplyTo != "" {
		payload["reply"] = map[string]string{"in_reply_to_tweet_id": inReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pipeline.Transientf("send tweet")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		classified := pipeline.ClassifyStatus(resp.StatusCode)
		return "", fmt.Errorf("twitter API %s: %s: %w", resp.Status, strings.TrimSpace(string(snippet)), classified)
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", pipeline.ErrMalformed)
	}
	return result.Data.ID, nil
}

// FormatContentTweet builds the opener from the generated hook, falling
// back to the bare title when no hook was generated.
func FormatContentTweet(p *paper.Paper) string {
	var parts []string
	if p.TweetHook.Hook != "" {
		parts = append(parts, p.TweetHook.Hook)
	}
	if p.TweetHook.Claim != "" {
		parts = append(parts, p.TweetHook.Claim)
	}
	if p.TweetHook.Question != "" {
		parts = append(parts, p.TweetHook.Question)
	}

	if len(parts) == 0 {
		return Truncate(p.Title, maxTweetLength)
	}

	tweet := strings.Join(parts, "\n\n")
	if utf8.RuneCountInString(tweet) > maxTweetLength {
		// Drop the question first, then fall back to hook only.
		tweet = strings.Join(parts[:len(parts)-1], "\n\n")
		if utf8.RuneCountInString(tweet) > maxTweetLength {
			tweet = Truncate(parts[0], maxTweetLength)
		}
	}
	return tweet
}

// FormatFollowUpTweet carries the paper links and hashtags as the reply.
func FormatFollowUpTweet(p *paper.Paper, pageURL string) string {
	var b strings.Builder
	b.WriteString("Paper: " + p.AbsLink + "\n")
	if pageURL != "" {
		b.WriteString("Summary: " + pageURL + "#paper-" + SafeID(p.ID) + "\n")
	}
	b.WriteString("\n" + strings.Join(ExtractHashtags(p), " "))
	return Truncate(b.String(), maxTweetLength)
}

// ExtractHashtags derives tags from mission and habitability keywords.
func ExtractHashtags(p *paper.Paper) []string {
	tags := []string{"#Exoplanets", "#Astronomy"}
	text := strings.ToLower(p.Title + " " + p.Abstract)

	keywordTags := []struct {
		keyword string
		tag     string
	}{
		{"jwst", "#JWST"},
		{"james webb", "#JWST"},
		{"tess", "#TESS"},
		{"kepler", "#Kepler"},
		{"habitable", "#HabitableZone"},
		{"biosignature", "#Astrobiology"},
		{"atmosphere", "#ExoplanetAtmospheres"},
	}

	seen := map[string]bool{}
	for _, kt := range keywordTags {
		if strings.Contains(text, kt.keyword) && !seen[kt.tag] {
			tags = append(tags, kt.tag)
			seen[kt.tag] = true
		}
		if len(tags) >= 5 {
			break
		}
	}
	return tags
}

// SafeID converts a paper id to the URL-fragment form used by the site.
func SafeID(id string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, id)
}

// Truncate shortens text to max characters, preferring a word boundary.
// Cuts land on rune boundaries so multibyte titles stay valid UTF-8.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 0 {
		return ""
	}
	if max <= 3 {
		return string(runes[:max])
	}
	cut := string(runes[:max-3])
	if idx := strings.LastIndex(cut, " "); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}
