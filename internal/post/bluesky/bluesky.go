// Package bluesky posts papers via the AT Protocol XRPC endpoints.
package bluesky

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

	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
	"github.com/arifsolmaz/exodigest/internal/post/twitter"
)

const (
	maxPostLength  = 300
	minTitleLength = 20
)

type Client struct {
	handle     string
	password   string
	pdsURL     string
	pageURL    string
	httpClient *http.Client
}

type Options struct {
	Handle   string
	Password string
	PDSURL   string // override for tests
	PageURL  string
	Timeout  time.Duration
}

func New(opts Options) *Client {
	if opts.PDSURL == "" {
		opts.PDSURL = "https://bsky.social"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		handle:     opts.Handle,
		password:   opts.Password,
		pdsURL:     opts.PDSURL,
		pageURL:    opts.PageURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "bluesky" }

type session struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

// Post authenticates and publishes a single post for the paper.
func (c *Client) Post(ctx context.Context, p *paper.Paper) (string, error) {
	sess, err := c.createSession(ctx)
	if err != nil {
		return "", err
	}

	text := FormatPost(p, c.pageURL)
	return c.createRecord(ctx, sess, text)
}

func (c *Client) createSession(ctx context.Context) (*session, error) {
	body, _ := json.Marshal(map[string]string{
		"identifier": c.handle,
		"password":   c.password,
	})

	var sess session
	if err := c.xrpc(ctx, "com.atproto.server.createSession", "", body, &sess); err != nil {
		return nil, fmt.Errorf("bluesky login: %w", err)
	}
	if sess.AccessJWT == "" || sess.DID == "" {
		return nil, fmt.Errorf("bluesky session missing token: %w", pipeline.ErrAuth)
	}
	return &sess, nil
}

func (c *Client) createRecord(ctx context.Context, sess *session, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"repo":       sess.DID,
		"collection": "app.bsky.feed.post",
		"record": map[string]any{
			"$type":     "app.bsky.feed.post",
			"text":      text,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	var result struct {
		URI string `json:"uri"`
	}
	if err := c.xrpc(ctx, "com.atproto.repo.createRecord", sess.AccessJWT, body, &result); err != nil {
		return "", fmt.Errorf("bluesky post: %w", err)
	}
	return result.URI, nil
}

func (c *Client) xrpc(ctx context.Context, method, token string, body []byte, out any) error {
	url := fmt.Sprintf("%s/xrpc/%s", c.pdsURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pipeline.Transientf("call %s", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		classified := pipeline.ClassifyStatus(resp.StatusCode)
		return fmt.Errorf("%s %s: %s: %w", method, resp.Status, strings.TrimSpace(string(snippet)), classified)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", method, pipeline.ErrMalformed)
		}
	}
	return nil
}

// FormatPost fits title, hook and links into the 300-character budget,
// dropping the hook first and truncating the title as a last resort.
func FormatPost(p *paper.Paper, pageURL string) string {
	summaryLink := ""
	if pageURL != "" {
		summaryLink = pageURL + "#paper-" + twitter.SafeID(p.ID)
	}

	links := "📄 " + p.AbsLink
	if summaryLink != "" {
		links += "\n📖 Summary: " + summaryLink
	}

	post := p.Title + "\n\n"
	if p.TweetHook.Hook != "" {
		post += p.TweetHook.Hook + "\n\n"
	}
	post += links

	if utf8.RuneCountInString(post) > maxPostLength {
		post = p.Title + "\n\n" + links
	}
	if utf8.RuneCountInString(post) > maxPostLength {
		maxTitle := maxPostLength - utf8.RuneCountInString("\n\n"+links)
		// An oversized page URL can eat the whole budget; keep at least
		// a recognizable stub of the title rather than slicing past zero.
		if maxTitle < minTitleLength {
			maxTitle = minTitleLength
		}
		post = twitter.Truncate(p.Title, maxTitle) + "\n\n" + links
	}
	return post
}
