// Package telegram delivers papers to a Telegram channel via the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

type Client struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
}

type Options struct {
	Token   string
	ChatID  string
	APIBase string // override for tests
	Timeout time.Duration
}

func New(opts Options) *Client {
	if opts.APIBase == "" {
		opts.APIBase = "https://api.telegram.org"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		token:      opts.Token,
		chatID:     opts.ChatID,
		apiBase:    opts.APIBase,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "telegram" }

// Post sends one paper, as a photo with caption when a figure is available,
// plain HTML message otherwise.
func (c *Client) Post(ctx context.Context, p *paper.Paper) (string, error) {
	if p.FigureURL != "" {
		id, err := c.sendPhoto(ctx, p.FigureURL, FormatCaption(p))
		if err == nil {
			return id, nil
		}
		// Bad figure URLs are common; fall through to a text message.
	}
	return c.sendMessage(ctx, FormatMessage(p))
}

func (c *Client) sendMessage(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}
	return c.call(ctx, "sendMessage", payload)
}

func (c *Client) sendPhoto(ctx context.Context, photoURL, caption string) (string, error) {
	// Telegram caps captions around 1024 characters.
	if utf8.RuneCountInString(caption) > 1000 {
		caption = string([]rune(caption)[:1000])
	}
	payload := map[string]any{
		"chat_id":    c.chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	return c.call(ctx, "sendPhoto", payload)
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pipeline.Transientf("telegram %s", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		classified := pipeline.ClassifyStatus(resp.StatusCode)
		return "", fmt.Errorf("telegram %s %s: %s: %w", method, resp.Status, strings.TrimSpace(string(snippet)), classified)
	}

	var result struct {
		OK     bool `json:"ok"`
		Result struct {
			MessageID int64 `json:"message_id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode telegram response: %w", pipeline.ErrMalformed)
	}
	if !result.OK {
		return "", fmt.Errorf("telegram %s rejected: %w", method, pipeline.ErrMalformed)
	}
	return strconv.FormatInt(result.Result.MessageID, 10), nil
}

// FormatMessage renders the full HTML message for a paper.
func FormatMessage(p *paper.Paper) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🪐 <b><a href=\"%s\">%s</a></b>\n\n", p.AbsLink, escapeHTML(p.Title)))

	if p.TweetHook.Hook != "" {
		b.WriteString(escapeHTML(p.TweetHook.Hook) + "\n\n")
	}

	if len(p.Authors) > 0 {
		b.WriteString("👥 " + escapeHTML(authorLine(p.Authors)) + "\n\n")
	}

	if p.Summary != "" {
		summary := sentenceCut(p.Summary, 600)
		b.WriteString(escapeHTML(summary) + "\n\n")
	}

	b.WriteString("📄 " + p.AbsLink)
	return b.String()
}

// FormatCaption is the shorter variant used with a figure.
func FormatCaption(p *paper.Paper) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🪐 <b>%s</b>\n\n", escapeHTML(p.Title)))
	if p.TweetHook.Hook != "" {
		b.WriteString(escapeHTML(p.TweetHook.Hook) + "\n\n")
	}
	b.WriteString("📄 " + p.AbsLink)
	return b.String()
}

func authorLine(authors []string) string {
	if len(authors) > 3 {
		return authors[0] + " et al."
	}
	return strings.Join(authors, ", ")
}

// sentenceCut trims at the last full sentence within max characters,
// cutting on rune boundaries.
func sentenceCut(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, "."); idx > len(cut)/2 {
		return cut[:idx+1]
	}
	return cut + "..."
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
