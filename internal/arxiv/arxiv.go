// Package arxiv fetches the daily astro-ph announcement batch.
//
// The primary source is the arXiv RSS feed (rss.arxiv.org), which carries the
// actual daily batch. When the feed is unreachable after retries, the client
// falls back to the broader Atom query API on export.arxiv.org.
package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
	"github.com/arifsolmaz/exodigest/internal/retry"
)

type Client struct {
	category  string
	feedURL   string
	queryURL  string
	maxPapers int
	parser    *gofeed.Parser
	retryCfg  retry.Config
}

type Options struct {
	Category  string
	FeedURL   string // override, mainly for tests
	QueryURL  string // override, mainly for tests
	MaxPapers int
	Timeout   time.Duration
	Retry     retry.Config
}

func New(opts Options) *Client {
	feedURL := opts.FeedURL
	if feedURL == "" {
		feedURL = fmt.Sprintf("https://rss.arxiv.org/rss/%s", opts.Category)
	}
	queryURL := opts.QueryURL
	if queryURL == "" {
		queryURL = fmt.Sprintf(
			"http://export.arxiv.org/api/query?search_query=cat:%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
			opts.Category, opts.MaxPapers)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	retryCfg := opts.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	}

	return &Client{
		category:  opts.Category,
		feedURL:   feedURL,
		queryURL:  queryURL,
		maxPapers: opts.MaxPapers,
		parser:    parser,
		retryCfg:  retryCfg,
	}
}

// FetchDaily returns the announcement batch and its date (YYYY-MM-DD).
// An empty batch is not an error: arXiv has no announcements on weekends
// and holidays, and callers keep the previous day's data in that case.
func (c *Client) FetchDaily(ctx context.Context) ([]paper.Paper, string, error) {
	var feed *gofeed.Feed

	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		f, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %v: %w", c.feedURL, err, pipeline.ErrTransient)
		}
		feed = f
		return nil
	})
	if err != nil {
		logger.Warn("RSS feed failed, falling back to query API", "error", err)
		f, qErr := c.parser.ParseURLWithContext(c.queryURL, ctx)
		if qErr != nil {
			return nil, "", fmt.Errorf("arxiv feed and query API both failed: %w", err)
		}
		feed = f
	}

	date := announcementDate(feed)
	papers := c.parseItems(feed)

	logger.Info("fetched arxiv batch", "category", c.category, "date", date, "papers", len(papers))
	return papers, date, nil
}

func announcementDate(feed *gofeed.Feed) string {
	if feed.UpdatedParsed != nil {
		return feed.UpdatedParsed.UTC().Format("2006-01-02")
	}
	if feed.PublishedParsed != nil {
		return feed.PublishedParsed.UTC().Format("2006-01-02")
	}
	return time.Now().UTC().Format("2006-01-02")
}

func (c *Client) parseItems(feed *gofeed.Feed) []paper.Paper {
	seen := make(map[string]bool)
	var papers []paper.Paper

	for _, item := range feed.Items {
		if c.maxPapers > 0 && len(papers) >= c.maxPapers {
			break
		}

		id := PaperID(item.Link)
		if id == "" && item.GUID != "" {
			id = PaperID(item.GUID)
		}
		title := strings.Join(strings.Fields(item.Title), " ")
		if id == "" || title == "" {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		published := announcementDate(feed)
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC().Format("2006-01-02")
		}

		papers = append(papers, paper.Paper{
			ID:         id,
			Title:      title,
			Authors:    itemAuthors(item),
			Abstract:   extractAbstract(item.Description),
			Categories: itemCategories(item, c.category),
			Published:  published,
			Updated:    published,
			PDFLink:    fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", id),
			AbsLink:    fmt.Sprintf("https://arxiv.org/abs/%s", id),
		})
	}

	return papers
}

// PaperID extracts the arXiv identifier from an abs/pdf link.
func PaperID(link string) string {
	link = strings.TrimSpace(link)
	if idx := strings.Index(link, "/abs/"); idx >= 0 {
		return strings.TrimSuffix(link[idx+len("/abs/"):], "/")
	}
	if idx := strings.LastIndex(link, "/"); idx >= 0 && idx < len(link)-1 {
		return link[idx+1:]
	}
	return link
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// extractAbstract pulls the abstract out of the feed item description.
// arXiv formats it as "arXiv:ID Announce Type: new\nAbstract: ...".
func extractAbstract(description string) string {
	abstract := description
	if idx := strings.Index(abstract, "Abstract:"); idx >= 0 {
		abstract = abstract[idx+len("Abstract:"):]
	}
	abstract = tagPattern.ReplaceAllString(abstract, "")
	return strings.Join(strings.Fields(abstract), " ")
}

func itemAuthors(item *gofeed.Item) []string {
	var raw []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			raw = append(raw, a.Name)
		}
	}
	if len(raw) == 1 {
		// RSS dc:creator often carries the whole list in one element.
		raw = splitAuthorList(raw[0])
	}

	authors := make([]string, 0, len(raw))
	for _, name := range raw {
		if cleaned := CleanLatexName(name); cleaned != "" {
			authors = append(authors, cleaned)
		}
	}
	return authors
}

func splitAuthorList(text string) []string {
	var parts []string
	switch {
	case strings.Contains(text, ";"):
		parts = strings.Split(text, ";")
	case strings.Count(text, ",") > 2:
		parts = strings.Split(text, ",")
	default:
		parts = []string{text}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func itemCategories(item *gofeed.Item, fallback string) []string {
	if len(item.Categories) > 0 {
		return item.Categories
	}
	return []string{fallback}
}

var latexMap = map[string]string{
	`\'a`: "á", `\'e`: "é", `\'i`: "í", `\'o`: "ó", `\'u`: "ú",
	`\"a`: "ä", `\"e`: "ë", `\"i`: "ï", `\"o`: "ö", `\"u`: "ü",
	`\v{c}`: "č", `\v{s}`: "š", `\v{z}`: "ž", `\v{r}`: "ř",
	`\'c`: "ć", `\l`: "ł", `\~n`: "ñ", `\c{c}`: "ç",
	`\'A`: "Á", `\'E`: "É", `\'I`: "Í", `\'O`: "Ó", `\'U`: "Ú",
	`\"A`: "Ä", `\"E`: "Ë", `\"I`: "Ï", `\"O`: "Ö", `\"U`: "Ü",
}

var (
	latexBracedAccent = regexp.MustCompile(`\\['"` + "`" + `^~v]\{(\w)\}`)
	latexBareAccent   = regexp.MustCompile(`\\['"` + "`" + `^~v](\w)`)
	latexBraces       = regexp.MustCompile(`[{}]`)
)

// CleanLatexName converts the LaTeX accent escapes arXiv uses in author
// names to plain Unicode.
func CleanLatexName(name string) string {
	for latex, char := range latexMap {
		name = strings.ReplaceAll(name, latex, char)
	}
	name = latexBracedAccent.ReplaceAllString(name, "$1")
	name = latexBareAccent.ReplaceAllString(name, "$1")
	name = latexBraces.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
