// Package figure finds a representative image for a paper. It tries the
// arXiv HTML rendering, then the ar5iv mirror, then falls back to a
// topic-keyed stock card. A missing figure never fails the pipeline.
package figure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
)

type Resolver struct {
	client      *http.Client
	htmlBase    string // arXiv HTML rendering base
	mirrorBase  string // ar5iv mirror base
	stepTimeout time.Duration
}

type Options struct {
	HTMLBase    string
	MirrorBase  string
	StepTimeout time.Duration
}

func New(opts Options) *Resolver {
	if opts.HTMLBase == "" {
		opts.HTMLBase = "https://arxiv.org/html"
	}
	if opts.MirrorBase == "" {
		opts.MirrorBase = "https://ar5iv.labs.arxiv.org/html"
	}
	if opts.StepTimeout == 0 {
		opts.StepTimeout = 10 * time.Second
	}
	return &Resolver{
		client:      &http.Client{Timeout: opts.StepTimeout},
		htmlBase:    opts.HTMLBase,
		mirrorBase:  opts.MirrorBase,
		stepTimeout: opts.StepTimeout,
	}
}

// Resolve fills FigureURL for every paper in the set that lacks one.
func (r *Resolver) Resolve(ctx context.Context, papers []paper.Paper) {
	for i := range papers {
		p := &papers[i]
		if p.FigureURL != "" {
			continue
		}
		p.FigureURL = r.resolveOne(ctx, p)
	}
}

func (r *Resolver) resolveOne(ctx context.Context, p *paper.Paper) string {
	for _, base := range []string{r.htmlBase, r.mirrorBase} {
		pageURL := fmt.Sprintf("%s/%s", base, p.ID)
		if url, err := r.extractFigure(ctx, pageURL); err == nil && url != "" {
			return url
		} else if err != nil {
			logger.Debug("figure fetch failed", "paper", p.ID, "url", pageURL, "error", err)
		}
	}
	return FallbackImage(p.Title, p.Abstract)
}

// extractFigure pulls the first real figure image from an HTML rendering.
func (r *Resolver) extractFigure(ctx context.Context, pageURL string) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(stepCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var found string
	selectors := []string{"img.ltx_graphics", "figure img", "img[src]"}
	for _, selector := range selectors {
		doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			src, ok := sel.Attr("src")
			if !ok || src == "" {
				return true
			}
			src = absoluteImageURL(pageURL, src)
			if isDecoration(src) {
				return true
			}
			found = src
			return false
		})
		if found != "" {
			return found, nil
		}
	}
	return "", nil
}

func absoluteImageURL(pageURL, src string) string {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return src
	case strings.HasPrefix(src, "/"):
		if u, err := url.Parse(pageURL); err == nil {
			return u.Scheme + "://" + u.Host + src
		}
		return pageURL + src
	default:
		return strings.TrimSuffix(pageURL, "/") + "/" + src
	}
}

func isDecoration(src string) bool {
	lower := strings.ToLower(src)
	for _, skip := range []string{"logo", "icon", "badge", "button"} {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

var topicImages = []struct {
	keyword string
	url     string
}{
	{"jwst", "https://images.unsplash.com/photo-1462331940025-496dfbfc7564?w=800"},
	{"james webb", "https://images.unsplash.com/photo-1462331940025-496dfbfc7564?w=800"},
	{"atmosphere", "https://images.unsplash.com/photo-1614642264762-d0a3b8bf3700?w=800"},
	{"habitable", "https://images.unsplash.com/photo-1614730321146-b6fa6a46bcb4?w=800"},
	{"earth-like", "https://images.unsplash.com/photo-1614730321146-b6fa6a46bcb4?w=800"},
	{"hot jupiter", "https://images.unsplash.com/photo-1630839437035-dac17da580d0?w=800"},
	{"transit", "https://images.unsplash.com/photo-1506318137071-a8e063b4bec0?w=800"},
	{"spectrum", "https://images.unsplash.com/photo-1507400492013-162706c8c05e?w=800"},
	{"star", "https://images.unsplash.com/photo-1419242902214-272b3f66ee7a?w=800"},
}

// FallbackImage picks a deterministic topic-appropriate placeholder.
func FallbackImage(title, abstract string) string {
	text := strings.ToLower(title + " " + abstract)
	for _, ti := range topicImages {
		if strings.Contains(text, ti.keyword) {
			return ti.url
		}
	}
	return "https://images.unsplash.com/photo-1462331940025-496dfbfc7564?w=800"
}
