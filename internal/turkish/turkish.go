// Package turkish adapts English paper summaries into a localized
// press-release style news feed. Articles live in arxiv_news.json keyed by
// arXiv id; manually edited articles are never overwritten by regeneration.
package turkish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arifsolmaz/exodigest/internal/figure"
	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
	"github.com/arifsolmaz/exodigest/internal/summarize"
)

const newsPromptTemplate = `Sen bir bilim gazetecisisin. Aşağıdaki akademik makale özetini, Türkçe basın bülteni tarzında popüler bilim haberi olarak yeniden yaz.

**Kaynak Makale:**
Başlık: %s
Özet: %s

**Kurallar:**
1. Haber başlığı çekici ve dikkat çekici olmalı (gazete manşeti gibi)
2. İlk paragraf en önemli bulguyu vurgulamalı (piramit yazı tekniği)
3. Teknik terimleri açıkla veya Türkçe karşılıklarını kullan
4. 300-500 kelime arası olmalı
5. Markdown formatı kullan (**kalın**, *italik*)
6. Son paragrafta "neden önemli" vurgusu yap
7. Emoji KULLANMA
8. Bilimsel doğruluğu koru
9. Heyecan verici ama abartısız bir dil kullan

**Çıktı formatı (sadece JSON):**
{"title": "Türkçe haber başlığı", "text": "Tam haber metni (markdown formatında)", "tags": ["etiket1", "etiket2", "etiket3"]}

Sadece JSON döndür, başka bir şey ekleme.`

// Article is one localized news item derived from a paper summary.
type Article struct {
	ID       string   `json:"id"`
	ArxivID  string   `json:"arxiv_id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	ImageURL string   `json:"image_url,omitempty"`
	Edited   bool     `json:"edited,omitempty"`
}

type Generator struct {
	gen      summarize.Generator
	budget   *summarize.Budget
	perDay   int
	maxItems int
}

func New(gen summarize.Generator, budget *summarize.Budget, perDay, maxItems int) *Generator {
	if perDay <= 0 {
		perDay = 5
	}
	if maxItems <= 0 {
		maxItems = 50
	}
	return &Generator{gen: gen, budget: budget, perDay: perDay, maxItems: maxItems}
}

// Generate converts up to perDay unprocessed papers into articles and merges
// them into the existing feed, newest first, capped at maxItems. Existing
// articles are kept as-is; edited ones in particular are never regenerated.
func (g *Generator) Generate(ctx context.Context, set *paper.DailySet, existing []Article) ([]Article, error) {
	processed := make(map[string]bool, len(existing))
	for _, a := range existing {
		processed[a.ArxivID] = true
	}

	var fresh []Article
	for i := range set.Papers {
		if len(fresh) >= g.perDay {
			break
		}
		p := &set.Papers[i]
		if processed[p.ID] {
			continue
		}
		if !p.HasSummary() {
			logger.Debug("skipping paper without summary", "paper", p.ID)
			continue
		}

		article, err := g.generateOne(ctx, p, set.AnnouncementDate)
		if err != nil {
			if errors.Is(err, pipeline.ErrQuota) {
				logger.Warn("AI budget exhausted during news generation")
				break
			}
			logger.Error("news generation failed", "paper", p.ID, "error", err)
			continue
		}
		fresh = append(fresh, *article)
	}

	merged := append(fresh, existing...)
	if len(merged) > g.maxItems {
		merged = merged[:g.maxItems]
	}
	return merged, nil
}

func (g *Generator) generateOne(ctx context.Context, p *paper.Paper, date string) (*Article, error) {
	if err := g.budget.Take(); err != nil {
		return nil, err
	}

	source := p.Summary
	if source == "" {
		source = p.Abstract
	}

	text, err := g.gen.GenerateText(ctx, fmt.Sprintf(newsPromptTemplate, p.Title, source))
	if err != nil {
		return nil, err
	}

	parsed, err := parseNewsJSON(text)
	if err != nil {
		return nil, err
	}

	imageURL := p.FigureURL
	if imageURL == "" {
		imageURL = figure.FallbackImage(p.Title, p.Abstract)
	}

	return &Article{
		ID:       fmt.Sprintf("news-%s-%s", date, p.ID),
		ArxivID:  p.ID,
		Title:    parsed.Title,
		Text:     parsed.Text,
		Tags:     parsed.Tags,
		Date:     date,
		ImageURL: imageURL,
	}, nil
}

type newsPayload struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
}

var codeFencePattern = regexp.MustCompile("^```(?:json)?\n?|\n?```$")

func parseNewsJSON(text string) (*newsPayload, error) {
	text = strings.TrimSpace(text)
	text = codeFencePattern.ReplaceAllString(text, "")

	var payload newsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("parse news JSON: %w", pipeline.ErrMalformed)
	}
	if payload.Title == "" || payload.Text == "" {
		return nil, fmt.Errorf("news JSON missing title or text: %w", pipeline.ErrMalformed)
	}
	return &payload, nil
}

// ApplyEdit overlays a manual correction onto the feed, marking the article
// so later regeneration runs leave it alone.
func ApplyEdit(articles []Article, arxivID, title, text string, tags []string) []Article {
	for i := range articles {
		if articles[i].ArxivID != arxivID {
			continue
		}
		if title != "" {
			articles[i].Title = title
		}
		if text != "" {
			articles[i].Text = text
		}
		if len(tags) > 0 {
			articles[i].Tags = tags
		}
		articles[i].Edited = true
		break
	}
	return articles
}
