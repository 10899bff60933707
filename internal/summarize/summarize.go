// Package summarize turns paper abstracts into structured general-audience
// summaries and tweet hooks via an external AI service, with caching so a
// paper is never summarized twice.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

const summaryPromptTemplate = `You are a science communicator writing for a general audience. Summarize this exoplanet research paper in an accessible, engaging way.

PAPER TITLE: %s

ABSTRACT: %s

Write an extended summary (250-350 words) with these exact section headers:

**Why It Matters**
Open with the big picture significance—why should a general reader care about this research?

**What They Did**
Explain the research methods in simple terms. Avoid jargon entirely.

**Key Findings**
Describe the main discoveries. Use concrete numbers or comparisons when possible.

**Looking Forward**
End with implications—what does this mean for exoplanet science?

Guidelines:
- Write for someone curious about space but with no astronomy background
- Use analogies to everyday concepts
- Avoid acronyms unless you spell them out
- Be engaging and convey the excitement of discovery`

const hookPromptTemplate = `You are writing a Twitter thread hook for an exoplanet research paper.

PAPER TITLE: %s
ABSTRACT: %s

Generate a compelling tweet thread opener. Return JSON with:
1. "hook" - Attention-grabbing sentence (max 100 chars)
2. "claim" - Clear, specific claim about findings (max 150 chars)
3. "evidence" - One key piece of evidence (max 150 chars)
4. "question" - Engaging question for discussion (max 100 chars)

Return ONLY valid JSON, no other text.`

var sectionHeaders = []string{"Why It Matters", "What They Did", "Key Findings", "Looking Forward"}

// result is the cached outcome for one paper within a run.
type result struct {
	summary     string
	summaryHTML string
	hook        paper.TweetHook
}

type Summarizer struct {
	gen    Generator
	budget *Budget
	memo   map[string]result
}

func New(gen Generator, budget *Budget) *Summarizer {
	return &Summarizer{
		gen:    gen,
		budget: budget,
		memo:   make(map[string]result),
	}
}

// Enrich fills summaries, HTML renderings and tweet hooks for every paper in
// the set. Content already present on a paper (carried over from the cached
// previous run) costs zero external calls, as does a second occurrence of
// the same paper id within this run; a paper carrying only a summary or
// only a hook pays for just the missing piece. Quota exhaustion stops
// further calls but keeps the papers enriched so far.
func (s *Summarizer) Enrich(ctx context.Context, papers []paper.Paper) []paper.Paper {
	for i := range papers {
		p := &papers[i]

		if p.HasSummary() && p.HasHook() {
			s.budget.RecordCacheHit()
			continue
		}

		if cached, ok := s.memo[p.ID]; ok {
			applyResult(p, cached)
			s.budget.RecordCacheHit()
			continue
		}

		if s.budget.Exhausted() {
			logger.Warn("AI budget exhausted, remaining papers left unsummarized", "paper", p.ID)
			markUnavailable(p)
			continue
		}

		res := s.generate(ctx, p)
		s.memo[p.ID] = res
		applyResult(p, res)
	}
	return papers
}

// generate fills in whichever of summary and hook the paper is missing.
// A paper carrying one of them from a previous run only costs the call
// for the other.
func (s *Summarizer) generate(ctx context.Context, p *paper.Paper) result {
	res := result{summary: p.Summary, summaryHTML: p.SummaryHTML, hook: p.TweetHook}
	if res.summaryHTML == "" {
		res.summaryHTML = paper.SummaryUnavailableHTML
	}

	if !p.HasSummary() {
		summary, err := s.generateSummary(ctx, p)
		if err != nil {
			logger.Error("summary generation failed", "paper", p.ID, "error", err)
			if errors.Is(err, pipeline.ErrQuota) {
				return res
			}
		} else {
			res.summary = summary
			res.summaryHTML = FormatSummaryHTML(summary)
		}
	}

	if !p.HasHook() {
		hook, err := s.generateHook(ctx, p)
		if err != nil {
			logger.Error("hook generation failed", "paper", p.ID, "error", err)
		} else {
			res.hook = hook
		}
	}

	return res
}

// generateSummary makes one AI call, retrying once when the response does
// not contain the four required section headers.
func (s *Summarizer) generateSummary(ctx context.Context, p *paper.Paper) (string, error) {
	prompt := fmt.Sprintf(summaryPromptTemplate, p.Title, p.Abstract)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := s.budget.Take(); err != nil {
			return "", err
		}

		text, err := s.gen.GenerateText(ctx, prompt)
		if err != nil {
			lastErr = err
			if !pipeline.IsRetryable(err) && !errors.Is(err, pipeline.ErrMalformed) {
				return "", err
			}
			continue
		}

		if err := validateSections(text); err != nil {
			lastErr = err
			continue
		}
		return strings.TrimSpace(text), nil
	}
	return "", lastErr
}

func (s *Summarizer) generateHook(ctx context.Context, p *paper.Paper) (paper.TweetHook, error) {
	if err := s.budget.Take(); err != nil {
		return paper.TweetHook{}, err
	}

	prompt := fmt.Sprintf(hookPromptTemplate, p.Title, p.Abstract)
	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return paper.TweetHook{}, err
	}
	return ParseHook(text)
}

func validateSections(text string) error {
	for _, header := range sectionHeaders {
		if !strings.Contains(text, "**"+header+"**") {
			return fmt.Errorf("summary missing section %q: %w", header, pipeline.ErrMalformed)
		}
	}
	return nil
}

var codeFencePattern = regexp.MustCompile("^```(?:json)?\n?|\n?```$")

// ParseHook parses the strict-JSON hook response, tolerating markdown fences.
func ParseHook(text string) (paper.TweetHook, error) {
	text = strings.TrimSpace(text)
	text = codeFencePattern.ReplaceAllString(text, "")

	var hook paper.TweetHook
	if err := json.Unmarshal([]byte(text), &hook); err != nil {
		return paper.TweetHook{}, fmt.Errorf("parse hook JSON: %w", pipeline.ErrMalformed)
	}
	if hook.Empty() {
		return paper.TweetHook{}, fmt.Errorf("hook JSON has no content: %w", pipeline.ErrMalformed)
	}
	return hook, nil
}

var headerPattern = regexp.MustCompile(`\*\*(Why It Matters|What They Did|Key Findings|Looking Forward)\*\*`)

// FormatSummaryHTML converts the markdown summary into the HTML stored
// alongside it: section headers become h4, paragraphs become p.
func FormatSummaryHTML(summary string) string {
	if summary == "" {
		return paper.SummaryUnavailableHTML
	}

	html := headerPattern.ReplaceAllString(summary, "<h4>$1</h4>")

	var formatted []string
	for _, block := range strings.Split(html, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if strings.HasPrefix(block, "<h4>") {
			formatted = append(formatted, block)
		} else {
			formatted = append(formatted, "<p>"+strings.ReplaceAll(block, "\n", " ")+"</p>")
		}
	}
	return strings.Join(formatted, "\n")
}

func applyResult(p *paper.Paper, res result) {
	p.Summary = res.summary
	p.SummaryHTML = res.summaryHTML
	p.TweetHook = res.hook
}

func markUnavailable(p *paper.Paper) {
	if p.SummaryHTML == "" {
		p.SummaryHTML = paper.SummaryUnavailableHTML
	}
}
