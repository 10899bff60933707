// Package app wires the pipeline stages into the runnable commands:
// the daily fetch run, the per-platform posting runs, the news and feed
// generators, and the cron-driven serve mode.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/arifsolmaz/exodigest/internal/arxiv"
	"github.com/arifsolmaz/exodigest/internal/classify"
	"github.com/arifsolmaz/exodigest/internal/config"
	"github.com/arifsolmaz/exodigest/internal/figure"
	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/metrics"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/post"
	"github.com/arifsolmaz/exodigest/internal/retry"
	"github.com/arifsolmaz/exodigest/internal/rssgen"
	"github.com/arifsolmaz/exodigest/internal/store"
	"github.com/arifsolmaz/exodigest/internal/summarize"
)

type App struct {
	cfg   *config.Config
	store *store.Store
	dict  *classify.Dictionary
}

func New(cfg *config.Config) (*App, error) {
	dict := classify.Default()
	if cfg.KeywordsPath != "" {
		loaded, err := classify.Load(cfg.KeywordsPath)
		if err != nil {
			return nil, fmt.Errorf("load keyword dictionary: %w", err)
		}
		dict = loaded
	}

	return &App{
		cfg:   cfg,
		store: store.New(cfg.DataDir),
		dict:  dict,
	}, nil
}

// Store exposes the shared state files to commands that need direct access.
func (a *App) Store() *store.Store { return a.store }

// FetchOptions narrow a fetch run, mainly for the check command.
type FetchOptions struct {
	MaxPapers    int // 0 = config default
	MaxSummaries int // 0 = no extra cap beyond the AI budget
	SkipArchive  bool
}

// RunFetch executes the full daily pipeline:
// fetch → classify → summarize → figures → persist → archive → RSS.
func (a *App) RunFetch(ctx context.Context, opts FetchOptions) error {
	started := time.Now()

	maxPapers := opts.MaxPapers
	if maxPapers <= 0 {
		maxPapers = a.cfg.MaxPapers
	}

	client := arxiv.New(arxiv.Options{
		Category:  a.cfg.ArxivCategory,
		FeedURL:   a.cfg.FeedURL,
		QueryURL:  a.cfg.QueryURL,
		MaxPapers: maxPapers,
		Timeout:   a.cfg.RequestTimeout,
		Retry: retry.Config{
			MaxAttempts: a.cfg.RetryAttempts,
			Delay:       a.cfg.RetryDelay,
			Backoff:     true,
		},
	})

	fetched, date, err := client.FetchDaily(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.AddPapersFetched(len(fetched))

	if len(fetched) == 0 {
		// Weekend or holiday: arXiv announced nothing, keep yesterday's data.
		logger.Info("empty announcement batch, keeping existing data")
		return nil
	}

	papers := a.classifyAndFilter(fetched)
	metrics.Global.AddPapersRelevant(len(papers))
	if len(papers) == 0 {
		logger.Info("no relevant papers in batch", "date", date)
		return nil
	}

	existing, err := a.store.LoadPaperSet()
	if err != nil {
		return fmt.Errorf("load existing set: %w", err)
	}
	if existing.AnnouncementDate == date {
		carryOverContent(papers, existing)
		if allEnriched(papers) {
			logger.Info("same announcement batch, all papers already enriched", "date", date)
			return nil
		}
	}

	papers = a.enrich(ctx, papers, opts.MaxSummaries)

	resolver := figure.New(figure.Options{StepTimeout: a.cfg.RequestTimeout / 3})
	resolver.Resolve(ctx, papers)

	set := &paper.DailySet{
		AnnouncementDate: date,
		UpdatedAt:        time.Now().UTC(),
		Category:         a.cfg.ArxivCategory,
		Papers:           papers,
	}
	if err := a.store.SavePaperSet(set); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("save paper set: %w", err)
	}

	if !opts.SkipArchive {
		if err := a.store.Archive(set, a.cfg.ArchiveDays); err != nil {
			metrics.Global.SetError(err.Error())
			return err
		}
	}

	if err := a.RunRSS(); err != nil {
		// Feed generation failing should not fail the fetch run.
		logger.Error("RSS generation failed", "error", err)
	}

	metrics.Global.RecordRun(time.Since(started))
	logger.Info("fetch run complete", "date", date, "papers", len(papers),
		"duration", time.Since(started).Round(time.Millisecond))
	return nil
}

// classifyAndFilter annotates papers and drops the irrelevant ones, ordering
// the rest exoplanet-focused first, then by descending tweetability.
func (a *App) classifyAndFilter(fetched []paper.Paper) []paper.Paper {
	var relevant []paper.Paper
	for i := range fetched {
		a.dict.Annotate(&fetched[i])
		if a.dict.Relevant(fetched[i].Title, fetched[i].Abstract) {
			relevant = append(relevant, fetched[i])
		}
	}
	return post.Order(relevant)
}

// enrich runs the summarizer when the AI key is configured. A missing key
// kills summaries only; the rest of the pipeline proceeds with placeholders.
func (a *App) enrich(ctx context.Context, papers []paper.Paper, maxSummaries int) []paper.Paper {
	if err := a.cfg.RequireGemini(); err != nil {
		logger.Error("summaries disabled", "error", err)
		for i := range papers {
			if papers[i].SummaryHTML == "" {
				papers[i].SummaryHTML = paper.SummaryUnavailableHTML
			}
		}
		return papers
	}

	gen, err := summarize.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
	if err != nil {
		logger.Error("summaries disabled", "error", err)
		return papers
	}
	defer gen.Close()

	budget := a.cfg.MaxAIRequests
	if maxSummaries > 0 {
		// Each paper costs up to two calls (summary + hook).
		budget = maxSummaries * 2
	}

	b := summarize.NewBudget(budget)
	papers = summarize.New(gen, b).Enrich(ctx, papers)

	used, _, cacheHits := b.Stats()
	metrics.Global.AddCacheHits(cacheHits)
	for i := range papers {
		if papers[i].HasSummary() {
			metrics.Global.IncrementSummariesGenerated()
		} else {
			metrics.Global.IncrementSummariesFailed()
		}
	}
	logger.Info("summaries generated", "ai_calls", used, "cache_hits", cacheHits)
	return papers
}

// carryOverContent copies already-generated summaries, hooks and figures
// from the stored set. Summary and hook carry over independently, so a
// paper with only one of them keeps it and the summarizer fills in the rest.
func carryOverContent(papers []paper.Paper, existing *paper.DailySet) {
	for i := range papers {
		prev := existing.ByID(papers[i].ID)
		if prev == nil {
			continue
		}
		if prev.HasSummary() {
			papers[i].Summary = prev.Summary
			papers[i].SummaryHTML = prev.SummaryHTML
		}
		if prev.HasHook() {
			papers[i].TweetHook = prev.TweetHook
		}
		if prev.FigureURL != "" {
			papers[i].FigureURL = prev.FigureURL
		}
	}
}

func allEnriched(papers []paper.Paper) bool {
	for i := range papers {
		if !papers[i].HasSummary() || !papers[i].HasHook() {
			return false
		}
	}
	return true
}

// RunArchive re-archives the currently stored paper set.
func (a *App) RunArchive() error {
	set, err := a.store.LoadPaperSet()
	if err != nil {
		return err
	}
	if len(set.Papers) == 0 {
		logger.Info("no papers to archive")
		return nil
	}
	return a.store.Archive(set, a.cfg.ArchiveDays)
}

// RunSplitArchive regroups an accumulated papers.json into per-date slots.
func (a *App) RunSplitArchive() error {
	days, err := a.store.SplitArchive(a.cfg.ArchiveDays)
	if err != nil {
		return err
	}
	logger.Info("archive split complete", "days", days)
	return nil
}

// RunRSS regenerates the syndication feed from the stored paper set.
func (a *App) RunRSS() error {
	set, err := a.store.LoadPaperSet()
	if err != nil {
		return err
	}
	document := rssgen.New(a.cfg.PageURL, a.cfg.RSSItemLimit).Generate(set)
	return a.store.SaveRSS(document)
}
