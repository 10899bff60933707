package app

import (
	"context"
	"fmt"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/metrics"
	"github.com/arifsolmaz/exodigest/internal/summarize"
	"github.com/arifsolmaz/exodigest/internal/turkish"
)

// RunTurkishNews converts the day's summarized papers into localized news
// articles and merges them into the stored feed.
func (a *App) RunTurkishNews(ctx context.Context) error {
	if err := a.cfg.RequireGemini(); err != nil {
		return err
	}

	set, err := a.store.LoadPaperSet()
	if err != nil {
		return err
	}
	if len(set.Papers) == 0 {
		logger.Info("no papers available for news generation")
		return nil
	}

	existing, err := a.store.LoadNews()
	if err != nil {
		return err
	}

	gen, err := summarize.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("create AI client: %w", err)
	}
	defer gen.Close()

	budget := summarize.NewBudget(a.cfg.MaxAIRequests)
	generator := turkish.New(gen, budget, a.cfg.TurkishPerDay, a.cfg.TurkishNewsMax)

	merged, err := generator.Generate(ctx, set, existing)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	fresh := len(merged) - len(existing)
	if fresh < 0 {
		fresh = 0
	}
	metrics.Global.AddNewsGenerated(fresh)

	if err := a.store.SaveNews(merged); err != nil {
		return err
	}
	logger.Info("news feed updated", "new_articles", fresh, "total", len(merged))
	return nil
}
