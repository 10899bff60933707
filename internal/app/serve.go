package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arifsolmaz/exodigest/internal/logger"
)

// Cron schedules for serve mode, all UTC. Fetch runs shortly after the
// arXiv announcement lands; posting runs poll twice an hour so each
// platform drains its slots; news follows the fetch.
const (
	fetchSpec = "30 13 * * *"
	newsSpec  = "0 14 * * *"
	postSpec  = "*/30 14-23 * * *"
)

// RunServe runs the pipeline on an internal cron until ctx is cancelled.
func (a *App) RunServe(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(fetchSpec, func() {
		if err := a.RunFetch(ctx, FetchOptions{}); err != nil {
			logger.Error("scheduled fetch failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(newsSpec, func() {
		if err := a.RunTurkishNews(ctx); err != nil {
			logger.Error("scheduled news generation failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(postSpec, func() {
		for _, platform := range a.configuredPlatforms() {
			if err := a.RunPost(ctx, platform); err != nil {
				logger.Error("scheduled post failed", "platform", platform, "error", err)
			}
		}
	}); err != nil {
		return err
	}

	logger.Info("serve mode started",
		"fetch", fetchSpec, "news", newsSpec, "post", postSpec,
		"platforms", a.configuredPlatforms())

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("serve mode stopped")
	return nil
}

// configuredPlatforms lists the platforms whose credentials are present.
func (a *App) configuredPlatforms() []string {
	var platforms []string
	if a.cfg.RequireTwitter() == nil {
		platforms = append(platforms, "twitter")
	}
	if a.cfg.RequireBluesky() == nil {
		platforms = append(platforms, "bluesky")
	}
	if a.cfg.RequireTelegram() == nil {
		platforms = append(platforms, "telegram")
	}
	return platforms
}
