package app

import (
	"context"
	"fmt"
	"os"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/post/bluesky"
	"github.com/arifsolmaz/exodigest/internal/post/twitter"
	"github.com/arifsolmaz/exodigest/internal/telegram"
)

// CheckOptions control the smoke-test run.
type CheckOptions struct {
	Papers    int  // fetch at most this many papers
	Summaries int  // summarize at most this many
	Post      bool // actually send one post per configured platform
}

// RunCheck exercises the pipeline end to end with tight caps so a live
// configuration can be verified cheaply. Formatted posts are printed for
// review; nothing is sent unless Post is set.
func (a *App) RunCheck(ctx context.Context, opts CheckOptions) error {
	if opts.Papers <= 0 {
		opts.Papers = 3
	}
	if opts.Summaries <= 0 {
		opts.Summaries = 1
	}

	logger.Info("check run starting", "papers", opts.Papers, "summaries", opts.Summaries)

	err := a.RunFetch(ctx, FetchOptions{
		MaxPapers:    opts.Papers,
		MaxSummaries: opts.Summaries,
		SkipArchive:  true,
	})
	if err != nil {
		return fmt.Errorf("check fetch: %w", err)
	}

	set, err := a.store.LoadPaperSet()
	if err != nil {
		return err
	}
	if len(set.Papers) == 0 {
		fmt.Fprintln(os.Stdout, "no papers fetched; nothing to preview")
		return nil
	}

	p := &set.Papers[0]
	fmt.Fprintf(os.Stdout, "--- paper %s ---\n%s\n\n", p.ID, p.Title)
	fmt.Fprintf(os.Stdout, "--- tweet ---\n%s\n\n", twitter.FormatContentTweet(p))
	fmt.Fprintf(os.Stdout, "--- bluesky ---\n%s\n\n", bluesky.FormatPost(p, a.cfg.PageURL))
	fmt.Fprintf(os.Stdout, "--- telegram ---\n%s\n\n", telegram.FormatMessage(p))

	if !opts.Post {
		logger.Info("check run complete, no posts sent")
		return nil
	}

	for _, platform := range a.configuredPlatforms() {
		if err := a.RunPost(ctx, platform); err != nil {
			logger.Error("check post failed", "platform", platform, "error", err)
		}
	}
	logger.Info("check run complete")
	return nil
}
