package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/arifsolmaz/exodigest/internal/app"
	"github.com/arifsolmaz/exodigest/internal/config"
	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/metrics"
)

type globalOptions struct {
	EnvFile string `long:"env-file" description:"Load environment variables from this file before reading config"`
}

var opts globalOptions

// setup loads the env file, config and logger, and starts the optional
// monitoring endpoint. Every command calls it first.
func setup() (*app.App, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// Best effort: a local .env is convenient but optional.
		_ = godotenv.Load()
	}

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	return app.New(cfg)
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := metrics.Global.GetStats()
		w.Header().Set("Content-Type", "application/json")
		if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics.Global.GetStats())
	})

	logger.Info("monitoring server starting", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("monitoring server failed", "error", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type fetchCommand struct {
	MaxPapers int `long:"max-papers" description:"Override the paper cap for this run"`
}

func (c *fetchCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return a.RunFetch(ctx, app.FetchOptions{MaxPapers: c.MaxPapers})
}

type archiveCommand struct{}

func (c *archiveCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	return a.RunArchive()
}

type splitArchiveCommand struct{}

func (c *splitArchiveCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	return a.RunSplitArchive()
}

type postCommand struct {
	Platform string `long:"platform" required:"true" choice:"twitter" choice:"bluesky" choice:"telegram" description:"Platform to post to"`
}

func (c *postCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return a.RunPost(ctx, c.Platform)
}

type newsCommand struct{}

func (c *newsCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return a.RunTurkishNews(ctx)
}

type rssCommand struct{}

func (c *rssCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	return a.RunRSS()
}

type serveCommand struct{}

func (c *serveCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return a.RunServe(ctx)
}

type checkCommand struct {
	Papers    int  `long:"papers" default:"3" description:"Number of papers to fetch"`
	Summaries int  `long:"summaries" default:"1" description:"Number of summaries to generate"`
	Post      bool `long:"post" description:"Actually send one post per configured platform"`
}

func (c *checkCommand) Execute(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return a.RunCheck(ctx, app.CheckOptions{
		Papers:    c.Papers,
		Summaries: c.Summaries,
		Post:      c.Post,
	})
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("fetch", "Fetch the daily batch",
		"Fetch today's arXiv announcement batch, classify, summarize, archive and regenerate the feed.", &fetchCommand{})
	parser.AddCommand("archive", "Archive the current paper set",
		"Copy the stored paper set into its dated archive slot.", &archiveCommand{})
	parser.AddCommand("split-archive", "Split an accumulated set by date",
		"Regroup an accumulated papers.json into per-date archive slots.", &splitArchiveCommand{})
	parser.AddCommand("post", "Post one due paper",
		"Post at most one due paper to the chosen platform.", &postCommand{})
	parser.AddCommand("news-tr", "Generate localized news",
		"Convert summarized papers into Turkish news articles.", &newsCommand{})
	parser.AddCommand("rss", "Regenerate the RSS feed",
		"Render the stored paper set as an RSS 2.0 document.", &rssCommand{})
	parser.AddCommand("serve", "Run the scheduler",
		"Run fetch, posting and news generation on an internal cron until interrupted.", &serveCommand{})
	parser.AddCommand("check", "Smoke-test the configuration",
		"Run the pipeline with tight caps and print formatted post previews.", &checkCommand{})

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
