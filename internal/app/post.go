package app

import (
	"context"
	"fmt"

	"github.com/arifsolmaz/exodigest/internal/metrics"
	"github.com/arifsolmaz/exodigest/internal/post"
	"github.com/arifsolmaz/exodigest/internal/post/bluesky"
	"github.com/arifsolmaz/exodigest/internal/post/twitter"
	"github.com/arifsolmaz/exodigest/internal/telegram"
)

// RunPost posts at most one due paper to the named platform.
func (a *App) RunPost(ctx context.Context, platform string) error {
	poster, err := a.poster(platform)
	if err != nil {
		return err
	}

	runner := post.NewRunner(a.store, poster, a.cfg.WindowStartHour, a.cfg.WindowEndHour)
	posted, err := runner.Run(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	if posted {
		metrics.Global.IncrementPostsSent()
	}
	return nil
}

func (a *App) poster(platform string) (post.Poster, error) {
	switch platform {
	case "twitter":
		if err := a.cfg.RequireTwitter(); err != nil {
			return nil, err
		}
		return twitter.New(twitter.Options{
			BearerToken: a.cfg.TwitterBearerToken,
			APIURL:      a.cfg.TwitterAPIURL,
			PageURL:     a.cfg.PageURL,
			Timeout:     a.cfg.RequestTimeout,
		}), nil
	case "bluesky":
		if err := a.cfg.RequireBluesky(); err != nil {
			return nil, err
		}
		return bluesky.New(bluesky.Options{
			Handle:   a.cfg.BlueskyHandle,
			Password: a.cfg.BlueskyPassword,
			PDSURL:   a.cfg.BlueskyPDSURL,
			PageURL:  a.cfg.PageURL,
			Timeout:  a.cfg.RequestTimeout,
		}), nil
	case "telegram":
		if err := a.cfg.RequireTelegram(); err != nil {
			return nil, err
		}
		return telegram.New(telegram.Options{
			Token:   a.cfg.TelegramToken,
			ChatID:  a.cfg.TelegramChatID,
			APIBase: a.cfg.TelegramAPIURL,
			Timeout: a.cfg.RequestTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown platform %q (want twitter, bluesky or telegram)", platform)
	}
}
