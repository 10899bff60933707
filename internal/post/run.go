package post

import (
	"context"
	"fmt"
	"time"

	"github.com/arifsolmaz/exodigest/internal/logger"
	"github.com/arifsolmaz/exodigest/internal/paper"
	"github.com/arifsolmaz/exodigest/internal/store"
)

// Poster publishes one paper to a platform and returns the platform
// message id when available.
type Poster interface {
	Name() string
	Post(ctx context.Context, p *paper.Paper) (messageID string, err error)
}

// Runner drives one platform's posting cycle against the shared store.
type Runner struct {
	store     *store.Store
	poster    Poster
	startHour int
	endHour   int
	now       func() time.Time
}

func NewRunner(st *store.Store, poster Poster, startHour, endHour int) *Runner {
	return &Runner{
		store:     st,
		poster:    poster,
		startHour: startHour,
		endHour:   endHour,
		now:       time.Now,
	}
}

// WithClock overrides the clock; tests use it to step through the window.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run posts at most one due paper and reports whether anything went out.
// The ledger check makes re-invocation within the same window safe: an
// already-posted paper is never selected again, so overlapping scheduled
// runs degrade to no-ops.
func (r *Runner) Run(ctx context.Context) (bool, error) {
	set, err := r.store.LoadPaperSet()
	if err != nil {
		return false, fmt.Errorf("load paper set: %w", err)
	}
	if len(set.Papers) == 0 {
		logger.Info("no papers available to post", "platform", r.poster.Name())
		return false, nil
	}

	ledger, err := r.store.LoadLedger(r.poster.Name())
	if err != nil {
		return false, fmt.Errorf("load %s ledger: %w", r.poster.Name(), err)
	}
	if ledger.ResetIfNewDay(set.AnnouncementDate) {
		logger.Info("new announcement batch, ledger reset",
			"platform", r.poster.Name(), "date", set.AnnouncementDate)
	}

	now := r.now().UTC()
	window := WindowFor(now, r.startHour, r.endHour)
	items := BuildSchedule(set.Papers, ledger, window, now)

	due := NextDue(items)
	if due == nil {
		logger.Info("nothing due", "platform", r.poster.Name(),
			"remaining", countPending(items))
		return false, nil
	}

	messageID, err := r.poster.Post(ctx, &due.Paper)
	if err != nil {
		// Leave the paper PENDING; the next scheduled invocation retries it.
		return false, fmt.Errorf("post %s to %s: %w", due.Paper.ID, r.poster.Name(), err)
	}

	if err := ledger.MarkPosted(due.Paper.ID, messageID); err != nil {
		return false, fmt.Errorf("record post: %w", err)
	}

	logger.Info("posted paper", "platform", r.poster.Name(),
		"paper", due.Paper.ID, "message_id", messageID)
	return true, nil
}

func countPending(items []Item) int {
	n := 0
	for _, it := range items {
		if it.State == StatePending || it.State == StateDue {
			n++
		}
	}
	return n
}
