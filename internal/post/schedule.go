// Package post spreads the day's unposted papers across a posting window
// and drives the per-platform clients, with the ledger guaranteeing each
// paper goes out at most once per platform.
package post

import (
	"sort"
	"time"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

// State is a paper's position in the posting lifecycle for one platform.
type State string

const (
	StatePending State = "PENDING" // scheduled slot not reached yet
	StateDue     State = "DUE"     // slot reached, not yet posted
	StatePosted  State = "POSTED"  // recorded in the platform ledger
	StateSkipped State = "SKIPPED" // window already over when scheduled
)

// Window is the time-of-day range posts are spread across.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor builds the posting window for the given day in UTC.
func WindowFor(day time.Time, startHour, endHour int) Window {
	day = day.UTC()
	return Window{
		Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.UTC),
		End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, time.UTC),
	}
}

// SlotTimes divides the window evenly: with n papers the k-th (0-based)
// slot opens at start + k*(end-start)/n. The first slot opens immediately
// at window start; boundary remainders land on earlier slots, never past
// the window end.
func SlotTimes(w Window, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	total := w.End.Sub(w.Start)
	slots := make([]time.Time, n)
	for k := 0; k < n; k++ {
		slots[k] = w.Start.Add(time.Duration(k) * total / time.Duration(n))
	}
	return slots
}

// Item is one paper with its schedule assignment.
type Item struct {
	Paper paper.Paper
	State State
	Slot  time.Time
}

// Order sorts papers into posting priority: exoplanet-focused before
// general, each group by descending tweetability score. The sort is stable
// so feed order breaks ties.
func Order(papers []paper.Paper) []paper.Paper {
	ordered := make([]paper.Paper, len(papers))
	copy(ordered, papers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ExoplanetFocused != ordered[j].ExoplanetFocused {
			return ordered[i].ExoplanetFocused
		}
		return ordered[i].TweetabilityScore > ordered[j].TweetabilityScore
	})
	return ordered
}

// Posted abstracts the ledger lookup the schedule needs.
type Posted interface {
	IsPosted(paperID string) bool
}

// BuildSchedule assigns a slot and state to every paper. Unposted papers
// share the window evenly in priority order; papers already in the ledger
// are POSTED; papers past their slot are DUE.
func BuildSchedule(papers []paper.Paper, ledger Posted, w Window, now time.Time) []Item {
	ordered := Order(papers)

	var unposted []paper.Paper
	items := make([]Item, 0, len(ordered))
	for _, p := range ordered {
		if ledger.IsPosted(p.ID) {
			items = append(items, Item{Paper: p, State: StatePosted})
			continue
		}
		unposted = append(unposted, p)
	}

	slots := SlotTimes(w, len(unposted))
	for k, p := range unposted {
		state := StatePending
		switch {
		case now.After(w.End):
			state = StateSkipped
		case !now.Before(slots[k]):
			state = StateDue
		}
		items = append(items, Item{Paper: p, State: state, Slot: slots[k]})
	}

	return items
}

// NextDue returns the highest-priority DUE paper, or nil when nothing is due.
func NextDue(items []Item) *Item {
	for i := range items {
		if items[i].State == StateDue {
			return &items[i]
		}
	}
	return nil
}
