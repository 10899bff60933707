package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

type postedSet map[string]bool

func (s postedSet) IsPosted(id string) bool { return s[id] }

func day(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestWindowFor(t *testing.T) {
	w := WindowFor(day(3, 0), 14, 23)
	assert.Equal(t, day(14, 0), w.Start)
	assert.Equal(t, day(23, 0), w.End)
}

func TestSlotTimesSpreadEvenly(t *testing.T) {
	w := WindowFor(day(0, 0), 14, 23)

	slots := SlotTimes(w, 3)
	require.Len(t, slots, 3)
	assert.Equal(t, day(14, 0), slots[0], "first slot opens at window start")
	assert.Equal(t, day(17, 0), slots[1])
	assert.Equal(t, day(20, 0), slots[2])

	// Every slot lands inside the window.
	for _, s := range SlotTimes(w, 7) {
		assert.False(t, s.Before(w.Start))
		assert.True(t, s.Before(w.End))
	}

	assert.Nil(t, SlotTimes(w, 0))
}

func TestOrderPrioritizesFocusedThenScore(t *testing.T) {
	papers := []paper.Paper{
		{ID: "low", TweetabilityScore: 2},
		{ID: "focused-low", ExoplanetFocused: true, TweetabilityScore: 1},
		{ID: "high", TweetabilityScore: 20},
		{ID: "focused-high", ExoplanetFocused: true, TweetabilityScore: 9},
	}

	ordered := Order(papers)
	ids := make([]string, len(ordered))
	for i, p := range ordered {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"focused-high", "focused-low", "high", "low"}, ids)

	// Input order is preserved.
	assert.Equal(t, "low", papers[0].ID)
}

func TestBuildScheduleStates(t *testing.T) {
	w := WindowFor(day(0, 0), 14, 23)
	papers := []paper.Paper{
		{ID: "a", ExoplanetFocused: true, TweetabilityScore: 10},
		{ID: "b", ExoplanetFocused: true, TweetabilityScore: 5},
		{ID: "c", TweetabilityScore: 1},
	}

	t.Run("before window", func(t *testing.T) {
		items := BuildSchedule(papers, postedSet{}, w, day(13, 0))
		for _, it := range items {
			assert.Equal(t, StatePending, it.State)
		}
	})

	t.Run("mid window", func(t *testing.T) {
		// 17:30 is past slots 0 (14:00) and 1 (17:00) but not 2 (20:00).
		items := BuildSchedule(papers, postedSet{}, w, day(17, 30))
		assert.Equal(t, StateDue, items[0].State)
		assert.Equal(t, StateDue, items[1].State)
		assert.Equal(t, StatePending, items[2].State)
	})

	t.Run("after window", func(t *testing.T) {
		items := BuildSchedule(papers, postedSet{}, w, day(23, 30))
		for _, it := range items {
			assert.Equal(t, StateSkipped, it.State)
		}
	})

	t.Run("posted papers keep their state", func(t *testing.T) {
		items := BuildSchedule(papers, postedSet{"a": true}, w, day(17, 30))
		byID := map[string]State{}
		for _, it := range items {
			byID[it.Paper.ID] = it.State
		}
		assert.Equal(t, StatePosted, byID["a"])
		// Remaining papers redistribute over the full window: slots at
		// 14:00 and 18:30, so only "b" is due at 17:30.
		assert.Equal(t, StateDue, byID["b"])
		assert.Equal(t, StatePending, byID["c"])
	})
}

func TestNextDue(t *testing.T) {
	w := WindowFor(day(0, 0), 14, 23)
	papers := []paper.Paper{
		{ID: "a", ExoplanetFocused: true},
		{ID: "b"},
	}

	items := BuildSchedule(papers, postedSet{}, w, day(22, 0))
	due := NextDue(items)
	require.NotNil(t, due)
	assert.Equal(t, "a", due.Paper.ID, "highest-priority due paper goes first")

	items = BuildSchedule(papers, postedSet{"a": true, "b": true}, w, day(22, 0))
	assert.Nil(t, NextDue(items))
}
