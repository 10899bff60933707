// Package paper defines the data model shared by every pipeline stage:
// a fetched arXiv paper, its AI-generated content, and the daily set
// persisted to papers.json.
package paper

import "time"

// SummaryUnavailableHTML is stored when summary generation failed or was
// skipped. Stages treat a paper carrying it as unsummarized.
const SummaryUnavailableHTML = "<p><em>Summary unavailable.</em></p>"

// TweetHook is the structured thread opener generated for a paper.
type TweetHook struct {
	Hook     string `json:"hook"`
	Claim    string `json:"claim"`
	Evidence string `json:"evidence"`
	Question string `json:"question"`
}

// Empty reports whether no usable hook content was generated.
func (h TweetHook) Empty() bool {
	return h.Hook == "" && h.Claim == "" && h.Evidence == "" && h.Question == ""
}

// Paper is one announced arXiv paper plus everything the pipeline derives
// from it.
type Paper struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	Categories []string `json:"categories"`
	Published  string   `json:"published"` // YYYY-MM-DD
	Updated    string   `json:"updated"`
	PDFLink    string   `json:"pdf_link"`
	AbsLink    string   `json:"abs_link"`

	// Classification
	ExoplanetFocused  bool `json:"is_exoplanet_focused"`
	TweetabilityScore int  `json:"tweetability_score"`

	// Generated content
	Summary     string    `json:"summary,omitempty"`
	SummaryHTML string    `json:"summary_html,omitempty"`
	TweetHook   TweetHook `json:"tweet_hook,omitempty"`
	FigureURL   string    `json:"figure_url,omitempty"`
}

// HasSummary reports whether a real summary was generated, not the
// unavailable placeholder.
func (p *Paper) HasSummary() bool {
	return p.SummaryHTML != "" && p.SummaryHTML != SummaryUnavailableHTML
}

// HasHook reports whether a tweet hook was generated.
func (p *Paper) HasHook() bool {
	return !p.TweetHook.Empty()
}

// DailySet is one announcement day's worth of relevant papers, as stored
// in papers.json and in each archive slot.
type DailySet struct {
	AnnouncementDate string    `json:"announcement_date"` // YYYY-MM-DD
	UpdatedAt        time.Time `json:"updated_at"`
	Category         string    `json:"category"`
	PaperCount       int       `json:"paper_count"`
	Papers           []Paper   `json:"papers"`
}

// ByID returns the paper with the given arXiv id, or nil.
func (s *DailySet) ByID(id string) *Paper {
	for i := range s.Papers {
		if s.Papers[i].ID == id {
			return &s.Papers[i]
		}
	}
	return nil
}
