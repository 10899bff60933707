package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	PapersFetched      int64
	PapersRelevant     int64
	SummariesGenerated int64
	SummariesFailed    int64
	CacheHits          int64
	PostsSent          int64
	NewsGenerated      int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddPapersFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PapersFetched += int64(n)
}

func (m *Metrics) AddPapersRelevant(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PapersRelevant += int64(n)
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummariesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesFailed++
}

func (m *Metrics) AddCacheHits(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits += int64(n)
}

func (m *Metrics) IncrementPostsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsSent++
}

func (m *Metrics) AddNewsGenerated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewsGenerated += int64(n)
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"papers_fetched":       m.PapersFetched,
		"papers_relevant":      m.PapersRelevant,
		"summaries_generated":  m.SummariesGenerated,
		"summaries_failed":     m.SummariesFailed,
		"cache_hits":           m.CacheHits,
		"posts_sent":           m.PostsSent,
		"news_generated":       m.NewsGenerated,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
