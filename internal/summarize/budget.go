package summarize

import (
	"fmt"
	"sync"

	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

// Budget caps external AI calls per run and tracks cache effectiveness.
// Once exhausted, remaining papers are left without summaries and the run
// continues with partial results.
type Budget struct {
	mu        sync.Mutex
	used      int
	max       int // 0 = unlimited
	cacheHits int
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Take reserves one call or fails with the quota sentinel.
func (b *Budget) Take() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("AI request budget exhausted (%d/%d): %w", b.used, b.max, pipeline.ErrQuota)
	}
	b.used++
	return nil
}

// Exhausted reports whether no calls remain.
func (b *Budget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max > 0 && b.used >= b.max
}

// RecordCacheHit counts a call avoided by the summary cache.
func (b *Budget) RecordCacheHit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheHits++
}

// Stats returns used/max/cacheHits for logging and the metrics endpoint.
func (b *Budget) Stats() (used, max, cacheHits int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used, b.max, b.cacheHits
}
