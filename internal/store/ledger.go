package store

import (
	"fmt"
	"time"
)

// PostRecord is one successful post in a platform ledger.
type PostRecord struct {
	PostedAt  time.Time `json:"posted_at"`
	Status    string    `json:"status"`
	MessageID string    `json:"message_id,omitempty"`
}

// Ledger tracks which papers a platform has already received. A paper id
// appears at most once, which is what guarantees at-most-once posting.
type Ledger struct {
	Posted    map[string]PostRecord `json:"posted"`
	LastReset string                `json:"last_reset"`

	platform string
	store    *Store
}

// LoadLedger reads a platform's ledger, creating an empty one if absent.
func (s *Store) LoadLedger(platform string) (*Ledger, error) {
	ledger := &Ledger{platform: platform, store: s}
	if _, err := readJSON(s.ledgerPath(platform), ledger); err != nil {
		return nil, err
	}
	if ledger.Posted == nil {
		ledger.Posted = make(map[string]PostRecord)
	}
	return ledger, nil
}

// ResetIfNewDay clears the posted map when the paper set's announcement
// date moved past the ledger's last reset, so each day's batch starts fresh.
func (l *Ledger) ResetIfNewDay(announcementDate string) bool {
	if announcementDate == "" || l.LastReset == announcementDate {
		return false
	}
	l.Posted = make(map[string]PostRecord)
	l.LastReset = announcementDate
	return true
}

// IsPosted reports whether the paper already went out on this platform.
func (l *Ledger) IsPosted(paperID string) bool {
	_, ok := l.Posted[paperID]
	return ok
}

// MarkPosted records a successful post and persists the whole ledger.
// The full read-modify-write keeps overlapping runs from losing updates.
func (l *Ledger) MarkPosted(paperID, messageID string) error {
	if l.IsPosted(paperID) {
		return fmt.Errorf("paper %s already posted on %s", paperID, l.platform)
	}
	l.Posted[paperID] = PostRecord{
		PostedAt:  time.Now().UTC(),
		Status:    "posted",
		MessageID: messageID,
	}
	return l.Save()
}

// Save persists the ledger to its platform file.
func (l *Ledger) Save() error {
	return writeJSONAtomic(l.store.ledgerPath(l.platform), l)
}
