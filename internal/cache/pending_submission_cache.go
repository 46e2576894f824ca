package cache

import (
	"sync"
	"time"

	"github.com/salarymap/backend/internal/model"
)

type pendingEntry struct {
	profile   model.ReportProfile
	expiresAt time.Time
}

// PendingSubmissionCache bridges the gap between a form submission and the
// first payment event for that flow: the report row does not exist yet, so
// the submitted profile is parked here under a locally generated provisional
// payment id. Entries are removed when taken and expire after the TTL.
type PendingSubmissionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]pendingEntry
}

func NewPendingSubmissionCache(ttl time.Duration) *PendingSubmissionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PendingSubmissionCache{
		ttl:     ttl,
		entries: make(map[string]pendingEntry),
	}
}

func (c *PendingSubmissionCache) Put(id string, profile model.ReportProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = pendingEntry{
		profile:   profile,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Take returns the submission stored under id and removes it. A pending
// submission is consumed exactly once, by the first payment event that
// references it.
func (c *PendingSubmissionCache) Take(id string) (model.ReportProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return model.ReportProfile{}, false
	}
	delete(c.entries, id)
	if time.Now().After(entry.expiresAt) {
		return model.ReportProfile{}, false
	}
	return entry.profile, true
}

// Sweep drops expired entries and returns how many were removed. Called
// periodically; expired entries are also dropped lazily by Take.
func (c *PendingSubmissionCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

func (c *PendingSubmissionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
