// Package dataset holds the most recently processed batch in memory for
// serving search, recommendation and reporting requests.
package dataset

import (
	"sync"
	"time"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type Snapshot struct {
	mu        sync.RWMutex
	listings  []vehicle.MergedListing
	updatedAt time.Time
}

func New() *Snapshot { return &Snapshot{} }

// Replace swaps in a freshly processed dataset.
func (s *Snapshot) Replace(listings []vehicle.MergedListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = listings
	s.updatedAt = time.Now()
}

// Listings returns a copy of the current dataset; callers may not observe
// later replacements through it.
func (s *Snapshot) Listings() []vehicle.MergedListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vehicle.MergedListing, len(s.listings))
	copy(out, s.listings)
	return out
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *Snapshot) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
