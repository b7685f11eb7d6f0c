// Package memory stores place records in-memory for development and
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/placepulse/placesync/internal/place"
)

// Store is an in-memory place.Store.
type Store struct {
	mu      sync.RWMutex
	records map[string]place.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]place.Record)}
}

// GetByID returns the record for the id, if present.
func (s *Store) GetByID(_ context.Context, placeID string) (place.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[placeID]
	return rec, ok, nil
}

// CreateIfAbsent writes an identity-only shell. An existing record is
// returned untouched.
func (s *Store) CreateIfAbsent(_ context.Context, placeID, category string) (place.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[placeID]; ok {
		return rec, nil
	}
	rec := place.Record{
		ID:       placeID,
		Platform: "naver",
		Profile:  place.Profile{Categories: []string{category}},
	}
	s.records[placeID] = rec
	return rec, nil
}

// UpdateSynced overwrites the derived fields wholesale.
func (s *Store) UpdateSynced(_ context.Context, placeID string, fields place.SyncedFields) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[placeID]
	if !ok {
		return 0, nil
	}
	rec.Hours = fields.Hours
	rec.Menu = fields.Menu
	rec.CongestionNow = fields.CongestionNow
	rec.LastFetchedAt = fields.LastFetchedAt
	s.records[placeID] = rec
	return 1, nil
}
