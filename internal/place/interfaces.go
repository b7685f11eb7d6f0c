package place

import (
	"context"
	"time"
)

// Fetcher returns the text content of a source page. Retry and backoff
// policy belongs to the implementation, not the callers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Store is the keyed place-record store.
type Store interface {
	GetByID(ctx context.Context, placeID string) (Record, bool, error)
	// CreateIfAbsent writes an identity-only shell. It never overwrites
	// an existing record's identity fields.
	CreateIfAbsent(ctx context.Context, placeID, category string) (Record, error)
	// UpdateSynced overwrites the derived fields and reports how many
	// records were modified (0 or 1).
	UpdateSynced(ctx context.Context, placeID string, fields SyncedFields) (int, error)
}

// Archive persists raw fetched page text and returns a URI.
type Archive interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// Publisher pushes sync-completed events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher fingerprints raw page content so downstream consumers can
// detect unchanged snapshots.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces request and event ids.
type IDGenerator interface {
	NewID() (string, error)
}
