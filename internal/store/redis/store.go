// Package redis implements the place store on Redis, one JSON document
// per place key.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/placepulse/placesync/internal/place"
)

// keyFormat versions the key layout so a schema change can roll out
// next to the old keys.
const keyFormat = "place_v1:%s"

// Client is the minimal Redis surface the store needs. *goredis.Client
// satisfies it through the adapter returned by NewClient.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetNX(ctx context.Context, key, value string) (bool, error)
}

// ErrNotFound is returned by Client.Get for a missing key.
var ErrNotFound = goredis.Nil

type goRedisClient struct {
	rdb *goredis.Client
}

// NewClient wraps a go-redis client in the Client interface.
func NewClient(rdb *goredis.Client) Client {
	return &goRedisClient{rdb: rdb}
}

func (c *goRedisClient) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *goRedisClient) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, key, value, 0).Err()
}

func (c *goRedisClient) SetNX(ctx context.Context, key, value string) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, 0).Result()
}

// Store is a Redis-backed place.Store.
type Store struct {
	client Client
}

// New builds a Store on the given client.
func New(client Client) *Store {
	return &Store{client: client}
}

func key(placeID string) string {
	return fmt.Sprintf(keyFormat, placeID)
}

// GetByID returns the record for the id, if present.
func (s *Store) GetByID(ctx context.Context, placeID string) (place.Record, bool, error) {
	raw, err := s.client.Get(ctx, key(placeID))
	if err == ErrNotFound {
		return place.Record{}, false, nil
	}
	if err != nil {
		return place.Record{}, false, fmt.Errorf("get place %s: %w", placeID, err)
	}
	var rec place.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return place.Record{}, false, fmt.Errorf("unmarshal place %s: %w", placeID, err)
	}
	return rec, true, nil
}

// CreateIfAbsent writes an identity-only shell with SETNX so an
// existing record is never overwritten.
func (s *Store) CreateIfAbsent(ctx context.Context, placeID, category string) (place.Record, error) {
	shell := place.Record{
		ID:       placeID,
		Platform: "naver",
		Profile:  place.Profile{Categories: []string{category}},
	}
	data, err := json.Marshal(shell)
	if err != nil {
		return place.Record{}, fmt.Errorf("marshal shell %s: %w", placeID, err)
	}
	if _, err := s.client.SetNX(ctx, key(placeID), string(data)); err != nil {
		return place.Record{}, fmt.Errorf("setnx place %s: %w", placeID, err)
	}
	rec, _, err := s.GetByID(ctx, placeID)
	if err != nil {
		return place.Record{}, err
	}
	return rec, nil
}

// UpdateSynced reads the document, overwrites the derived fields, and
// writes it back. Missing records report zero modifications.
func (s *Store) UpdateSynced(ctx context.Context, placeID string, fields place.SyncedFields) (int, error) {
	rec, ok, err := s.GetByID(ctx, placeID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	rec.Hours = fields.Hours
	rec.Menu = fields.Menu
	rec.CongestionNow = fields.CongestionNow
	rec.LastFetchedAt = fields.LastFetchedAt

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal place %s: %w", placeID, err)
	}
	if err := s.client.Set(ctx, key(placeID), string(data)); err != nil {
		return 0, fmt.Errorf("set place %s: %w", placeID, err)
	}
	return 1, nil
}
