// Package postgres provides a Postgres-backed place store. Documents
// are stored as jsonb columns keyed by place id.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/placepulse/placesync/internal/place"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes place documents into Postgres.
//
// Expected schema:
//
//	CREATE TABLE places (
//	    id TEXT PRIMARY KEY,
//	    platform TEXT NOT NULL,
//	    profile JSONB NOT NULL,
//	    hours JSONB,
//	    menu JSONB,
//	    congestion_now JSONB,
//	    last_fetched_at TIMESTAMPTZ
//	);
type Store struct {
	pool  pgxPool
	table string
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "places"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool pgxPool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "places"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// GetByID returns the record for the id, if present.
func (s *Store) GetByID(ctx context.Context, placeID string) (place.Record, bool, error) {
	query := fmt.Sprintf(`
SELECT platform, profile, hours, menu, congestion_now, last_fetched_at
FROM %s WHERE id = $1`, s.table)

	var (
		platform      string
		profileJSON   []byte
		hoursJSON     []byte
		menuJSON      []byte
		readingJSON   []byte
		lastFetchedAt *time.Time
	)
	err := s.pool.QueryRow(ctx, query, placeID).
		Scan(&platform, &profileJSON, &hoursJSON, &menuJSON, &readingJSON, &lastFetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return place.Record{}, false, nil
	}
	if err != nil {
		return place.Record{}, false, fmt.Errorf("select place %s: %w", placeID, err)
	}

	rec := place.Record{ID: placeID, Platform: platform}
	for _, col := range []struct {
		data []byte
		dst  any
	}{
		{profileJSON, &rec.Profile},
		{hoursJSON, &rec.Hours},
		{menuJSON, &rec.Menu},
		{readingJSON, &rec.CongestionNow},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return place.Record{}, false, fmt.Errorf("unmarshal place %s: %w", placeID, err)
		}
	}
	if lastFetchedAt != nil {
		rec.LastFetchedAt = *lastFetchedAt
	}
	return rec, true, nil
}

// CreateIfAbsent inserts an identity-only shell; an existing row is
// left untouched.
func (s *Store) CreateIfAbsent(ctx context.Context, placeID, category string) (place.Record, error) {
	profileJSON, err := json.Marshal(place.Profile{Categories: []string{category}})
	if err != nil {
		return place.Record{}, fmt.Errorf("marshal profile: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, platform, profile)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, s.table)

	if _, err := s.pool.Exec(ctx, query, placeID, "naver", profileJSON); err != nil {
		return place.Record{}, fmt.Errorf("insert shell %s: %w", placeID, err)
	}
	rec, _, err := s.GetByID(ctx, placeID)
	if err != nil {
		return place.Record{}, err
	}
	return rec, nil
}

// UpdateSynced overwrites the derived columns and reports how many rows
// changed.
func (s *Store) UpdateSynced(ctx context.Context, placeID string, fields place.SyncedFields) (int, error) {
	hoursJSON, err := json.Marshal(fields.Hours)
	if err != nil {
		return 0, fmt.Errorf("marshal hours: %w", err)
	}
	menuJSON, err := json.Marshal(fields.Menu)
	if err != nil {
		return 0, fmt.Errorf("marshal menu: %w", err)
	}
	readingJSON, err := json.Marshal(fields.CongestionNow)
	if err != nil {
		return 0, fmt.Errorf("marshal congestion: %w", err)
	}
	query := fmt.Sprintf(`
UPDATE %s
SET hours = $2, menu = $3, congestion_now = $4, last_fetched_at = $5
WHERE id = $1`, s.table)

	tag, err := s.pool.Exec(ctx, query, placeID, hoursJSON, menuJSON, readingJSON, fields.LastFetchedAt)
	if err != nil {
		return 0, fmt.Errorf("update place %s: %w", placeID, err)
	}
	return int(tag.RowsAffected()), nil
}
