// Package syncer drives one full synchronization run for a place:
// resolve source URLs, fetch page content, normalize, estimate
// congestion, and persist the derived record wholesale.
package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/placepulse/placesync/internal/congestion"
	"github.com/placepulse/placesync/internal/hash/sha256"
	"github.com/placepulse/placesync/internal/metrics"
	"github.com/placepulse/placesync/internal/normalize"
	"github.com/placepulse/placesync/internal/place"
	"github.com/placepulse/placesync/internal/resolver"
)

// Config controls Syncer behavior.
type Config struct {
	// Topic is where sync-completed events are published.
	Topic string
	// ArchivePrefix prefixes raw snapshot paths in the archive.
	ArchivePrefix string
}

// Syncer executes sync runs. Runs are independent units of work; the
// store's upsert is last-write-wins, so concurrent runs for the same
// place id may interleave and the final record reflects whichever write
// lands last. Callers must not rely on ordering between them.
type Syncer struct {
	resolver  *resolver.Resolver
	fetcher   place.Fetcher
	store     place.Store
	estimator *congestion.Estimator
	archive   place.Archive
	publisher place.Publisher
	clock     place.Clock
	hasher    place.Hasher
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Syncer. Archive and publisher may be nil; both are
// best-effort side channels. A nil logger is replaced with a no-op.
func New(
	res *resolver.Resolver,
	fetcher place.Fetcher,
	store place.Store,
	estimator *congestion.Estimator,
	archive place.Archive,
	publisher place.Publisher,
	clock place.Clock,
	hasher place.Hasher,
	cfg Config,
	logger *zap.Logger,
) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = sha256.New()
	}
	if cfg.Topic == "" {
		cfg.Topic = "place-sync-completed"
	}
	if cfg.ArchivePrefix == "" {
		cfg.ArchivePrefix = "snapshots"
	}
	return &Syncer{
		resolver:  res,
		fetcher:   fetcher,
		store:     store,
		estimator: estimator,
		archive:   archive,
		publisher: publisher,
		clock:     clock,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
	}
}

type fetchResult struct {
	kind    place.PageKind
	content string
	err     error
}

// Run executes one sync for the identity. Re-running with identical
// fetched content produces an identical record modulo the timestamp;
// any fetch failure aborts the run before anything is persisted.
func (s *Syncer) Run(ctx context.Context, identity place.Identity) (place.SyncResult, error) {
	shell, err := s.store.CreateIfAbsent(ctx, identity.ID, identity.Category)
	if err != nil {
		return place.SyncResult{}, fmt.Errorf("%w: create shell for %s: %v", place.ErrPersistFailed, identity.ID, err)
	}

	urls := s.resolver.SourceURLs(identity)
	pages, err := s.fetchPages(ctx, urls)
	if err != nil {
		return place.SyncResult{}, err
	}
	homeContent := pages[place.PageHome]
	menuContent := pages[place.PageMenu]

	// The info page duplicates the home page's static profile on the
	// source site, so home content serves both.
	menu := normalize.Menu(menuContent)
	hours := normalize.Hours(homeContent)

	categories := shell.Profile.Categories
	if len(categories) == 0 {
		categories = []string{identity.Category}
	}
	now := s.clock.Now()
	reading := s.estimator.Estimate(homeContent, categories, now)

	fields := place.SyncedFields{
		Menu:          menu,
		Hours:         hours,
		CongestionNow: reading,
		LastFetchedAt: now,
	}
	modified, err := s.store.UpdateSynced(ctx, identity.ID, fields)
	if err != nil {
		metrics.SyncsTotal("persist_failed")
		return place.SyncResult{}, fmt.Errorf("%w: update %s: %v", place.ErrPersistFailed, identity.ID, err)
	}
	if modified == 0 {
		metrics.SyncsTotal("persist_failed")
		return place.SyncResult{}, fmt.Errorf("%w: update %s applied to no record", place.ErrPersistFailed, identity.ID)
	}

	result := place.SyncResult{
		PlaceID:       identity.ID,
		Category:      identity.Category,
		MenuItems:     len(menu),
		HourEntries:   len(hours),
		CongestionNow: reading,
		ModifiedCount: modified,
		FetchedAt:     now,
	}
	if digest, err := s.hasher.Hash([]byte(homeContent)); err == nil {
		result.ContentHash = digest
	}

	s.archiveSnapshots(ctx, identity, pages)
	s.publishCompleted(ctx, result)
	metrics.SyncsTotal("succeeded")
	metrics.ItemsExtracted("menu", len(menu))
	metrics.ItemsExtracted("hours", len(hours))
	s.logger.Info("sync completed",
		zap.String("place_id", identity.ID),
		zap.String("category", identity.Category),
		zap.Int("menu_items", result.MenuItems),
		zap.Int("hour_entries", result.HourEntries),
		zap.String("congestion_source", reading.Source))
	return result, nil
}

// fetchPages fetches the home page and, when the URL set carries one,
// the menu page. The two fetches are independent and run concurrently;
// both must land before normalization proceeds.
func (s *Syncer) fetchPages(ctx context.Context, urls place.SourceURLSet) (map[place.PageKind]string, error) {
	kinds := []place.PageKind{place.PageHome}
	if _, ok := urls[place.PageMenu]; ok {
		kinds = append(kinds, place.PageMenu)
	}

	results := make(chan fetchResult, len(kinds))
	for _, kind := range kinds {
		go func(kind place.PageKind, url string) {
			start := s.clock.Now()
			content, err := s.fetcher.Fetch(ctx, url)
			metrics.ObserveFetch(string(kind), s.clock.Now().Sub(start), err == nil)
			results <- fetchResult{kind: kind, content: content, err: err}
		}(kind, urls[kind])
	}

	pages := make(map[place.PageKind]string, len(kinds))
	var firstErr error
	for range kinds {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %s page: %v", place.ErrFetchFailed, r.kind, r.err)
		}
		pages[r.kind] = r.content
	}
	if firstErr != nil {
		metrics.SyncsTotal("fetch_failed")
		return nil, firstErr
	}
	return pages, nil
}

// archiveSnapshots stores raw page text for later reprocessing. Archive
// failures are logged, never surfaced: the run already has its data.
func (s *Syncer) archiveSnapshots(ctx context.Context, identity place.Identity, pages map[place.PageKind]string) {
	if s.archive == nil {
		return
	}
	for kind, content := range pages {
		if content == "" {
			continue
		}
		path := fmt.Sprintf("%s/%s/%s.md", s.cfg.ArchivePrefix, identity.ID, kind)
		if _, err := s.archive.Put(ctx, path, []byte(content)); err != nil {
			s.logger.Warn("snapshot archive failed",
				zap.String("place_id", identity.ID),
				zap.String("page", string(kind)),
				zap.Error(err))
		}
	}
}

func (s *Syncer) publishCompleted(ctx context.Context, result place.SyncResult) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, s.cfg.Topic, result); err != nil {
		s.logger.Warn("sync event publish failed",
			zap.String("place_id", result.PlaceID),
			zap.Error(err))
	}
}
