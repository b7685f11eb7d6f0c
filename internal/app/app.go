// Package app initializes and holds long-lived services, acting as the
// dependency injection point for commands.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	archivegcs "github.com/placepulse/placesync/internal/archive/gcs"
	archivelocal "github.com/placepulse/placesync/internal/archive/local"
	archivemem "github.com/placepulse/placesync/internal/archive/memory"
	"github.com/placepulse/placesync/internal/clock/system"
	"github.com/placepulse/placesync/internal/config"
	"github.com/placepulse/placesync/internal/congestion"
	"github.com/placepulse/placesync/internal/fetch/direct"
	"github.com/placepulse/placesync/internal/fetch/firecrawl"
	"github.com/placepulse/placesync/internal/fetch/ratelimit"
	"github.com/placepulse/placesync/internal/hash/sha256"
	"github.com/placepulse/placesync/internal/id/uuid"
	"github.com/placepulse/placesync/internal/logging"
	"github.com/placepulse/placesync/internal/metrics"
	"github.com/placepulse/placesync/internal/place"
	pubmem "github.com/placepulse/placesync/internal/publisher/memory"
	pubps "github.com/placepulse/placesync/internal/publisher/pubsub"
	"github.com/placepulse/placesync/internal/resolver"
	storemem "github.com/placepulse/placesync/internal/store/memory"
	storepg "github.com/placepulse/placesync/internal/store/postgres"
	storeredis "github.com/placepulse/placesync/internal/store/redis"
	"github.com/placepulse/placesync/internal/syncer"
)

// App holds the shared, long-lived services built from configuration.
// It is initialized once at startup and closed once at shutdown.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Resolver  *resolver.Resolver
	Fetcher   place.Fetcher
	Store     place.Store
	Archive   place.Archive
	Publisher place.Publisher
	Syncer    *syncer.Syncer
	IDGen     place.IDGenerator

	pgStore      *storepg.Store
	redisClient  *goredis.Client
	gcsClient    *gstorage.Client
	pubsubClient *pubsub.Client
}

// New builds an App from configuration, instantiating the provider each
// subsystem selects. It fails fast when any critical service cannot be
// initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	a := &App{
		Config: cfg,
		Logger: logger,
		IDGen:  uuid.New(),
	}

	a.Resolver = resolver.New(cfg.Resolver)

	if err := a.initFetcher(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initArchive(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initPublisher(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Syncer = syncer.New(
		a.Resolver,
		a.Fetcher,
		a.Store,
		congestion.New(cfg.Congestion),
		a.Archive,
		a.Publisher,
		system.New(),
		sha256.New(),
		syncer.Config{
			Topic:         cfg.Publisher.Topic,
			ArchivePrefix: cfg.Archive.Prefix,
		},
		logger.Named("syncer"),
	)

	logger.Info("services initialized",
		zap.String("fetch", cfg.Fetch.Provider),
		zap.String("store", cfg.Store.Provider),
		zap.String("archive", cfg.Archive.Provider),
		zap.String("publisher", cfg.Publisher.Provider))
	return a, nil
}

func (a *App) initFetcher() error {
	cfg := a.Config
	switch cfg.Fetch.Provider {
	case config.FetchFirecrawl:
		fc, err := firecrawl.New(firecrawl.Config{
			APIKey:  cfg.Fetch.APIKey,
			BaseURL: cfg.Fetch.BaseURL,
			Timeout: cfg.FetchTimeout(),
		}, a.Logger.Named("firecrawl"))
		if err != nil {
			return fmt.Errorf("init firecrawl fetcher: %w", err)
		}
		a.Fetcher = fc
	case config.FetchDirect:
		a.Fetcher = direct.New(direct.Config{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		})
	default:
		return fmt.Errorf("unknown fetch provider: %s", cfg.Fetch.Provider)
	}
	if cfg.Fetch.RPS > 0 {
		a.Fetcher = ratelimit.New(a.Fetcher, ratelimit.Config{
			RPS:   cfg.Fetch.RPS,
			Burst: cfg.Fetch.Burst,
		})
	}
	return nil
}

func (a *App) initStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Store.Provider {
	case config.StoreMemory:
		a.Store = storemem.New()
	case config.StoreRedis:
		a.redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err := a.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		a.Store = storeredis.New(storeredis.NewClient(a.redisClient))
	case config.StorePostgres:
		pg, err := storepg.New(ctx, storepg.Config{
			DSN:      cfg.Store.DSN,
			Table:    cfg.Store.Table,
			MaxConns: int32(cfg.Store.MaxConns),
			MinConns: int32(cfg.Store.MinConns),
		})
		if err != nil {
			return fmt.Errorf("init postgres store: %w", err)
		}
		a.pgStore = pg
		a.Store = pg
	default:
		return fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}
	return nil
}

func (a *App) initArchive(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Archive.Provider {
	case config.ArchiveNoop:
		// Snapshots are discarded; the syncer tolerates a nil archive.
	case config.ArchiveMemory:
		a.Archive = archivemem.New()
	case config.ArchiveLocal:
		ar, err := archivelocal.New(archivelocal.Config{BaseDir: cfg.Archive.LocalDir})
		if err != nil {
			return fmt.Errorf("init local archive: %w", err)
		}
		a.Archive = ar
	case config.ArchiveGCS:
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		a.gcsClient = client
		ar, err := archivegcs.New(client, archivegcs.Config{Bucket: cfg.Archive.GCSBucket})
		if err != nil {
			return fmt.Errorf("init gcs archive: %w", err)
		}
		a.Archive = ar
	default:
		return fmt.Errorf("unknown archive provider: %s", cfg.Archive.Provider)
	}
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Publisher.Provider {
	case config.PublisherNoop:
		// Events are dropped; the syncer tolerates a nil publisher.
	case config.PublisherMemory:
		a.Publisher = pubmem.New()
	case config.PublisherPubSub:
		client, err := pubsub.NewClient(ctx, cfg.Publisher.ProjectID)
		if err != nil {
			return fmt.Errorf("init pubsub client: %w", err)
		}
		a.pubsubClient = client
		pub, err := pubps.New(client)
		if err != nil {
			return fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.Publisher = pub
	default:
		return fmt.Errorf("unknown publisher provider: %s", cfg.Publisher.Provider)
	}
	return nil
}

// Close releases every held client. Safe to call on a partially
// initialized App.
func (a *App) Close() {
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.Logger.Warn("close pubsub client", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.Logger.Warn("close gcs client", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("close redis client", zap.Error(err))
		}
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	_ = a.Logger.Sync()
}
