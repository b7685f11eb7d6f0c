package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placepulse/placesync/internal/congestion"
	"github.com/placepulse/placesync/internal/resolver"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, FetchDirect, cfg.Fetch.Provider)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, StoreMemory, cfg.Store.Provider)
	assert.Equal(t, ArchiveNoop, cfg.Archive.Provider)
	assert.Equal(t, PublisherNoop, cfg.Publisher.Provider)
	assert.Equal(t, "place-sync-completed", cfg.Publisher.Topic)
	assert.True(t, cfg.Logging.Development)

	// Domain tables fall back to the stock values.
	assert.Equal(t, "https://m.place.naver.com", cfg.Resolver.RootURL)
	assert.Equal(t, "restaurant", cfg.Resolver.DefaultCategory)
	assert.NotEmpty(t, cfg.Resolver.Categories)
	assert.Contains(t, cfg.Resolver.MenuCategories, "cafe")
	assert.Len(t, cfg.Congestion.Keywords, 4)
	assert.Equal(t, 30, cfg.Congestion.Thresholds.Quiet)
	assert.Equal(t, 60, cfg.Congestion.Thresholds.Normal)
	assert.Equal(t, 85, cfg.Congestion.Thresholds.Busy)
	assert.InDelta(t, 0.6, cfg.Congestion.PriorWeight, 0.001)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9090
fetch:
  provider: direct
  timeout_seconds: 5
store:
  provider: postgres
  dsn: postgres://localhost/placesync
archive:
  provider: local
  local_dir: /tmp/snapshots
publisher:
  provider: pubsub
  project_id: test-project
resolver:
  default_category: cafe
  categories:
    - keyword: restaurant
      category: restaurant
    - keyword: cafe
      category: cafe
congestion:
  thresholds:
    quiet: 20
    normal: 50
    busy: 80
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, FetchDirect, cfg.Fetch.Provider)
	assert.Equal(t, StorePostgres, cfg.Store.Provider)
	assert.Equal(t, "postgres://localhost/placesync", cfg.Store.DSN)
	assert.Equal(t, ArchiveLocal, cfg.Archive.Provider)
	assert.Equal(t, PublisherPubSub, cfg.Publisher.Provider)
	assert.False(t, cfg.Logging.Development)

	// File-supplied tables replace the stock ones; untouched sections
	// keep their defaults.
	assert.Equal(t, "cafe", cfg.Resolver.DefaultCategory)
	assert.Len(t, cfg.Resolver.Categories, 2)
	assert.Equal(t, "https://m.place.naver.com", cfg.Resolver.RootURL)
	assert.Equal(t, 20, cfg.Congestion.Thresholds.Quiet)
	assert.Equal(t, 50, cfg.Congestion.Thresholds.Normal)
	assert.Equal(t, 80, cfg.Congestion.Thresholds.Busy)
	assert.Len(t, cfg.Congestion.Keywords, 4)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PLACESYNC_SERVER_PORT", "7070")
	t.Setenv("PLACESYNC_FETCH_PROVIDER", "firecrawl")
	t.Setenv("PLACESYNC_FETCH_API_KEY", "fc-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, FetchFirecrawl, cfg.Fetch.Provider)
	assert.Equal(t, "fc-test", cfg.Fetch.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Server:     ServerConfig{Port: 8080},
			Fetch:      FetchConfig{Provider: FetchDirect, TimeoutSeconds: 10},
			Store:      StoreConfig{Provider: StoreMemory},
			Archive:    ArchiveConfig{Provider: ArchiveNoop},
			Publisher:  PublisherConfig{Provider: PublisherNoop},
			Resolver:   resolver.DefaultConfig(),
			Congestion: congestion.DefaultConfig(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"firecrawl without key", func(c *Config) { c.Fetch.Provider = FetchFirecrawl; c.Fetch.APIKey = "" }, "fetch.api_key"},
		{"unknown fetch provider", func(c *Config) { c.Fetch.Provider = "soap" }, "fetch.provider"},
		{"redis without addr", func(c *Config) { c.Store.Provider = StoreRedis; c.Store.RedisAddr = "" }, "store.redis_addr"},
		{"postgres without dsn", func(c *Config) { c.Store.Provider = StorePostgres }, "store.dsn"},
		{"local archive without dir", func(c *Config) { c.Archive.Provider = ArchiveLocal }, "archive.local_dir"},
		{"gcs archive without bucket", func(c *Config) { c.Archive.Provider = ArchiveGCS }, "archive.gcs_bucket"},
		{"pubsub without project", func(c *Config) { c.Publisher.Provider = PublisherPubSub }, "publisher.project_id"},
		{"empty root url", func(c *Config) { c.Resolver.RootURL = "" }, "resolver.root_url"},
		{"empty default category", func(c *Config) { c.Resolver.DefaultCategory = "" }, "resolver.default_category"},
		{"prior weight above one", func(c *Config) { c.Congestion.PriorWeight = 1.5 }, "congestion.prior_weight"},
		{"unordered thresholds", func(c *Config) { c.Congestion.Thresholds.Normal = 10 }, "congestion.thresholds"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
