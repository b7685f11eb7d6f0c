// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/placepulse/placesync/internal/congestion"
	"github.com/placepulse/placesync/internal/resolver"
)

// Provider names accepted by the per-subsystem selectors.
const (
	FetchFirecrawl = "firecrawl"
	FetchDirect    = "direct"

	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	ArchiveNoop   = "noop"
	ArchiveMemory = "memory"
	ArchiveLocal  = "local"
	ArchiveGCS    = "gcs"

	PublisherNoop   = "noop"
	PublisherMemory = "memory"
	PublisherPubSub = "pubsub"
)

// Config captures all service configuration knobs loaded via Viper.
// The externally supplied domain tables (category keywords, menu
// allow-list, severity vocabulary, thresholds, priors) live in the
// resolver and congestion sections; absent keys keep the stock tables.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Fetch      FetchConfig       `mapstructure:"fetch"`
	Store      StoreConfig       `mapstructure:"store"`
	Archive    ArchiveConfig     `mapstructure:"archive"`
	Publisher  PublisherConfig   `mapstructure:"publisher"`
	Resolver   resolver.Config   `mapstructure:"resolver"`
	Congestion congestion.Config `mapstructure:"congestion"`
	Logging    LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FetchConfig selects and configures the page fetcher.
type FetchConfig struct {
	Provider       string `mapstructure:"provider"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	// RPS/Burst throttle fetches per source host; zero RPS disables.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
	// Firecrawl settings; required when provider is "firecrawl".
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig selects and configures the place-record store.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
	// Redis settings.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	// Postgres settings.
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// ArchiveConfig selects where raw page snapshots land.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"`
	Prefix    string `mapstructure:"prefix"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PublisherConfig selects the sync-completed event channel.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. An empty path skips the
// file and relies on defaults plus PLACESYNC_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLACESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// Struct-valued defaults: keys absent from viper leave these fields
	// untouched during Unmarshal, present keys override per field.
	cfg := Config{
		Resolver:   resolver.DefaultConfig(),
		Congestion: congestion.DefaultConfig(),
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	// direct needs no credentials, so bare defaults always validate;
	// firecrawl is opted into together with its api key.
	v.SetDefault("fetch.provider", FetchDirect)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.user_agent", "placesync-bot/0.1")
	v.SetDefault("fetch.rps", 2.0)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("store.provider", StoreMemory)
	v.SetDefault("store.table", "places")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("archive.provider", ArchiveNoop)
	v.SetDefault("archive.prefix", "snapshots")
	v.SetDefault("publisher.provider", PublisherNoop)
	v.SetDefault("publisher.topic", "place-sync-completed")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values per selected provider.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}

	switch c.Fetch.Provider {
	case FetchFirecrawl:
		if c.Fetch.APIKey == "" {
			return fmt.Errorf("fetch.api_key must be set for the firecrawl provider")
		}
	case FetchDirect:
	default:
		return fmt.Errorf("fetch.provider %q is not one of firecrawl, direct", c.Fetch.Provider)
	}

	switch c.Store.Provider {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr must be set for the redis provider")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set for the postgres provider")
		}
	default:
		return fmt.Errorf("store.provider %q is not one of memory, redis, postgres", c.Store.Provider)
	}

	switch c.Archive.Provider {
	case ArchiveNoop, ArchiveMemory:
	case ArchiveLocal:
		if c.Archive.LocalDir == "" {
			return fmt.Errorf("archive.local_dir must be set for the local provider")
		}
	case ArchiveGCS:
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("archive.provider %q is not one of noop, memory, local, gcs", c.Archive.Provider)
	}

	switch c.Publisher.Provider {
	case PublisherNoop, PublisherMemory:
	case PublisherPubSub:
		if c.Publisher.ProjectID == "" {
			return fmt.Errorf("publisher.project_id must be set for the pubsub provider")
		}
	default:
		return fmt.Errorf("publisher.provider %q is not one of noop, memory, pubsub", c.Publisher.Provider)
	}

	if c.Resolver.RootURL == "" {
		return fmt.Errorf("resolver.root_url must be set")
	}
	if c.Resolver.DefaultCategory == "" {
		return fmt.Errorf("resolver.default_category must be set")
	}
	if c.Congestion.PriorWeight < 0 || c.Congestion.PriorWeight > 1 {
		return fmt.Errorf("congestion.prior_weight must be within [0, 1]")
	}
	t := c.Congestion.Thresholds
	if !(t.Quiet < t.Normal && t.Normal < t.Busy) {
		return fmt.Errorf("congestion.thresholds must be strictly increasing")
	}

	return nil
}

// FetchTimeout converts the fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
