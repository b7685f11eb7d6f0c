package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archivemem "github.com/placepulse/placesync/internal/archive/memory"
	"github.com/placepulse/placesync/internal/config"
	"github.com/placepulse/placesync/internal/congestion"
	pubmem "github.com/placepulse/placesync/internal/publisher/memory"
	"github.com/placepulse/placesync/internal/resolver"
	storemem "github.com/placepulse/placesync/internal/store/memory"
)

func baseConfig() config.Config {
	return config.Config{
		Server:     config.ServerConfig{Port: 8080},
		Fetch:      config.FetchConfig{Provider: config.FetchDirect, TimeoutSeconds: 5},
		Store:      config.StoreConfig{Provider: config.StoreMemory},
		Archive:    config.ArchiveConfig{Provider: config.ArchiveNoop},
		Publisher:  config.PublisherConfig{Provider: config.PublisherNoop},
		Resolver:   resolver.DefaultConfig(),
		Congestion: congestion.DefaultConfig(),
	}
}

func TestNewWithMemoryProviders(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Archive.Provider = config.ArchiveMemory
	cfg.Publisher.Provider = config.PublisherMemory

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Syncer)
	assert.NotNil(t, a.Resolver)
	assert.NotNil(t, a.Fetcher)
	assert.IsType(t, &storemem.Store{}, a.Store)
	assert.IsType(t, &archivemem.Archive{}, a.Archive)
	assert.IsType(t, &pubmem.Publisher{}, a.Publisher)
}

func TestNewNoopSideChannelsAreNil(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), baseConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Archive)
	assert.Nil(t, a.Publisher)
}

func TestNewRejectsUnknownProviders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"fetch", func(c *config.Config) { c.Fetch.Provider = "carrier-pigeon" }},
		{"store", func(c *config.Config) { c.Store.Provider = "floppy" }},
		{"archive", func(c *config.Config) { c.Archive.Provider = "tape" }},
		{"publisher", func(c *config.Config) { c.Publisher.Provider = "smoke-signal" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig()
			tt.mutate(&cfg)
			_, err := New(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown")
		})
	}
}
