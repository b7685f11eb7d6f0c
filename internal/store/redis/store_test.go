package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placepulse/placesync/internal/place"
)

type fakeClient struct {
	data map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string)}
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *fakeClient) Set(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeClient) SetNX(_ context.Context, key, value string) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value
	return true, nil
}

func TestCreateIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(newFakeClient())

	rec, err := s.CreateIfAbsent(ctx, "123", "restaurant")
	require.NoError(t, err)
	assert.Equal(t, "123", rec.ID)
	assert.Equal(t, []string{"restaurant"}, rec.Profile.Categories)

	rec, err = s.CreateIfAbsent(ctx, "123", "salon")
	require.NoError(t, err)
	assert.Equal(t, []string{"restaurant"}, rec.Profile.Categories, "shell must not be overwritten")
}

func TestUpdateSyncedRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(newFakeClient())
	_, err := s.CreateIfAbsent(ctx, "123", "restaurant")
	require.NoError(t, err)

	fields := place.SyncedFields{
		Menu:          []place.MenuItem{{Name: "불고기", Price: "12000", IsSignature: true}},
		Hours:         []place.HourEntry{{Day: place.Friday, Open: "10:00", Close: "22:00"}},
		CongestionNow: place.CongestionReading{Label: place.CongestionBusy, Score: 80, Source: place.SourceExtracted, Confidence: 0.9},
		LastFetchedAt: time.Unix(1700000000, 0).UTC(),
	}
	n, err := s.UpdateSynced(ctx, "123", fields)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, ok, err := s.GetByID(ctx, "123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fields.Menu, rec.Menu)
	assert.Equal(t, fields.Hours, rec.Hours)
	assert.Equal(t, fields.CongestionNow, rec.CongestionNow)
	assert.True(t, fields.LastFetchedAt.Equal(rec.LastFetchedAt))
}

func TestUpdateSyncedMissingRecord(t *testing.T) {
	t.Parallel()

	s := New(newFakeClient())
	n, err := s.UpdateSynced(context.Background(), "missing", place.SyncedFields{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetByIDMissing(t *testing.T) {
	t.Parallel()

	s := New(newFakeClient())
	_, ok, err := s.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
