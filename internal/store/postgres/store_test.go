package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placepulse/placesync/internal/place"
)

func TestNewWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(mock, "bad-table;drop")
	require.Error(t, err)

	_, err = NewWithPool(nil, "places")
	require.Error(t, err)
}

func TestCreateIfAbsent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "places")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO places").
		WithArgs("123", "naver", []byte(`{"categories":["restaurant"]}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT platform, profile, hours, menu, congestion_now, last_fetched_at").
		WithArgs("123").
		WillReturnRows(pgxmock.NewRows(
			[]string{"platform", "profile", "hours", "menu", "congestion_now", "last_fetched_at"}).
			AddRow("naver", []byte(`{"categories":["restaurant"]}`), []byte(nil), []byte(nil), []byte(nil), (*time.Time)(nil)))

	rec, err := store.CreateIfAbsent(context.Background(), "123", "restaurant")
	require.NoError(t, err)
	assert.Equal(t, "123", rec.ID)
	assert.Equal(t, []string{"restaurant"}, rec.Profile.Categories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "places")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT platform, profile, hours, menu, congestion_now, last_fetched_at").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(
			[]string{"platform", "profile", "hours", "menu", "congestion_now", "last_fetched_at"}))

	_, ok, err := store.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSynced(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "places")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	fields := place.SyncedFields{
		Menu:          []place.MenuItem{{Name: "비빔밥", Price: "9500"}},
		Hours:         []place.HourEntry{{Day: place.Monday, Open: "10:00", Close: "21:00"}},
		CongestionNow: place.CongestionReading{Label: place.CongestionNormal, Score: 50, Source: place.SourceExtracted, Confidence: 0.9},
		LastFetchedAt: now,
	}

	mock.ExpectExec("UPDATE places").
		WithArgs("123", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := store.UpdateSynced(context.Background(), "123", fields)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSyncedMissingRecord(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "places")
	require.NoError(t, err)

	mock.ExpectExec("UPDATE places").
		WithArgs("missing", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	n, err := store.UpdateSynced(context.Background(), "missing", place.SyncedFields{})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
