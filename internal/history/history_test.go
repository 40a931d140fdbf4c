package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"starmap/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, time.July, 4, 21, 30, 0, 0, time.UTC)

	for i, occ := range []string{"Wedding", "First Date", "Anniversary"} {
		_, err := s.Record(ctx, Entry{
			Occasion: occ, Location: "New York", Latitude: 40.7, Longitude: -74,
			Date: date, Mode: "star", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Anniversary", recent[0].Occasion)
	assert.Equal(t, "First Date", recent[1].Occasion)
	assert.True(t, date.Equal(recent[0].Date))
	assert.Equal(t, 40.7, recent[0].Latitude)
}

func TestSuggest(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)
	add := func(occ, loc string, h int) {
		_, err := s.Record(ctx, Entry{Occasion: occ, Location: loc, CreatedAt: base.Add(time.Duration(h) * time.Hour)})
		require.NoError(t, err)
	}
	add("Wedding", "Paris", 0)
	add("Wedding", "Paris", 1)
	add("Wed 50%", "Portland", 2)
	add("Birthday", "Berlin", 3)

	got, err := s.Suggest(ctx, Occasions, "wed", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wedding", "Wed 50%"}, got)

	got, err = s.Suggest(ctx, Occasions, "Wed 5", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wed 50%"}, got)

	got, err = s.Suggest(ctx, Occasions, "Wed_", 0)
	require.NoError(t, err)
	assert.Empty(t, got, "underscore is literal")

	got, err = s.Suggest(ctx, Locations, "p", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, got)
}

func TestLocationCache(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, ok, err := s.LookupLocation(ctx, "10001")
	require.NoError(t, err)
	assert.False(t, ok)

	loc := geocode.Location{Latitude: 40.7484, Longitude: -73.9967, Label: "New York, NY 10001"}
	require.NoError(t, s.RememberLocation(ctx, "10001", loc))
	got, ok, err := s.LookupLocation(ctx, "  10001 ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, loc, got)

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.LookupLocation(ctx, "10001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Record(context.Background(), Entry{Occasion: "x"})
	require.NoError(t, err)
	recent, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

type fakeGeocoder struct {
	calls int
	loc   geocode.Location
	err   error
}

func (f *fakeGeocoder) Resolve(ctx context.Context, q string) (geocode.Location, error) {
	f.calls++
	if loc, ok, err := geocode.ParseLatLon(q); ok {
		return loc, err
	}
	return f.loc, f.err
}

func TestCachingResolver(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	geo := &fakeGeocoder{loc: geocode.Location{Latitude: 48.85, Longitude: 2.35, Label: "Paris"}}
	r := CachingResolver{Store: s, Geocoder: geo}

	loc, err := r.Resolve(ctx, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", loc.Label)
	_, err = r.Resolve(ctx, "paris")
	require.NoError(t, err)
	assert.Equal(t, 1, geo.calls, "second lookup served from cache")

	_, err = r.Resolve(ctx, "1.5, 2.5")
	require.NoError(t, err)
	assert.Equal(t, 2, geo.calls)

	geo.err = errors.New("offline")
	_, err = r.Resolve(ctx, "Rome")
	assert.Error(t, err)
}
