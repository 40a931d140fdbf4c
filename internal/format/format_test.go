package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinates(t *testing.T) {
	assert.Equal(t, "40.7128° N, 74.0060° W", Coordinates(40.7128, -74.0060))
	assert.Equal(t, "33.8688° S, 151.2093° E", Coordinates(-33.8688, 151.2093))
	assert.Equal(t, "0.0000° N, 0.0000° E", Coordinates(0, 0))
}

func TestCoordinatesDMS(t *testing.T) {
	assert.Equal(t, "40°42'46\" N, 74°00'22\" W", CoordinatesDMS(40.7128, -74.0060))
	assert.Equal(t, "10°30'00\" S, 0°00'00\" E", CoordinatesDMS(-10.5, 0))
}

func TestDate(t *testing.T) {
	ts := time.Date(2026, time.July, 4, 21, 30, 0, 0, time.UTC)
	assert.Equal(t, "July 4, 2026", Date(ts))
	assert.Equal(t, "July 4, 2026 at 9:30 PM", DateTime(ts))
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2026, time.July, 4, 21, 30, 0, 0, time.UTC)
	for _, s := range []string{"2026-07-04T21:30", "2026-07-04 21:30", " 2026-07-04T21:30:00 ", "2026-07-04T21:30:00Z"} {
		got, err := ParseDateTime(s, time.UTC)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	got, err := ParseDateTime("2026-07-04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Day())

	_, err = ParseDateTime("", time.UTC)
	assert.Error(t, err)
	_, err = ParseDateTime("yesterday", time.UTC)
	assert.Error(t, err)
}
