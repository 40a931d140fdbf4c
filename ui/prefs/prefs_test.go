package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	p := LoadFrom(path)
	assert.Equal(t, 60.0, p.FloatWithFallback(KeyFillPercent, 60))
	assert.Equal(t, 2550, p.Int(KeyWidth, 2550))

	p.SetFloat(KeyFillPercent, 45.5)
	p.SetInt(KeyWidth, 3300)
	p.SetString(KeyOccasion, "First Date")
	p.SetBool("dark", true)
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, 45.5, q.Float(KeyFillPercent))
	assert.Equal(t, 3300, q.Int(KeyWidth, 0))
	assert.Equal(t, "First Date", q.String(KeyOccasion))
	assert.Equal(t, "Brooklyn", q.StringWithFallback(KeyLocation, "Brooklyn"))
	assert.True(t, q.Bool("dark", false))
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Equal(t, 7, p.Int(KeyZoomPercent, 7))
	p.SetInt(KeyZoomPercent, 150)
	require.NoError(t, p.Save())
	assert.Equal(t, 150, LoadFrom(path).Int(KeyZoomPercent, 0))
}

func TestWrongTypeUsesFallback(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	p.SetString(KeyWidth, "wide")
	assert.Equal(t, 10, p.Int(KeyWidth, 10))
	assert.Equal(t, "", p.String(KeyHeight))
}
