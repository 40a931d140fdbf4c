package starfield

import (
	"context"
	"image"
	"testing"
	"time"

	"starmap/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStablePerDayAndPlace(t *testing.T) {
	evening := time.Date(2026, time.July, 4, 20, 0, 0, 0, time.UTC)
	later := time.Date(2026, time.July, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, Seed(evening, 40.7128, -74.006), Seed(later, 40.7129, -74.0061))
	assert.NotEqual(t, Seed(evening, 40.7128, -74.006), Seed(evening.AddDate(0, 0, 1), 40.7128, -74.006))
	assert.NotEqual(t, Seed(evening, 40.7128, -74.006), Seed(evening, -40.7128, -74.006))
}

func TestGenerateDeterministic(t *testing.T) {
	g := New(Options{})
	a, err := g.Generate(context.Background(), 200, 150, 42)
	require.NoError(t, err)
	b, err := g.Generate(context.Background(), 200, 150, 42)
	require.NoError(t, err)
	assert.Equal(t, a.Image.(*image.RGBA).Pix, b.Image.(*image.RGBA).Pix)

	c, err := g.Generate(context.Background(), 200, 150, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Image.(*image.RGBA).Pix, c.Image.(*image.RGBA).Pix)
	assert.Equal(t, SourceName, a.Source)
}

func TestGenerateHasStars(t *testing.T) {
	layer, err := New(Options{}).Generate(context.Background(), 300, 300, 7)
	require.NoError(t, err)
	img := layer.Image.(*image.RGBA)
	bg := DefaultOptions().Background
	br, bgG, bb, _ := bg.RGBA()
	lit := 0
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			p := img.RGBAAt(x, y)
			if uint32(p.R)<<8 > br+0x2000 || uint32(p.G)<<8 > bgG+0x2000 || uint32(p.B)<<8 > bb+0x2000 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 20)
}

func TestGenerateErrors(t *testing.T) {
	_, err := New(Options{}).Generate(context.Background(), 0, 10, 1)
	assert.ErrorIs(t, err, geometry.ErrInvalidDimensions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{}).Generate(ctx, 10, 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
