package streetmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	simage "starmap/internal/image"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldPixel(t *testing.T) {
	x, y := WorldPixel(0, 0, 1)
	assert.InDelta(t, 256, x, 1e-9)
	assert.InDelta(t, 256, y, 1e-9)

	x, y = WorldPixel(MaxLatitude, -180, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-3)

	_, yClamped := WorldPixel(89.9, 0, 0)
	assert.InDelta(t, y, yClamped, 1e-3)

	x, y = WorldPixel(40.7128, -74.006, 14)
	lat, lon := LatLon(x, y, 14)
	assert.InDelta(t, 40.7128, lat, 1e-9)
	assert.InDelta(t, -74.006, lon, 1e-9)
}

func TestTileURL(t *testing.T) {
	assert.Equal(t, "https://t/3/5/2.png", TileURL("https://t/{z}/{x}/{y}.png", TileKey{Z: 3, X: 5, Y: 2}))
}

func TestWrapAndFloorDiv(t *testing.T) {
	assert.Equal(t, 3, wrap(-1, 2))
	assert.Equal(t, 0, wrap(4, 2))
	assert.Equal(t, -1, floorDiv(-1, 256))
	assert.Equal(t, 0, floorDiv(255, 256))
	assert.Equal(t, -2, floorDiv(-257, 256))
}

// tileServer serves solid tiles whose red channel encodes the column.
func tileServer(t *testing.T, hits, inflight, peak *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cur := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		var z, x, y int
		if _, err := fmt.Sscanf(r.URL.Path, "/%d/%d/%d.png", &z, &x, &y); err != nil {
			http.NotFound(w, r)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
		c := color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255}
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		var buf bytes.Buffer
		png.Encode(&buf, img)
		w.Write(buf.Bytes())
	}))
}

func TestRenderStitchesAndCaches(t *testing.T) {
	var hits, inflight, peak atomic.Int32
	srv := tileServer(t, &hits, &inflight, &peak)
	defer srv.Close()

	r, err := NewRenderer(Config{TileURL: srv.URL + "/{z}/{x}/{y}.png", Concurrency: 2})
	require.NoError(t, err)

	req := Request{Width: 600, Height: 400, Latitude: 0, Longitude: 0, Zoom: 3}
	layer, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 600, layer.Width())
	assert.Equal(t, 400, layer.Height())
	assert.Equal(t, SourceName, layer.Source)

	// At zoom 3 the center (1024,1024) is a tile corner: the pixel just left
	// of center belongs to column 3, the one right of it to column 4.
	img := layer.Image.(*image.RGBA)
	assert.Equal(t, uint8(3), img.RGBAAt(299, 199).R)
	assert.Equal(t, uint8(4), img.RGBAAt(300, 199).R)
	assert.Equal(t, uint8(3), img.RGBAAt(299, 199).G)
	assert.Equal(t, uint8(4), img.RGBAAt(300, 200).G)

	first := hits.Load()
	assert.Equal(t, int32(8), first, "4 columns x 2 rows")
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 8, r.CachedTiles())

	_, err = r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, hits.Load(), "second render served from cache")
}

func TestRenderWrapsAntimeridian(t *testing.T) {
	var hits, inflight, peak atomic.Int32
	srv := tileServer(t, &hits, &inflight, &peak)
	defer srv.Close()

	r, err := NewRenderer(Config{TileURL: srv.URL + "/{z}/{x}/{y}.png"})
	require.NoError(t, err)
	layer, err := r.Render(context.Background(), Request{Width: 100, Height: 100, Latitude: 0, Longitude: 180, Zoom: 2})
	require.NoError(t, err)
	img := layer.Image.(*image.RGBA)
	assert.Equal(t, uint8(3), img.RGBAAt(10, 50).R, "west of the antimeridian")
	assert.Equal(t, uint8(0), img.RGBAAt(90, 50).R, "east wraps to column 0")
}

func TestRenderTileFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r, err := NewRenderer(Config{TileURL: srv.URL + "/{z}/{x}/{y}.png"})
	require.NoError(t, err)
	_, err = r.Render(context.Background(), Request{Width: 100, Height: 100, Zoom: 5})
	var fe *simage.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusTooManyRequests, fe.StatusCode)
	assert.True(t, fe.Retryable())
	assert.Zero(t, r.CachedTiles())
}

func TestRenderInvalidSize(t *testing.T) {
	r, err := NewRenderer(Config{})
	require.NoError(t, err)
	_, err = r.Render(context.Background(), Request{Width: 0, Height: 10})
	assert.Error(t, err)
}
