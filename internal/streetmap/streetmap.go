// Package streetmap renders a street-map raster centered on a location by
// stitching slippy-map tiles.
package streetmap

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	simage "starmap/internal/image"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// SourceName labels street-map errors and layers.
const SourceName = "street map"

// Defaults applied by NewRenderer.
const (
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultZoom        = 14
	DefaultConcurrency = 4
	DefaultCacheSize   = 256
	MaxZoom            = 19
)

// Config holds the tile source and fetch limits.
type Config struct {
	TileURL     string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
	CacheSize   int
	Background  color.Color // shown where no tile exists (polar rows)
}

// Renderer fetches and caches tiles. It is safe for concurrent use.
type Renderer struct {
	template    string
	userAgent   string
	concurrency int
	background  color.Color
	httpClient  *http.Client
	cache       *lru.Cache[TileKey, image.Image]
}

// NewRenderer builds a Renderer, filling defaults for empty fields.
func NewRenderer(cfg Config) (*Renderer, error) {
	tmpl := strings.TrimSpace(cfg.TileURL)
	if tmpl == "" {
		tmpl = DefaultTileURL
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = "starmap/1.0"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	conc := cfg.Concurrency
	if conc <= 0 {
		conc = DefaultConcurrency
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	bg := cfg.Background
	if bg == nil {
		bg = color.RGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff}
	}
	cache, err := lru.New[TileKey, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tile cache: %w", err)
	}
	return &Renderer{
		template:    tmpl,
		userAgent:   agent,
		concurrency: conc,
		background:  bg,
		httpClient:  &http.Client{Timeout: timeout},
		cache:       cache,
	}, nil
}

// Request describes the map to render.
type Request struct {
	Width, Height int
	Latitude      float64
	Longitude     float64
	Zoom          int // tile zoom level; 0 selects DefaultZoom
}

// Render stitches the tiles covering a Width x Height window centered on the
// requested position. Any tile failure fails the whole render.
func (r *Renderer) Render(ctx context.Context, req Request) (*simage.Layer, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid map size %dx%d", req.Width, req.Height)
	}
	z := req.Zoom
	if z <= 0 {
		z = DefaultZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}

	cx, cy := WorldPixel(req.Latitude, req.Longitude, z)
	originX := int(math.Floor(cx)) - req.Width/2
	originY := int(math.Floor(cy)) - req.Height/2

	out := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	type placed struct {
		key TileKey
		at  image.Point
		img image.Image
	}
	var tiles []*placed
	n := 1 << z
	for ty := floorDiv(originY, TileSize); ty*TileSize < originY+req.Height; ty++ {
		if ty < 0 || ty >= n {
			continue
		}
		for tx := floorDiv(originX, TileSize); tx*TileSize < originX+req.Width; tx++ {
			tiles = append(tiles, &placed{
				key: TileKey{Z: z, X: wrap(tx, z), Y: ty},
				at:  image.Pt(tx*TileSize-originX, ty*TileSize-originY),
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, t := range tiles {
		g.Go(func() error {
			img, err := r.tile(gctx, t.key)
			if err != nil {
				return err
			}
			t.img = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range tiles {
		dr := image.Rectangle{Min: t.at, Max: t.at.Add(t.img.Bounds().Size())}
		draw.Draw(out, dr, t.img, t.img.Bounds().Min, draw.Over)
	}
	return simage.NewLayer(SourceName, out), nil
}

// tile returns a decoded tile, from cache when possible.
func (r *Renderer) tile(ctx context.Context, k TileKey) (image.Image, error) {
	if img, ok := r.cache.Get(k); ok {
		return img, nil
	}
	url := TileURL(r.template, k)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tile request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &simage.FetchError{Source: SourceName, URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &simage.FetchError{Source: SourceName, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", resp.Status)}
	}

	layer, err := simage.Decode(url, resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &simage.FetchError{Source: SourceName, URL: url, Err: ctx.Err()}
		}
		return nil, err
	}
	r.cache.Add(k, layer.Image)
	return layer.Image, nil
}

// CachedTiles returns the number of tiles held in the cache.
func (r *Renderer) CachedTiles() int {
	return r.cache.Len()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
