// Package render orchestrates poster rendering: it sizes the canvas, places
// one or two circles, composites fetched rasters into them, strokes borders
// and lays out text, discarding renders superseded by newer ones.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"sync/atomic"

	simage "starmap/internal/image"
	"starmap/internal/layout"
	"starmap/internal/paint"
	"starmap/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// maxRasterSide caps the raster size requested from sources.
const maxRasterSide = 8192

// Config wires a Controller to its sources.
type Config struct {
	Stars    Source
	Streets  Source
	Reporter Reporter
}

// Controller owns the poster canvas. Render may be called from any goroutine;
// only the newest render's drawing reaches the canvas.
type Controller struct {
	stars    Source
	streets  Source
	reporter Reporter

	generation atomic.Uint64
	download   atomic.Bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	mu     sync.Mutex // guards canvas and last
	canvas *paint.Canvas
	last   *Result
}

// NewController creates a Controller with an empty canvas.
func NewController(cfg Config) *Controller {
	rep := cfg.Reporter
	if rep == nil {
		rep = NopReporter{}
	}
	return &Controller{
		stars:    cfg.Stars,
		streets:  cfg.Streets,
		reporter: rep,
		canvas:   paint.NewCanvas(1, 1),
	}
}

// Generation returns the generation of the most recently started render.
func (c *Controller) Generation() uint64 {
	return c.generation.Load()
}

// Downloadable reports whether the canvas holds a complete, current render.
func (c *Controller) Downloadable() bool {
	return c.download.Load()
}

// Last returns the most recent successful result, or nil.
func (c *Controller) Last() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Snapshot copies the current canvas pixels.
func (c *Controller) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canvas.Snapshot()
}

func (c *Controller) setDownload(ok bool) {
	c.download.Store(ok)
	c.reporter.DownloadAvailable(ok)
}

// begin starts a new generation, cancels the previous render's work and
// disables download. Reporter calls are made under cancelMu so they reach the
// reporter in generation order.
func (c *Controller) begin(parent context.Context, mode Mode) (uint64, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	gen := c.generation.Add(1)
	c.reporter.RenderStarted(mode, gen)
	c.setDownload(false)
	return gen, ctx, cancel
}

// reportFailure reports err unless a newer render has started since gen.
func (c *Controller) reportFailure(gen uint64, mode Mode, err error) bool {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.stale(gen) {
		return false
	}
	c.reporter.RenderFailed(mode, err)
	return true
}

// finish reports res and turns download on unless a newer render has
// started since gen.
func (c *Controller) finish(gen uint64, res *Result) bool {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.stale(gen) {
		return false
	}
	c.reporter.RenderFinished(res)
	c.setDownload(true)
	return true
}

func (c *Controller) stale(gen uint64) bool {
	return c.generation.Load() != gen
}

// placement is the pure geometry of a poster, computed before any fetch.
type placement struct {
	width, height int
	circles       []geometry.Circle
	textCircle    geometry.Circle
}

func plan(mode Mode, s Settings) (placement, error) {
	w, h := TargetSize(mode, s.Width, s.Height)
	p := placement{width: w, height: h}
	if mode.Paired() {
		o := geometry.Landscape
		if mode == CombinedPortrait {
			o = geometry.Portrait
		}
		pair, err := geometry.CalculateOverlappingPair(float64(w), float64(h), s.FillPercent, s.OverlapPercent, o)
		if err != nil {
			return p, err
		}
		circles := pair.Circles()
		p.circles = circles[:]
		p.textCircle = pair.Envelope()
		return p, nil
	}
	circle, err := geometry.CalculateSingleCircle(float64(w), float64(h), s.FillPercent)
	if err != nil {
		return p, err
	}
	p.circles = []geometry.Circle{circle}
	p.textCircle = circle
	return p, nil
}

// rasterSide is the square raster size that maps 1:1 onto a circle at zoom.
func rasterSide(c geometry.Circle, zoom float64) int {
	side := int(math.Ceil(c.Diameter() * zoom / 100))
	return max(1, min(side, maxRasterSide))
}

type rasters struct {
	stars, streets *simage.Layer
}

// fetch retrieves the rasters mode needs, concurrently.
func (c *Controller) fetch(ctx context.Context, mode Mode, s Settings, side int) (rasters, error) {
	var out rasters
	req := SourceRequest{
		Width:      side,
		Height:     side,
		Latitude:   s.Location.Latitude,
		Longitude:  s.Location.Longitude,
		Time:       s.Date,
		StreetZoom: s.StreetZoom,
	}
	g, gctx := errgroup.WithContext(ctx)
	if mode.NeedsStars() {
		g.Go(func() error {
			if c.stars == nil {
				return &simage.FetchError{Source: "star chart", Err: errors.New("no star source configured")}
			}
			l, err := c.stars.Fetch(gctx, req)
			out.stars = l
			return checkLayer("star chart", l, err)
		})
	}
	if mode.NeedsStreets() {
		g.Go(func() error {
			if c.streets == nil {
				return &simage.FetchError{Source: "street map", Err: errors.New("no street source configured")}
			}
			l, err := c.streets.Fetch(gctx, req)
			out.streets = l
			return checkLayer("street map", l, err)
		})
	}
	return out, g.Wait()
}

// checkLayer turns a source that returned neither a layer nor an error into
// a fetch failure.
func checkLayer(source string, l *simage.Layer, err error) error {
	if err == nil && (l == nil || l.Image == nil) {
		return &simage.FetchError{Source: source, Err: errors.New("source returned no image")}
	}
	return err
}

// Render draws mode with settings s onto the canvas.
//
// Validation failures leave the canvas untouched. A fetch failure leaves the
// canvas cleared to the background. Both are reported once and keep download
// disabled. If a newer render starts before this one reaches the canvas,
// Render returns ErrSuperseded without drawing or reporting.
func (c *Controller) Render(ctx context.Context, mode Mode, s Settings) (*Result, error) {
	return c.RenderFunc(ctx, mode, func(context.Context) (Settings, error) { return s, nil })
}

// Prepare produces the settings of a render, for example by geocoding the
// location. It runs with the render's context and is cancelled when a newer
// render starts.
type Prepare func(ctx context.Context) (Settings, error)

// RenderFunc is Render with settings produced by prepare once the render's
// generation is taken. A prepare failure is reported like a validation
// failure unless the render was superseded meanwhile.
func (c *Controller) RenderFunc(ctx context.Context, mode Mode, prepare Prepare) (*Result, error) {
	gen, ctx, cancel := c.begin(ctx, mode)
	defer cancel()

	fail := func(err error) (*Result, error) {
		if !c.reportFailure(gen, mode, err) {
			return nil, ErrSuperseded
		}
		log.Printf("render: %s #%d failed: %v", mode, gen, err)
		return nil, err
	}

	s, err := prepare(ctx)
	if c.stale(gen) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return fail(err)
	}
	if err := s.Validate(); err != nil {
		return fail(err)
	}
	p, err := plan(mode, s)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrValidation, err))
	}
	zoom := s.EffectiveZoom()

	src, fetchErr := c.fetch(ctx, mode, s, rasterSide(p.circles[0], zoom))

	res, err := c.commit(gen, mode, s, p, src, fetchErr, zoom)
	if errors.Is(err, ErrSuperseded) {
		return nil, err
	}
	if err != nil {
		return fail(err)
	}
	if !c.finish(gen, res) {
		return nil, ErrSuperseded
	}
	return res, nil
}

// commit draws onto the canvas if gen is still current.
func (c *Controller) commit(gen uint64, mode Mode, s Settings, p placement, src rasters, fetchErr error, zoom float64) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(gen) {
		return nil, ErrSuperseded
	}

	c.canvas.Resize(p.width, p.height)
	c.canvas.Clear(s.background())
	if fetchErr != nil {
		return nil, fetchErr
	}

	scene, err := c.draw(mode, s, p, src, zoom)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Mode:       mode,
		Generation: gen,
		Scene:      scene,
		Label:      DimensionsLabel(p.width, p.height, s.DPI),
		Image:      c.canvas.Snapshot(),
	}
	c.last = res
	return res, nil
}

// draw composites rasters, strokes borders and lays out text on a canvas
// already cleared to the background.
func (c *Controller) draw(mode Mode, s Settings, p placement, src rasters, zoom float64) (Scene, error) {
	scene := Scene{
		Width:       p.width,
		Height:      p.height,
		Background:  s.background(),
		Zoom:        zoom,
		Circles:     p.circles,
		BorderWidth: s.BorderWidth,
		BorderColor: s.borderColor(),
	}

	var layers []*simage.Layer
	switch mode {
	case StarMapOnly:
		layers = []*simage.Layer{src.stars}
	case StreetMapOnly:
		layers = []*simage.Layer{src.streets}
	case CanvasLayout:
		layers = []*simage.Layer{overlay(src.stars, src.streets, s.StreetOpacity)}
	default:
		layers = []*simage.Layer{src.stars, src.streets}
		if s.MapOrder == StreetFirst {
			layers[0], layers[1] = layers[1], layers[0]
		}
	}

	for i, circle := range p.circles {
		if err := c.canvas.DrawImageInCircle(layers[i].Image, circle, zoom); err != nil {
			return scene, fmt.Errorf("failed to composite %s: %w", layers[i].Source, err)
		}
		scene.Rasters = append(scene.Rasters, RasterPlacement{Circle: circle, Layer: layers[i]})
	}
	// Borders go on last so the rasters never cover the inner half of the ring.
	for _, circle := range p.circles {
		if err := c.canvas.StrokeCircle(circle, s.BorderWidth, s.borderColor()); err != nil {
			return scene, err
		}
	}

	placements, err := layout.Layout(c.canvas, p.textCircle, s.BorderWidth, s.Texts)
	if err != nil {
		return scene, err
	}
	scene.Texts = placements
	return scene, nil
}

// overlay screens the street map over the star chart, both scaled to the
// star chart's size.
func overlay(stars, streets *simage.Layer, opacity float64) *simage.Layer {
	w, h := stars.Width(), stars.Height()
	comp := simage.NewComposite(w, h)
	comp.AddLayer(stars, simage.BlendNormal, 0, 0)

	fitted := simage.NewLayer(streets.Source, simage.Fit(streets.Image, w, h))
	fitted.Opacity = opacity
	comp.AddLayer(fitted, simage.BlendScreen, 0, 0)
	return simage.NewLayer(stars.Source+" + "+streets.Source, comp.Render())
}
