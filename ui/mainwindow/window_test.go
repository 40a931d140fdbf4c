package mainwindow

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starmap/internal/app"
	"starmap/internal/geocode"
	simage "starmap/internal/image"
	"starmap/internal/project"
	"starmap/internal/render"
	"starmap/ui/prefs"
)

func TestDownloadName(t *testing.T) {
	p := project.New("x")
	p.Occasion = "  Our Wedding -- 2026! "
	assert.Equal(t, "our-wedding-2026-portrait.png", downloadName(p, render.CombinedPortrait))

	p.Occasion = ""
	assert.Equal(t, "star-map-star.png", downloadName(p, render.StarMapOnly))
	assert.Equal(t, "star-map-street.png", downloadName(nil, render.StreetMapOnly))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "a-b-c", slug("A  b/c"))
	assert.Equal(t, "", slug("!!!"))
	assert.Equal(t, "x", slug("-x-"))
}

func solidSource(c color.RGBA) render.Source {
	return render.SourceFunc(func(_ context.Context, req render.SourceRequest) (*simage.Layer, error) {
		img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		return simage.NewLayer("test", img), nil
	})
}

func newTestWindow(t *testing.T) (*MainWindow, *app.State) {
	t.Helper()
	return newTestWindowWithResolver(t, nil)
}

func newTestWindowWithResolver(t *testing.T, r project.Resolver) (*MainWindow, *app.State) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(func() { test.NewApp() })

	state := app.NewState()
	ctrl := render.NewController(render.Config{
		Stars:    solidSource(color.RGBA{R: 255, A: 255}),
		Streets:  solidSource(color.RGBA{B: 255, A: 255}),
		Reporter: state,
	})
	mw := New(a, state, Config{
		Controller: ctrl,
		Resolver:   r,
		Prefs:      prefs.LoadFrom(filepath.Join(t.TempDir(), "preferences.json")),
	})
	return mw, state
}

func TestRenderModeEnablesDownload(t *testing.T) {
	mw, state := newTestWindow(t)
	finished := make(chan *render.Result, 1)
	state.On(app.EventRenderFinished, func(d interface{}) { finished <- d.(*render.Result) })

	p := state.CurrentProject()
	lat, lon := 40.7128, -74.006
	p.Location = project.LocationSpec{Latitude: &lat, Longitude: &lon}
	p.Canvas.Width, p.Canvas.Height, p.Canvas.DPI = 255, 330, 30
	mw.sidePanel.Refresh()

	assert.True(t, mw.downloadBtn.Disabled())
	mw.RenderMode(render.StarMapOnly)

	select {
	case res := <-finished:
		assert.Equal(t, render.StarMapOnly, res.Mode)
		assert.Equal(t, 255, res.Image.Bounds().Dx())
	case <-time.After(10 * time.Second):
		t.Fatal("render did not finish")
	}
	require.Eventually(t, func() bool { return !mw.downloadBtn.Disabled() }, 5*time.Second, 10*time.Millisecond)
	assert.Same(t, state.LastResult(), mw.canvas.Result())
	assert.Equal(t, "star", mw.prefs.String(prefs.KeyMode))
}

func TestRenderModeWithoutLocationFails(t *testing.T) {
	mw, state := newTestWindow(t)
	failed := make(chan app.RenderFailure, 1)
	state.On(app.EventRenderFailed, func(d interface{}) { failed <- d.(app.RenderFailure) })

	state.CurrentProject().Location = project.LocationSpec{}
	mw.sidePanel.Refresh()
	mw.RenderMode(render.CombinedLandscape)

	select {
	case f := <-failed:
		assert.Equal(t, render.CombinedLandscape, f.Mode)
		assert.ErrorIs(t, f.Err, render.ErrValidation)
	case <-time.After(10 * time.Second):
		t.Fatal("no failure reported")
	}
	assert.True(t, mw.downloadBtn.Disabled())
	assert.Nil(t, mw.canvas.Result())
}

// slowResolver blocks until released, then fails regardless of cancellation.
type slowResolver struct {
	entered chan struct{}
	release chan struct{}
}

func (r *slowResolver) Resolve(ctx context.Context, query string) (geocode.Location, error) {
	close(r.entered)
	<-r.release
	return geocode.Location{}, errors.New("geocoder timed out")
}

func TestRenderModeIgnoresSupersededLookup(t *testing.T) {
	slow := &slowResolver{entered: make(chan struct{}), release: make(chan struct{})}
	mw, state := newTestWindowWithResolver(t, slow)
	failed := make(chan app.RenderFailure, 1)
	state.On(app.EventRenderFailed, func(d interface{}) { failed <- d.(app.RenderFailure) })
	finished := make(chan *render.Result, 1)
	state.On(app.EventRenderFinished, func(d interface{}) { finished <- d.(*render.Result) })

	p := state.CurrentProject()
	p.Location = project.LocationSpec{Query: "Springfield"}
	p.Canvas.Width, p.Canvas.Height, p.Canvas.DPI = 255, 330, 30
	mw.sidePanel.Refresh()
	mw.RenderMode(render.CanvasLayout)
	<-slow.entered

	lat, lon := 40.7128, -74.006
	p.Location = project.LocationSpec{Query: "New York", Latitude: &lat, Longitude: &lon}
	mw.sidePanel.Refresh()
	mw.RenderMode(render.StarMapOnly)

	select {
	case res := <-finished:
		assert.Equal(t, render.StarMapOnly, res.Mode)
	case <-time.After(10 * time.Second):
		t.Fatal("render did not finish")
	}
	require.Eventually(t, func() bool { return state.CanDownload() }, 5*time.Second, 10*time.Millisecond)

	close(slow.release)
	assert.Never(t, func() bool {
		return len(failed) > 0 || !state.CanDownload()
	}, 300*time.Millisecond, 10*time.Millisecond)
	assert.NoError(t, state.LastError)
	assert.Equal(t, render.StarMapOnly, state.LastResult().Mode)
}
