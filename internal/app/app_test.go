package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simage "starmap/internal/image"
	"starmap/internal/render"
	"starmap/pkg/colorutil"
)

func TestStateEmitsToListenersInOrder(t *testing.T) {
	s := NewState()
	var got []string
	s.On(EventModified, func(interface{}) { got = append(got, "a") })
	s.On(EventModified, func(interface{}) { got = append(got, "b") })

	s.SetModified(true)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.True(t, s.Modified)
}

func TestStateReporter(t *testing.T) {
	s := NewState()
	var failures []RenderFailure
	var downloads []bool
	s.On(EventRenderFailed, func(d interface{}) { failures = append(failures, d.(RenderFailure)) })
	s.On(EventDownloadChanged, func(d interface{}) { downloads = append(downloads, d.(bool)) })

	s.RenderStarted(render.CombinedPortrait, 3)
	assert.Equal(t, render.CombinedPortrait, s.Mode)
	assert.Equal(t, uint64(3), s.Generation)

	boom := errors.New("boom")
	s.RenderFailed(render.CombinedPortrait, boom)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Equal(t, boom, s.LastError)

	res := &render.Result{Mode: render.CombinedPortrait, Generation: 3}
	s.RenderFinished(res)
	assert.Same(t, res, s.LastResult())

	s.DownloadAvailable(true)
	s.DownloadAvailable(true)
	s.DownloadAvailable(false)
	assert.Equal(t, []bool{true, false}, downloads)
	assert.False(t, s.CanDownload())

	s.RenderStarted(render.StarMapOnly, 4)
	assert.NoError(t, s.LastError)

	var finished int
	s.On(EventRenderFinished, func(interface{}) { finished++ })
	s.RenderFinished(&render.Result{Mode: render.CombinedPortrait, Generation: 3})
	assert.Same(t, res, s.LastResult(), "older generation is dropped")
	assert.Zero(t, finished)
}

func TestStateSaveAndLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anniversary.starmap")
	s := NewState()
	s.CurrentProject().Occasion = "Our Anniversary"
	s.SetModified(true)

	var saved, loaded int
	s.On(EventProjectSaved, func(interface{}) { saved++ })
	s.On(EventProjectLoaded, func(interface{}) { loaded++ })

	require.NoError(t, s.SaveProject(path))
	assert.False(t, s.Modified)
	assert.Equal(t, path, s.ProjectPath)

	other := NewState()
	other.On(EventProjectLoaded, func(interface{}) { loaded++ })
	require.NoError(t, other.LoadProject(path))
	assert.Equal(t, "Our Anniversary", other.CurrentProject().Occasion)
	assert.Equal(t, 1, saved)
	assert.Equal(t, 1, loaded)

	assert.Error(t, other.LoadProject(filepath.Join(t.TempDir(), "missing.starmap")))
	assert.Equal(t, path, other.ProjectPath)
}

func TestNewProjectResetsPath(t *testing.T) {
	s := NewState()
	s.ProjectPath = "/tmp/old.starmap"
	s.Modified = true
	s.NewProject("Fresh")
	assert.Empty(t, s.ProjectPath)
	assert.False(t, s.Modified)
	assert.Equal(t, "Fresh", s.CurrentProject().Name)
}

func TestHotReloaderFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poster.starmap")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	h, err := NewHotReloader(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer h.Close()

	var calls atomic.Int32
	changed := make(chan string, 4)
	h.OnChange(func(p string) {
		calls.Add(1)
		changed <- p
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"a"}`), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, h.Path(), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestNewHotReloaderMissingDir(t *testing.T) {
	_, err := NewHotReloader(filepath.Join(t.TempDir(), "nope", "x.starmap"), 0)
	assert.Error(t, err)
}

func TestThemePalette(t *testing.T) {
	th := &StarmapTheme{}
	assert.Equal(t, colorutil.Gold, th.Color(theme.ColorNamePrimary, theme.VariantDark))
	assert.Equal(t, colorutil.Midnight, th.Color(theme.ColorNameBackground, theme.VariantDark))
	assert.Equal(t, float32(16), th.Size(theme.SizeNameScrollBar))
}

func TestEndpointsFromEnv(t *testing.T) {
	t.Setenv(EnvChartURL, " https://charts.example/api ")
	t.Setenv(EnvTileURL, "")
	e := EndpointsFromEnv()
	assert.Equal(t, "https://charts.example/api", e.ChartURL)
	assert.Empty(t, e.TileURL)
}

func TestStarSourceUsesProjectImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	f, err := os.Create(filepath.Join(dir, "sky.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	var fallback int
	sv := &Services{Stars: render.SourceFunc(func(context.Context, render.SourceRequest) (*simage.Layer, error) {
		fallback++
		return simage.NewLayer("fallback", image.NewRGBA(image.Rect(0, 0, 1, 1))), nil
	})}

	s := NewState()
	src := s.StarSource(sv)
	layer, err := src.Fetch(context.Background(), render.SourceRequest{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, layer.Width())
	assert.Equal(t, 1, fallback)

	s.ProjectPath = filepath.Join(dir, "poster.starmap")
	s.CurrentProject().StarImage = "sky.png"
	layer, err = src.Fetch(context.Background(), render.SourceRequest{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, layer.Width())
	assert.Equal(t, 1, fallback)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, render.SourceRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewServicesWithoutChartURL(t *testing.T) {
	sv, err := NewServices(Endpoints{}, nil)
	require.NoError(t, err)
	layer, err := sv.Stars.Fetch(context.Background(), render.SourceRequest{
		Width: 32, Height: 32, Latitude: 10, Longitude: 20, Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 32, layer.Width())
	assert.NotNil(t, sv.Resolver)
	assert.NotNil(t, sv.Streets)
}
