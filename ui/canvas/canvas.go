// Package canvas provides the poster preview with zoom and layout guides.
package canvas

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"starmap/internal/render"
)

const (
	minZoom  = 0.02
	maxZoom  = 4.0
	zoomStep = 1.25
)

// emptySize is the display size before anything has rendered.
var emptySize = fyne.NewSize(400, 500)

// ImageCanvas displays the latest render result.
type ImageCanvas struct {
	widget.BaseWidget

	mu     sync.Mutex
	result *render.Result
	guides *Overlay
	show   bool

	raster  *fynecanvas.Raster
	zoom    float64
	imgSize fyne.Size

	scroll         *zoomScroll
	fitToWindow    bool
	lastScrollSize fyne.Size

	onZoomChange func(zoom float64)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Use wheel for zoom, not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// NewImageCanvas creates an empty preview that fits itself to the window.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		zoom:        0.2,
		imgSize:     emptySize,
		fitToWindow: true,
	}
	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	ic.raster.SetMinSize(ic.imgSize)
	ic.scroll = newZoomScroll(ic.raster, ic)
	ic.ExtendBaseWidget(ic)
	return ic
}

// Container returns the canvas container for embedding in layouts.
func (ic *ImageCanvas) Container() fyne.CanvasObject {
	return ic.scroll
}

// SetResult shows res, or clears the preview when res is nil.
func (ic *ImageCanvas) SetResult(res *render.Result) {
	ic.mu.Lock()
	ic.result = res
	ic.guides = nil
	if res != nil {
		ic.guides = GuidesFromScene(res.Scene)
	}
	ic.mu.Unlock()

	if ic.fitToWindow {
		ic.FitToWindow()
		return
	}
	ic.updateContentSize()
}

// Result returns the displayed render.
func (ic *ImageCanvas) Result() *render.Result {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.result
}

// SetShowGuides toggles the circle and baseline guides.
func (ic *ImageCanvas) SetShowGuides(show bool) {
	ic.mu.Lock()
	ic.show = show
	ic.mu.Unlock()
	ic.Refresh()
}

// SetZoom sets the zoom level.
func (ic *ImageCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ic.zoom = zoom
	ic.updateContentSize()

	if ic.onZoomChange != nil {
		ic.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (ic *ImageCanvas) GetZoom() float64 {
	return ic.zoom
}

// ZoomIn increases the zoom level.
func (ic *ImageCanvas) ZoomIn() {
	ic.fitToWindow = false
	ic.SetZoom(ic.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (ic *ImageCanvas) ZoomOut() {
	ic.fitToWindow = false
	ic.SetZoom(ic.zoom / zoomStep)
}

// FitToWindow adjusts zoom to fit the poster in the visible area.
func (ic *ImageCanvas) FitToWindow() {
	bounds := ic.imageBounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		ic.updateContentSize()
		return
	}

	viewSize := ic.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		ic.updateContentSize()
		return
	}

	zoom := fitZoom(bounds, viewSize)
	ic.SetZoom(zoom * 0.95) // Leave a small margin
}

// fitZoom is the largest zoom at which bounds fits inside view.
func fitZoom(bounds image.Rectangle, view fyne.Size) float64 {
	zoomX := float64(view.Width) / float64(bounds.Dx())
	zoomY := float64(view.Height) / float64(bounds.Dy())
	if zoomY < zoomX {
		return zoomY
	}
	return zoomX
}

// SetFitToWindow enables or disables auto-fit on resize.
func (ic *ImageCanvas) SetFitToWindow(fit bool) {
	ic.fitToWindow = fit
	if fit {
		ic.FitToWindow()
	}
}

// GetFitToWindow returns the current fit-to-window state.
func (ic *ImageCanvas) GetFitToWindow() bool {
	return ic.fitToWindow
}

// CheckResize checks if scroll container was resized and auto-fits if enabled.
func (ic *ImageCanvas) CheckResize(size fyne.Size) {
	if !ic.fitToWindow {
		return
	}
	if size.Width > 0 && size.Height > 0 && size != ic.lastScrollSize {
		ic.lastScrollSize = size
		ic.FitToWindow()
	}
}

// OnZoomChange sets a callback for zoom changes.
func (ic *ImageCanvas) OnZoomChange(callback func(zoom float64)) {
	ic.onZoomChange = callback
}

// Refresh refreshes the canvas display.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

func (ic *ImageCanvas) imageBounds() image.Rectangle {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.result == nil || ic.result.Image == nil {
		return image.Rectangle{}
	}
	return ic.result.Image.Bounds()
}

// updateContentSize updates the content size based on image and zoom.
func (ic *ImageCanvas) updateContentSize() {
	bounds := ic.imageBounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		ic.imgSize = emptySize
	} else {
		ic.imgSize = fyne.NewSize(float32(float64(bounds.Dx())*ic.zoom), float32(float64(bounds.Dy())*ic.zoom))
	}

	ic.raster.SetMinSize(ic.imgSize)
	ic.raster.Resize(ic.imgSize)
	ic.raster.Refresh()
	if ic.scroll != nil {
		ic.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	ic.mu.Lock()
	res, guides, show := ic.result, ic.guides, ic.show
	ic.mu.Unlock()

	var src *image.RGBA
	if res != nil {
		src = res.Image
	}
	output := Scale(src, w, h)
	if show && src != nil && src.Bounds().Dx() > 0 {
		DrawOverlay(output, guides, float64(w)/float64(src.Bounds().Dx()))
	}
	return output
}

// Scale resizes src to w×h for display. A nil src gives a dark placeholder.
func Scale(src *image.RGBA, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	if src == nil || src.Bounds().Empty() {
		xdraw.Draw(output, output.Bounds(), image.NewUniform(color.RGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff}), image.Point{}, xdraw.Src)
		return output
	}
	xdraw.ApproxBiLinear.Scale(output, output.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return output
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	// Check for resize and auto-fit if enabled
	r.canvas.CheckResize(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *imageCanvasRenderer) Destroy() {}
