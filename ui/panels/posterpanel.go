package panels

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"starmap/internal/app"
	"starmap/internal/history"
	"starmap/internal/project"
	"starmap/internal/render"
	"starmap/pkg/geometry"
)

const customPaper = "Custom"

// PosterPanel edits the occasion, location, date and canvas settings of the
// open project.
type PosterPanel struct {
	state   *app.State
	history History

	occasionEntry *widget.SelectEntry
	locationEntry *widget.SelectEntry
	dateEntry     *widget.Entry
	timezoneEntry *widget.Entry

	paperSelect      *widget.Select
	widthEntry       *widget.Entry
	heightEntry      *widget.Entry
	dpiEntry         *widget.Entry
	backgroundEntry  *widget.Entry
	fillSlider       *widget.Slider
	fillLabel        *widget.Label
	overlapSlider    *widget.Slider
	overlapLabel     *widget.Label
	zoomSlider       *widget.Slider
	zoomLabel        *widget.Label
	borderWidthEntry *widget.Entry
	borderColorEntry *widget.Entry

	orderSelect     *widget.Select
	opacitySlider   *widget.Slider
	opacityLabel    *widget.Label
	streetZoomEntry *widget.Entry

	container fyne.CanvasObject
	loading   bool
}

// NewPosterPanel creates the panel and fills it from the open project.
// hist may be nil.
func NewPosterPanel(state *app.State, hist History) *PosterPanel {
	pp := &PosterPanel{state: state, history: hist}
	pp.container = pp.buildUI()
	pp.Refresh()
	return pp
}

// Container returns the panel container.
func (pp *PosterPanel) Container() fyne.CanvasObject {
	return pp.container
}

func (pp *PosterPanel) buildUI() fyne.CanvasObject {
	pp.occasionEntry = widget.NewSelectEntry(nil)
	pp.occasionEntry.SetPlaceHolder("Our Wedding")
	pp.occasionEntry.OnChanged = func(s string) { pp.suggest(pp.occasionEntry, history.Occasions, s) }

	pp.locationEntry = widget.NewSelectEntry(nil)
	pp.locationEntry.SetPlaceHolder("ZIP code, address or lat, lon")
	pp.locationEntry.OnChanged = func(s string) { pp.suggest(pp.locationEntry, history.Locations, s) }

	pp.dateEntry = widget.NewEntry()
	pp.dateEntry.SetPlaceHolder("2026-07-04 21:30")
	pp.dateEntry.OnChanged = pp.changed

	pp.timezoneEntry = widget.NewEntry()
	pp.timezoneEntry.SetPlaceHolder("Local")
	pp.timezoneEntry.OnChanged = pp.changed

	papers := []string{customPaper}
	for _, p := range render.Papers {
		papers = append(papers, p.Name)
	}
	pp.paperSelect = widget.NewSelect(papers, pp.onPaperSelected)

	pp.widthEntry = widget.NewEntry()
	pp.widthEntry.OnChanged = pp.changed
	pp.heightEntry = widget.NewEntry()
	pp.heightEntry.OnChanged = pp.changed
	pp.dpiEntry = widget.NewEntry()
	pp.dpiEntry.OnChanged = pp.changed
	pp.backgroundEntry = widget.NewEntry()
	pp.backgroundEntry.OnChanged = pp.changed

	pp.fillSlider, pp.fillLabel = percentSlider(10, 100, 1)
	pp.overlapSlider, pp.overlapLabel = percentSlider(0, geometry.MaxOverlapPercent, 1)
	pp.zoomSlider, pp.zoomLabel = percentSlider(50, 1000, 10)
	pp.bindSlider(pp.fillSlider, pp.fillLabel)
	pp.bindSlider(pp.overlapSlider, pp.overlapLabel)
	pp.bindSlider(pp.zoomSlider, pp.zoomLabel)

	pp.borderWidthEntry = widget.NewEntry()
	pp.borderWidthEntry.OnChanged = pp.changed
	pp.borderColorEntry = widget.NewEntry()
	pp.borderColorEntry.OnChanged = pp.changed

	pp.orderSelect = widget.NewSelect([]string{render.StarFirst.String(), render.StreetFirst.String()}, pp.changed)
	pp.opacitySlider, pp.opacityLabel = percentSlider(0, 100, 5)
	pp.bindSlider(pp.opacitySlider, pp.opacityLabel)
	pp.streetZoomEntry = widget.NewEntry()
	pp.streetZoomEntry.SetPlaceHolder("auto")
	pp.streetZoomEntry.OnChanged = pp.changed

	occasionForm := widget.NewForm(
		widget.NewFormItem("Occasion", pp.occasionEntry),
		widget.NewFormItem("Location", pp.locationEntry),
		widget.NewFormItem("Date & time", pp.dateEntry),
		widget.NewFormItem("Time zone", pp.timezoneEntry),
	)
	canvasForm := widget.NewForm(
		widget.NewFormItem("Paper", pp.paperSelect),
		widget.NewFormItem("Width (px)", pp.widthEntry),
		widget.NewFormItem("Height (px)", pp.heightEntry),
		widget.NewFormItem("DPI", pp.dpiEntry),
		widget.NewFormItem("Background", pp.backgroundEntry),
	)
	circleForm := widget.NewForm(
		widget.NewFormItem("Size", container.NewBorder(nil, nil, nil, pp.fillLabel, pp.fillSlider)),
		widget.NewFormItem("Overlap", container.NewBorder(nil, nil, nil, pp.overlapLabel, pp.overlapSlider)),
		widget.NewFormItem("Map zoom", container.NewBorder(nil, nil, nil, pp.zoomLabel, pp.zoomSlider)),
		widget.NewFormItem("Border width", pp.borderWidthEntry),
		widget.NewFormItem("Border color", pp.borderColorEntry),
	)
	streetForm := widget.NewForm(
		widget.NewFormItem("Map order", pp.orderSelect),
		widget.NewFormItem("Overlay opacity", container.NewBorder(nil, nil, nil, pp.opacityLabel, pp.opacitySlider)),
		widget.NewFormItem("Tile zoom", pp.streetZoomEntry),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewCard("Occasion", "", occasionForm),
		widget.NewCard("Canvas", "", canvasForm),
		widget.NewCard("Circles", "", circleForm),
		widget.NewCard("Street Map", "", streetForm),
	))
}

func percentSlider(min, max, step float64) (*widget.Slider, *widget.Label) {
	s := widget.NewSlider(min, max)
	s.Step = step
	return s, widget.NewLabel(fmt.Sprintf("%.0f%%", min))
}

func (pp *PosterPanel) bindSlider(s *widget.Slider, label *widget.Label) {
	s.OnChanged = func(v float64) {
		label.SetText(fmt.Sprintf("%.0f%%", v))
		pp.changed("")
	}
}

// changed marks the project modified unless the panel is loading it.
func (pp *PosterPanel) changed(string) {
	if !pp.loading {
		pp.state.SetModified(true)
	}
}

// suggest offers history completions for the text typed so far.
func (pp *PosterPanel) suggest(entry *widget.SelectEntry, field history.Field, prefix string) {
	pp.changed(prefix)
	if pp.history == nil || pp.loading {
		return
	}
	opts, err := pp.history.Suggest(context.Background(), field, prefix, suggestLimit)
	if err != nil {
		log.Printf("history suggest: %v", err)
		return
	}
	entry.SetOptions(opts)
}

func (pp *PosterPanel) onPaperSelected(name string) {
	if name == customPaper || pp.loading {
		return
	}
	dpi, err := parseIntField("DPI", pp.dpiEntry.Text)
	if err != nil || dpi <= 0 {
		dpi = render.DefaultSettings().DPI
		pp.dpiEntry.SetText(fmt.Sprint(dpi))
	}
	for _, p := range render.Papers {
		if p.Name == name {
			w, h := paperPixels(p.Width, p.Height, dpi)
			pp.widthEntry.SetText(fmt.Sprint(w))
			pp.heightEntry.SetText(fmt.Sprint(h))
			return
		}
	}
}

// Refresh reloads every widget from the open project.
func (pp *PosterPanel) Refresh() {
	p := pp.state.CurrentProject()
	if p == nil {
		return
	}
	pp.loading = true
	defer func() { pp.loading = false }()

	pp.occasionEntry.SetText(p.Occasion)
	pp.locationEntry.SetText(locationText(p.Location))
	pp.dateEntry.SetText(p.Date)
	pp.timezoneEntry.SetText(p.Timezone)

	pp.widthEntry.SetText(fmt.Sprint(p.Canvas.Width))
	pp.heightEntry.SetText(fmt.Sprint(p.Canvas.Height))
	pp.dpiEntry.SetText(fmt.Sprint(p.Canvas.DPI))
	pp.backgroundEntry.SetText(p.Canvas.Background)
	pp.paperSelect.SetSelected(paperName(p.Canvas))

	d := render.DefaultSettings()
	pp.fillSlider.SetValue(orDefault(p.Circle.Size, d.FillPercent))
	pp.overlapSlider.SetValue(p.Circle.Overlap)
	pp.zoomSlider.SetValue(orDefault(p.Circle.Zoom, d.ZoomPercent))
	pp.fillLabel.SetText(fmt.Sprintf("%.0f%%", pp.fillSlider.Value))
	pp.overlapLabel.SetText(fmt.Sprintf("%.0f%%", pp.overlapSlider.Value))
	pp.zoomLabel.SetText(fmt.Sprintf("%.0f%%", pp.zoomSlider.Value))
	pp.borderWidthEntry.SetText(formatFloat(p.Circle.BorderWidth))
	pp.borderColorEntry.SetText(p.Circle.BorderColor)

	pp.orderSelect.SetSelected(p.MapOrder.String())
	pp.opacitySlider.SetValue(p.Street.Opacity * 100)
	pp.opacityLabel.SetText(fmt.Sprintf("%.0f%%", pp.opacitySlider.Value))
	if p.Street.Zoom > 0 {
		pp.streetZoomEntry.SetText(fmt.Sprint(p.Street.Zoom))
	} else {
		pp.streetZoomEntry.SetText("")
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func locationText(l project.LocationSpec) string {
	if l.Query != "" {
		return l.Query
	}
	if l.Latitude != nil && l.Longitude != nil {
		return fmt.Sprintf("%s, %s", formatFloat(*l.Latitude), formatFloat(*l.Longitude))
	}
	return ""
}

func paperName(c project.CanvasSpec) string {
	if c.DPI <= 0 {
		return customPaper
	}
	if p, ok := render.MatchPaper(float64(c.Width)/float64(c.DPI), float64(c.Height)/float64(c.DPI)); ok {
		return p.Name
	}
	return customPaper
}

// Apply copies the widgets into the open project. Nothing is written when a
// field does not parse.
func (pp *PosterPanel) Apply() error {
	p := pp.state.CurrentProject()
	if p == nil {
		return fmt.Errorf("no project open")
	}

	width, err := parseIntField("Width", pp.widthEntry.Text)
	if err != nil {
		return err
	}
	height, err := parseIntField("Height", pp.heightEntry.Text)
	if err != nil {
		return err
	}
	dpi, err := parseIntField("DPI", pp.dpiEntry.Text)
	if err != nil {
		return err
	}
	border, err := parseFloatField("Border width", pp.borderWidthEntry.Text)
	if err != nil {
		return err
	}
	streetZoom, err := parseIntField("Tile zoom", pp.streetZoomEntry.Text)
	if err != nil {
		return err
	}
	var order render.MapOrder
	if err := order.UnmarshalText([]byte(pp.orderSelect.Selected)); err != nil {
		return err
	}

	p.Occasion = strings.TrimSpace(pp.occasionEntry.Text)
	query := strings.TrimSpace(pp.locationEntry.Text)
	if query != locationText(p.Location) {
		p.Location = project.LocationSpec{Query: query}
	}
	p.Date = strings.TrimSpace(pp.dateEntry.Text)
	p.Timezone = strings.TrimSpace(pp.timezoneEntry.Text)

	p.Canvas.Width = width
	p.Canvas.Height = height
	p.Canvas.DPI = dpi
	p.Canvas.Background = strings.TrimSpace(pp.backgroundEntry.Text)

	p.Circle.Size = pp.fillSlider.Value
	p.Circle.Overlap = pp.overlapSlider.Value
	p.Circle.Zoom = pp.zoomSlider.Value
	p.Circle.BorderWidth = border
	p.Circle.BorderColor = strings.TrimSpace(pp.borderColorEntry.Text)

	p.MapOrder = order
	p.Street.Opacity = pp.opacitySlider.Value / 100
	p.Street.Zoom = streetZoom
	return nil
}
