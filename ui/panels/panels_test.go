package panels

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starmap/internal/app"
	"starmap/internal/history"
	"starmap/internal/layout"
	"starmap/internal/project"
	"starmap/internal/render"
)

type fakeHistory struct {
	occasions []string
	entries   []history.Entry
	err       error
	prefixes  []string
}

func (f *fakeHistory) Suggest(_ context.Context, field history.Field, prefix string, limit int) ([]string, error) {
	f.prefixes = append(f.prefixes, prefix)
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, o := range f.occasions {
		if field == history.Occasions && strings.HasPrefix(o, prefix) && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeHistory) Recent(context.Context, int) ([]history.Entry, error) {
	return f.entries, f.err
}

func newTestState(t *testing.T) *app.State {
	t.Helper()
	test.NewApp()
	t.Cleanup(func() { test.NewApp() })
	return app.NewState()
}

func TestPosterPanelRoundTrip(t *testing.T) {
	state := newTestState(t)
	p := state.CurrentProject()
	p.Occasion = "Our Wedding"
	p.Location = project.LocationSpec{Query: "10001"}
	p.Date = "2026-06-20T19:00"
	p.Canvas = project.CanvasSpec{Width: 2550, Height: 3300, DPI: 300, Background: "#0b1026"}
	p.Circle = project.CircleSpec{Size: 60, Overlap: 20, Zoom: 150, BorderWidth: 8, BorderColor: "#d4af37"}
	p.Street = project.StreetSpec{Opacity: 0.35, Zoom: 15}

	pp := NewPosterPanel(state, nil)
	assert.Equal(t, "Letter", pp.paperSelect.Selected)
	assert.Equal(t, "10001", pp.locationEntry.Text)
	assert.Equal(t, "15", pp.streetZoomEntry.Text)
	assert.False(t, state.Modified)

	pp.occasionEntry.SetText("  First Dance ")
	pp.fillSlider.SetValue(75)
	pp.orderSelect.SetSelected(render.StreetFirst.String())
	assert.True(t, state.Modified)
	require.NoError(t, pp.Apply())

	assert.Equal(t, "First Dance", p.Occasion)
	assert.Equal(t, project.LocationSpec{Query: "10001"}, p.Location)
	assert.Equal(t, 75.0, p.Circle.Size)
	assert.Equal(t, 150.0, p.Circle.Zoom)
	assert.Equal(t, render.StreetFirst, p.MapOrder)
	assert.InDelta(t, 0.35, p.Street.Opacity, 1e-9)
	assert.Equal(t, 15, p.Street.Zoom)
}

func TestPosterPanelKeepsCoordinatesUntilLocationEdited(t *testing.T) {
	state := newTestState(t)
	lat, lon := 40.7128, -74.006
	state.CurrentProject().Location = project.LocationSpec{Latitude: &lat, Longitude: &lon}

	pp := NewPosterPanel(state, nil)
	assert.Equal(t, "40.7128, -74.006", pp.locationEntry.Text)
	require.NoError(t, pp.Apply())
	require.NotNil(t, state.CurrentProject().Location.Latitude)

	pp.locationEntry.SetText("Paris")
	require.NoError(t, pp.Apply())
	assert.Equal(t, project.LocationSpec{Query: "Paris"}, state.CurrentProject().Location)
}

func TestPosterPanelApplyRejectsBadNumbers(t *testing.T) {
	state := newTestState(t)
	pp := NewPosterPanel(state, nil)
	before := *state.CurrentProject()

	pp.widthEntry.SetText("wide")
	pp.occasionEntry.SetText("changed")
	assert.Error(t, pp.Apply())
	assert.Equal(t, before.Occasion, state.CurrentProject().Occasion)
	assert.Equal(t, before.Canvas, state.CurrentProject().Canvas)
}

func TestPosterPanelPaperPreset(t *testing.T) {
	state := newTestState(t)
	pp := NewPosterPanel(state, nil)
	pp.dpiEntry.SetText("150")
	pp.paperSelect.SetSelected("Tabloid")
	assert.Equal(t, "1650", pp.widthEntry.Text)
	assert.Equal(t, "2550", pp.heightEntry.Text)

	pp.dpiEntry.SetText("")
	pp.paperSelect.SetSelected("16x20")
	assert.Equal(t, "300", pp.dpiEntry.Text)
	assert.Equal(t, "4800", pp.widthEntry.Text)
	assert.Equal(t, "6000", pp.heightEntry.Text)
}

func TestPosterPanelSuggestions(t *testing.T) {
	state := newTestState(t)
	hist := &fakeHistory{occasions: []string{"Our Wedding", "Our First Date", "Graduation"}}
	pp := NewPosterPanel(state, hist)
	hist.prefixes = nil

	pp.occasionEntry.SetText("Our")
	assert.Equal(t, []string{"Our"}, hist.prefixes)

	hist.err = errors.New("db closed")
	assert.NotPanics(t, func() { pp.occasionEntry.SetText("Grad") })
}

func TestTextsPanelEditing(t *testing.T) {
	state := newTestState(t)
	state.CurrentProject().Texts = nil
	tp := NewTextsPanel(state)

	tp.Add(project.TextSpec{Text: "a", Position: layout.Below})
	tp.Add(project.TextSpec{Text: "b", Position: layout.Below})
	tp.Add(project.TextSpec{Text: "top", Position: layout.Above})
	texts := state.CurrentProject().Texts
	require.Len(t, texts, 3)
	assert.Equal(t, 0, texts[0].Order)
	assert.Equal(t, 1, texts[1].Order)
	assert.Equal(t, 0, texts[2].Order)
	assert.True(t, state.Modified)

	tp.Move(1, -1)
	texts = state.CurrentProject().Texts
	assert.Equal(t, "b", texts[0].Text)
	assert.Equal(t, 0, texts[0].Order)
	assert.Equal(t, "a", texts[1].Text)
	assert.Equal(t, 1, texts[1].Order)

	tp.Move(0, -1)
	assert.Equal(t, "b", state.CurrentProject().Texts[0].Text)

	tp.Replace(2, project.TextSpec{Text: "title", Position: layout.Above})
	assert.Equal(t, "title", state.CurrentProject().Texts[2].Text)

	tp.Remove(0)
	tp.Remove(7)
	texts = state.CurrentProject().Texts
	require.Len(t, texts, 2)
	assert.Equal(t, "a", texts[0].Text)
	assert.Contains(t, describeText(texts[1]), "above #0  title")
}

func TestHistoryPanelPick(t *testing.T) {
	state := newTestState(t)
	day := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	hist := &fakeHistory{entries: []history.Entry{
		{Occasion: "Valentine's", Location: "Paris", Latitude: 48.8566, Longitude: 2.3522, Date: day, Mode: "portrait"},
	}}
	sp := NewSidePanel(state, hist)
	require.Len(t, sp.historyPanel.Entries(), 1)
	assert.Contains(t, describeEntry(hist.entries[0]), "Valentine's  February 14, 2026  Paris")

	sp.historyPanel.list.Select(0)
	p := state.CurrentProject()
	assert.Equal(t, "Valentine's", p.Occasion)
	assert.Equal(t, "2026-02-14T20:00", p.Date)
	require.NotNil(t, p.Location.Latitude)
	assert.Equal(t, 48.8566, *p.Location.Latitude)
	assert.Equal(t, "Valentine's", sp.posterPanel.occasionEntry.Text)

	require.NoError(t, sp.Apply())
	require.NotNil(t, p.Location.Latitude)
}

func TestSidePanelRefreshesOnProjectLoad(t *testing.T) {
	state := newTestState(t)
	sp := NewSidePanel(state, nil)
	state.NewProject("Fresh")
	state.CurrentProject().Occasion = "x"
	state.Emit(app.EventProjectLoaded, state.CurrentProject())
	assert.Equal(t, "x", sp.posterPanel.occasionEntry.Text)
}
