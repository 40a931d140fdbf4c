// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"starmap/internal/app"
	"starmap/internal/history"
	"starmap/internal/project"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	posterPanel  *PosterPanel
	textsPanel   *TextsPanel
	historyPanel *HistoryPanel
}

// NewSidePanel creates a new side panel. hist may be nil.
func NewSidePanel(state *app.State, hist History) *SidePanel {
	sp := &SidePanel{state: state}

	sp.posterPanel = NewPosterPanel(state, hist)
	sp.textsPanel = NewTextsPanel(state)
	sp.historyPanel = NewHistoryPanel(hist, sp.usePastRender)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Poster", sp.posterPanel.Container()),
		container.NewTabItem("Text", sp.textsPanel.Container()),
		container.NewTabItem("History", sp.historyPanel.Container()),
	)

	state.On(app.EventProjectLoaded, func(interface{}) { sp.Refresh() })
	return sp
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.textsPanel.SetWindow(w)
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Apply copies the form into the open project.
func (sp *SidePanel) Apply() error {
	return sp.posterPanel.Apply()
}

// Refresh reloads all tabs from the open project.
func (sp *SidePanel) Refresh() {
	sp.posterPanel.Refresh()
	sp.textsPanel.Refresh()
}

// ReloadHistory refreshes the recent renders tab.
func (sp *SidePanel) ReloadHistory() {
	sp.historyPanel.Reload()
}

// usePastRender copies a past render's occasion, place and date into the
// project.
func (sp *SidePanel) usePastRender(e history.Entry) {
	p := sp.state.CurrentProject()
	if p == nil {
		return
	}
	p.Occasion = e.Occasion
	lat, lon := e.Latitude, e.Longitude
	p.Location = project.LocationSpec{Query: e.Location, Latitude: &lat, Longitude: &lon}
	if !e.Date.IsZero() {
		p.Date = e.Date.Format("2006-01-02T15:04")
	}
	sp.posterPanel.Refresh()
	sp.state.SetModified(true)
}
