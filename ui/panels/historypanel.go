package panels

import (
	"context"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"starmap/internal/format"
	"starmap/internal/history"
)

const recentLimit = 50

// HistoryPanel lists recent renders. Selecting one hands it to onPick.
type HistoryPanel struct {
	history History
	entries []history.Entry
	list    *widget.List
	onPick  func(history.Entry)

	container fyne.CanvasObject
}

// NewHistoryPanel creates the panel. hist may be nil, in which case the list
// stays empty.
func NewHistoryPanel(hist History, onPick func(history.Entry)) *HistoryPanel {
	hp := &HistoryPanel{history: hist, onPick: onPick}
	hp.list = widget.NewList(
		func() int { return len(hp.entries) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(hp.entries) {
				obj.(*widget.Label).SetText(describeEntry(hp.entries[id]))
			}
		},
	)
	hp.list.OnSelected = func(id widget.ListItemID) {
		if id < len(hp.entries) && hp.onPick != nil {
			hp.onPick(hp.entries[id])
		}
		hp.list.UnselectAll()
	}

	reload := widget.NewButtonWithIcon("Reload", theme.ViewRefreshIcon(), hp.Reload)
	hp.container = container.NewBorder(container.NewHBox(reload), nil, nil, nil, hp.list)
	hp.Reload()
	return hp
}

// Container returns the panel container.
func (hp *HistoryPanel) Container() fyne.CanvasObject {
	return hp.container
}

// Reload fetches the most recent renders.
func (hp *HistoryPanel) Reload() {
	if hp.history == nil {
		return
	}
	entries, err := hp.history.Recent(context.Background(), recentLimit)
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	hp.entries = entries
	hp.list.Refresh()
}

// Entries returns the listed renders.
func (hp *HistoryPanel) Entries() []history.Entry {
	return hp.entries
}

func describeEntry(e history.Entry) string {
	label := e.Occasion
	if label == "" {
		label = "(untitled)"
	}
	return fmt.Sprintf("%s  %s  %s  [%s]", label, format.Date(e.Date), e.Location, e.Mode)
}
