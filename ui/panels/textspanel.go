package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"starmap/internal/app"
	"starmap/internal/layout"
	"starmap/internal/paint"
	"starmap/internal/project"
	"starmap/ui/dialogs"
)

// TextsPanel lists the poster's text lines.
type TextsPanel struct {
	state    *app.State
	window   fyne.Window
	list     *widget.List
	selected int

	container fyne.CanvasObject
}

// NewTextsPanel creates the text list panel.
func NewTextsPanel(state *app.State) *TextsPanel {
	tp := &TextsPanel{state: state, selected: -1}

	tp.list = widget.NewList(
		func() int { return len(tp.texts()) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			texts := tp.texts()
			if id < len(texts) {
				obj.(*widget.Label).SetText(describeText(texts[id]))
			}
		},
	)
	tp.list.OnSelected = func(id widget.ListItemID) { tp.selected = id }
	tp.list.OnUnselected = func(widget.ListItemID) { tp.selected = -1 }

	buttons := container.NewHBox(
		widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), tp.onAdd),
		widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), tp.onEdit),
		widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { tp.Move(tp.selected, -1) }),
		widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { tp.Move(tp.selected, 1) }),
		widget.NewButtonWithIcon("Remove", theme.ContentRemoveIcon(), func() { tp.Remove(tp.selected) }),
	)
	tp.container = container.NewBorder(buttons, nil, nil, nil, tp.list)
	return tp
}

// SetWindow sets the parent window for dialogs.
func (tp *TextsPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// Container returns the panel container.
func (tp *TextsPanel) Container() fyne.CanvasObject {
	return tp.container
}

// Refresh redraws the list from the open project.
func (tp *TextsPanel) Refresh() {
	tp.selected = -1
	tp.list.UnselectAll()
	tp.list.Refresh()
}

func (tp *TextsPanel) texts() []project.TextSpec {
	if p := tp.state.CurrentProject(); p != nil {
		return p.Texts
	}
	return nil
}

func describeText(t project.TextSpec) string {
	style := paint.NormalizeFamily(t.Font)
	if t.Bold {
		style += " bold"
	}
	if t.Italic {
		style += " italic"
	}
	return fmt.Sprintf("%s #%d  %s  (%s %gpx)", t.Position, t.Order, t.Text, style, t.Size)
}

// Add appends t, ordered after the last line on the same side.
func (tp *TextsPanel) Add(t project.TextSpec) {
	p := tp.state.CurrentProject()
	if p == nil {
		return
	}
	for _, o := range p.Texts {
		if o.Position == t.Position && o.Order >= t.Order {
			t.Order = o.Order + 1
		}
	}
	p.Texts = append(p.Texts, t)
	tp.changed()
}

// Replace overwrites the line at i.
func (tp *TextsPanel) Replace(i int, t project.TextSpec) {
	p := tp.state.CurrentProject()
	if p == nil || i < 0 || i >= len(p.Texts) {
		return
	}
	p.Texts[i] = t
	tp.changed()
}

// Remove deletes the line at i.
func (tp *TextsPanel) Remove(i int) {
	p := tp.state.CurrentProject()
	if p == nil || i < 0 || i >= len(p.Texts) {
		return
	}
	p.Texts = append(p.Texts[:i], p.Texts[i+1:]...)
	tp.selected = -1
	tp.list.UnselectAll()
	tp.changed()
}

// Move swaps the line at i with its neighbour at i+delta, exchanging their
// order values so the stacking follows the list.
func (tp *TextsPanel) Move(i, delta int) {
	p := tp.state.CurrentProject()
	j := i + delta
	if p == nil || i < 0 || j < 0 || i >= len(p.Texts) || j >= len(p.Texts) {
		return
	}
	a, b := &p.Texts[i], &p.Texts[j]
	a.Order, b.Order = b.Order, a.Order
	p.Texts[i], p.Texts[j] = p.Texts[j], p.Texts[i]
	tp.selected = j
	tp.list.Select(j)
	tp.changed()
}

func (tp *TextsPanel) changed() {
	tp.list.Refresh()
	tp.state.SetModified(true)
}

func (tp *TextsPanel) onAdd() {
	spec := project.TextSpec{Font: paint.FamilySans, Size: 48, Color: "#ffffff", Position: layout.Below}
	dialogs.NewTextItemDialog(spec, tp.window, tp.Add).Show()
}

func (tp *TextsPanel) onEdit() {
	texts := tp.texts()
	i := tp.selected
	if i < 0 || i >= len(texts) {
		return
	}
	dialogs.NewTextItemDialog(texts[i], tp.window, func(t project.TextSpec) { tp.Replace(i, t) }).Show()
}
