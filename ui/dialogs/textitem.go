// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"starmap/internal/layout"
	"starmap/internal/paint"
	"starmap/internal/project"
	"starmap/pkg/colorutil"
)

// TextItemDialog edits one text line of the poster.
type TextItemDialog struct {
	spec   project.TextSpec
	window fyne.Window

	textEntry     *widget.Entry
	fontSelect    *widget.Select
	sizeEntry     *widget.Entry
	colorEntry    *widget.Entry
	colorSwatch   *fynecanvas.Rectangle
	boldCheck     *widget.Check
	italicCheck   *widget.Check
	positionRadio *widget.RadioGroup
	orderEntry    *widget.Entry

	onSave func(project.TextSpec)
}

// NewTextItemDialog creates a dialog editing a copy of spec.
func NewTextItemDialog(spec project.TextSpec, window fyne.Window, onSave func(project.TextSpec)) *TextItemDialog {
	d := &TextItemDialog{
		spec:   spec,
		window: window,
		onSave: onSave,
	}
	return d
}

// Show displays the dialog.
func (d *TextItemDialog) Show() {
	content := d.createContent()

	title := "Text Line"
	if d.spec.Text != "" {
		title = "Text Line: " + d.spec.Text
	}
	dlg := dialog.NewCustomConfirm(title, "Save", "Cancel", content,
		func(save bool) {
			if !save {
				return
			}
			if err := d.applyChanges(); err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			if d.onSave != nil {
				d.onSave(d.spec)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(460, 480))
	dlg.Show()
}

func (d *TextItemDialog) createContent() fyne.CanvasObject {
	d.textEntry = widget.NewEntry()
	d.textEntry.SetPlaceHolder("{occasion}, {date}, {coordinates}...")
	d.textEntry.SetText(d.spec.Text)

	d.fontSelect = widget.NewSelect(paint.Families, nil)
	d.fontSelect.SetSelected(paint.NormalizeFamily(d.spec.Font))

	d.sizeEntry = widget.NewEntry()
	d.sizeEntry.SetText(strconv.FormatFloat(d.spec.Size, 'f', -1, 64))

	d.colorSwatch = fynecanvas.NewRectangle(colorutil.White)
	d.colorSwatch.SetMinSize(fyne.NewSize(40, 24))
	d.colorEntry = widget.NewEntry()
	d.colorEntry.OnChanged = func(string) { d.updateSwatch() }
	d.colorEntry.SetText(d.spec.Color)
	pick := widget.NewButton("Pick...", func() {
		picker := dialog.NewColorPicker("Text Color", "", func(c color.Color) {
			d.colorEntry.SetText(colorutil.Hex(c))
		}, d.window)
		picker.Advanced = true
		picker.Show()
	})

	d.boldCheck = widget.NewCheck("Bold", nil)
	d.boldCheck.SetChecked(d.spec.Bold)
	d.italicCheck = widget.NewCheck("Italic", nil)
	d.italicCheck.SetChecked(d.spec.Italic)

	d.positionRadio = widget.NewRadioGroup([]string{layout.Above.String(), layout.Below.String()}, nil)
	d.positionRadio.Horizontal = true
	d.positionRadio.SetSelected(d.spec.Position.String())

	d.orderEntry = widget.NewEntry()
	d.orderEntry.SetText(strconv.Itoa(d.spec.Order))

	form := widget.NewForm(
		widget.NewFormItem("Text", d.textEntry),
		widget.NewFormItem("Font", d.fontSelect),
		widget.NewFormItem("Size (px)", d.sizeEntry),
		widget.NewFormItem("Color", container.NewBorder(nil, nil, d.colorSwatch, pick, d.colorEntry)),
		widget.NewFormItem("Style", container.NewHBox(d.boldCheck, d.italicCheck)),
		widget.NewFormItem("Position", d.positionRadio),
		widget.NewFormItem("Order", d.orderEntry),
	)
	return widget.NewCard("", "Placeholders: {occasion} {date} {datetime} {coordinates} {location}", form)
}

// applyChanges copies the widgets into the text line. Invalid numbers and colors
// are reported rather than silently kept.
func (d *TextItemDialog) applyChanges() error {
	size, err := strconv.ParseFloat(strings.TrimSpace(d.sizeEntry.Text), 64)
	if err != nil || size <= 0 {
		return fmt.Errorf("invalid text size %q", d.sizeEntry.Text)
	}
	order, err := strconv.Atoi(strings.TrimSpace(d.orderEntry.Text))
	if err != nil {
		return fmt.Errorf("invalid order %q", d.orderEntry.Text)
	}
	col := strings.TrimSpace(d.colorEntry.Text)
	if col != "" {
		if _, err := colorutil.Parse(col); err != nil {
			return err
		}
	}
	pos, err := layout.ParsePosition(d.positionRadio.Selected)
	if err != nil {
		return err
	}

	d.spec.Text = d.textEntry.Text
	d.spec.Font = d.fontSelect.Selected
	d.spec.Size = size
	d.spec.Color = col
	d.spec.Bold = d.boldCheck.Checked
	d.spec.Italic = d.italicCheck.Checked
	d.spec.Position = pos
	d.spec.Order = order
	return nil
}

// updateSwatch previews the color being typed.
func (d *TextItemDialog) updateSwatch() {
	if c, err := colorutil.Parse(d.colorEntry.Text); err == nil {
		d.colorSwatch.FillColor = c
		fynecanvas.Refresh(d.colorSwatch)
	}
}
