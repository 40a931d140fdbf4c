// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"starmap/internal/app"
	"starmap/internal/export"
	"starmap/internal/history"
	"starmap/internal/project"
	"starmap/internal/render"
	"starmap/internal/version"
	"starmap/ui/canvas"
	"starmap/ui/panels"
	"starmap/ui/prefs"
)

// Config wires the window to the render pipeline. History may be nil.
type Config struct {
	Controller *render.Controller
	Resolver   project.Resolver
	History    *history.Store
	Prefs      *prefs.Prefs
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app        fyne.App
	state      *app.State
	prefs      *prefs.Prefs
	controller *render.Controller
	resolver   project.Resolver
	history    *history.Store

	canvas      *canvas.ImageCanvas
	sidePanel   *panels.SidePanel
	statusBar   *widget.Label
	dimensions  *widget.Label
	progress    *widget.ProgressBarInfinite
	downloadBtn *widget.Button
	viewButtons map[render.Mode]*widget.Button

	watchMu   sync.Mutex
	watcher   *app.HotReloader
	stopWatch context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, cfg Config) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window:     win,
		app:        fyneApp,
		state:      state,
		prefs:      cfg.Prefs,
		controller: cfg.Controller,
		resolver:   cfg.Resolver,
		history:    cfg.History,
	}
	if mw.prefs == nil {
		mw.prefs = prefs.Load()
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreLastInputs()

	win.SetOnClosed(mw.onClosed)
	win.Resize(fyne.NewSize(1280, 860))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas()

	var hist panels.History
	if mw.history != nil {
		hist = mw.history
	}
	mw.sidePanel = panels.NewSidePanel(mw.state, hist)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.dimensions = widget.NewLabel("")
	mw.progress = widget.NewProgressBarInfinite()
	mw.progress.Hide()

	canvasArea := container.NewBorder(
		mw.createToolbar(),    // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.3)

	status := container.NewBorder(nil, nil, nil, mw.dimensions, container.NewHBox(mw.progress, mw.statusBar))
	content := container.NewBorder(nil, container.NewPadded(status), nil, nil, split)

	mw.SetContent(content)
}

// createToolbar creates the view buttons, download and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	views := container.NewHBox()
	mw.viewButtons = make(map[render.Mode]*widget.Button)
	for _, mode := range render.Modes {
		btn := widget.NewButton(mode.Title(), func() { mw.RenderMode(mode) })
		mw.viewButtons[mode] = btn
		views.Add(btn)
	}

	mw.downloadBtn = widget.NewButtonWithIcon("Download", theme.DownloadIcon(), mw.onDownload)
	mw.downloadBtn.Importance = widget.HighImportance
	mw.downloadBtn.Disable()

	guides := widget.NewCheck("Guides", mw.canvas.SetShowGuides)

	return container.NewVBox(
		views,
		container.NewHBox(
			mw.downloadBtn,
			widget.NewSeparator(),
			widget.NewLabel("Zoom:"),
			widget.NewButton("-", mw.canvas.ZoomOut),
			widget.NewButton("+", mw.canvas.ZoomIn),
			widget.NewButton("Fit", func() { mw.canvas.SetFitToWindow(true) }),
			guides,
		),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Download Poster...", mw.onDownload),
	)

	viewItems := make([]*fyne.MenuItem, 0, len(render.Modes))
	for _, mode := range render.Modes {
		viewItems = append(viewItems, fyne.NewMenuItem(mode.Title(), func() { mw.RenderMode(mode) }))
	}
	viewMenu := fyne.NewMenu("View", viewItems...)

	historyMenu := fyne.NewMenu("History",
		fyne.NewMenuItem("Clear History", mw.onClearHistory),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, historyMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		mw.updateTitle()
		if mw.state.ProjectPath != "" {
			mw.updateStatus("Project loaded: " + mw.state.ProjectPath)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		mw.updateTitle()
		if path, ok := data.(string); ok {
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventRenderStarted, func(data interface{}) {
		if mode, ok := data.(render.Mode); ok {
			mw.updateStatus("Rendering " + mode.Title() + "...")
		}
		mw.progress.Show()
	})

	mw.state.On(app.EventRenderFailed, func(data interface{}) {
		mw.progress.Hide()
		if f, ok := data.(app.RenderFailure); ok {
			mw.updateStatus(f.Mode.Title() + " failed")
			dialog.ShowError(f.Err, mw.Window)
		}
	})

	mw.state.On(app.EventRenderFinished, func(data interface{}) {
		mw.progress.Hide()
		if res, ok := data.(*render.Result); ok {
			mw.canvas.SetResult(res)
			mw.dimensions.SetText(res.Label)
			mw.updateStatus(res.Mode.Title() + " ready")
		}
	})

	mw.state.On(app.EventDownloadChanged, func(data interface{}) {
		if ok, _ := data.(bool); ok {
			mw.downloadBtn.Enable()
		} else {
			mw.downloadBtn.Disable()
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	name := "New Project"
	if mw.state.ProjectPath != "" {
		name = filepath.Base(mw.state.ProjectPath)
	}
	mw.SetTitle(version.Name + " - " + name)
}

// RenderMode renders the open project in mode on a background goroutine.
// A newer call supersedes an older one still in flight, including its
// location lookup.
func (mw *MainWindow) RenderMode(mode render.Mode) {
	if err := mw.sidePanel.Apply(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	p := mw.state.CurrentProject().Clone()
	mw.rememberInputs(p, mode)

	go func() {
		var s render.Settings
		// Failures reach the user through the state's reporter events.
		res, err := mw.controller.RenderFunc(context.Background(), mode, func(ctx context.Context) (render.Settings, error) {
			var err error
			s, err = p.Settings(ctx, mw.resolver)
			return s, err
		})
		if err != nil {
			return
		}
		mw.recordHistory(p, s, res)
	}()
}

func (mw *MainWindow) recordHistory(p *project.File, s render.Settings, res *render.Result) {
	if mw.history == nil || s.Location == nil {
		return
	}
	_, err := mw.history.Record(context.Background(), history.Entry{
		Occasion:  p.Occasion,
		Location:  s.Location.Label,
		Latitude:  s.Location.Latitude,
		Longitude: s.Location.Longitude,
		Date:      s.Date,
		Mode:      res.Mode.String(),
	})
	if err != nil {
		log.Printf("Failed to record history: %v", err)
		return
	}
	mw.sidePanel.ReloadHistory()
}

// rememberInputs stores the latest inputs so the next session starts there.
func (mw *MainWindow) rememberInputs(p *project.File, mode render.Mode) {
	mw.prefs.SetString(prefs.KeyOccasion, p.Occasion)
	mw.prefs.SetString(prefs.KeyLocation, p.Location.Query)
	mw.prefs.SetString(prefs.KeyMode, mode.String())
	mw.prefs.SetFloat(prefs.KeyFillPercent, p.Circle.Size)
	mw.prefs.SetFloat(prefs.KeyOverlapPercent, p.Circle.Overlap)
	mw.prefs.SetFloat(prefs.KeyZoomPercent, p.Circle.Zoom)
	mw.prefs.SetFloat(prefs.KeyBorderWidth, p.Circle.BorderWidth)
	mw.prefs.SetInt(prefs.KeyWidth, p.Canvas.Width)
	mw.prefs.SetInt(prefs.KeyHeight, p.Canvas.Height)
}

// restoreLastInputs seeds an untitled project from the preferences, or
// reopens the last project.
func (mw *MainWindow) restoreLastInputs() {
	if path := mw.prefs.String(prefs.KeyLastProject); path != "" {
		if err := mw.OpenProject(path); err == nil {
			return
		}
		log.Printf("Last project %s not reopened", path)
	}

	p := mw.state.CurrentProject()
	p.Occasion = mw.prefs.String(prefs.KeyOccasion)
	if q := mw.prefs.String(prefs.KeyLocation); q != "" {
		p.Location = project.LocationSpec{Query: q}
	}
	p.Circle.Size = mw.prefs.FloatWithFallback(prefs.KeyFillPercent, p.Circle.Size)
	p.Circle.Overlap = mw.prefs.FloatWithFallback(prefs.KeyOverlapPercent, p.Circle.Overlap)
	p.Circle.Zoom = mw.prefs.FloatWithFallback(prefs.KeyZoomPercent, p.Circle.Zoom)
	p.Circle.BorderWidth = mw.prefs.FloatWithFallback(prefs.KeyBorderWidth, p.Circle.BorderWidth)
	p.Canvas.Width = mw.prefs.Int(prefs.KeyWidth, p.Canvas.Width)
	p.Canvas.Height = mw.prefs.Int(prefs.KeyHeight, p.Canvas.Height)
	mw.sidePanel.Refresh()
	mw.updateTitle()
}

// watchProject reloads the project when another program edits it.
func (mw *MainWindow) watchProject(path string) {
	mw.watchMu.Lock()
	defer mw.watchMu.Unlock()
	mw.stopWatchingLocked()

	w, err := app.NewHotReloader(path, app.DefaultDebounce)
	if err != nil {
		log.Printf("Not watching %s: %v", path, err)
		return
	}
	w.OnChange(func(p string) {
		if mw.state.IsModified() {
			mw.updateStatus("Project changed on disk; unsaved edits kept")
			return
		}
		if err := mw.state.LoadProject(p); err != nil {
			log.Printf("Failed to reload %s: %v", p, err)
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	mw.watcher = w
	mw.stopWatch = cancel
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("watch %s: %v", path, err)
		}
	}()
}

func (mw *MainWindow) stopWatchingLocked() {
	if mw.stopWatch != nil {
		mw.stopWatch()
		mw.stopWatch = nil
	}
	if mw.watcher != nil {
		mw.watcher.Close()
		mw.watcher = nil
	}
}

func (mw *MainWindow) onClosed() {
	mw.watchMu.Lock()
	mw.stopWatchingLocked()
	mw.watchMu.Unlock()
	mw.prefs.SetString(prefs.KeyLastProject, mw.state.ProjectPath)
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.watchMu.Lock()
	mw.stopWatchingLocked()
	mw.watchMu.Unlock()
	mw.state.NewProject("Untitled")
	mw.updateTitle()
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.OpenProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Extension, ".yaml", ".yml"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// OpenProject loads path and reloads it whenever it changes on disk.
func (mw *MainWindow) OpenProject(path string) error {
	if err := mw.state.LoadProject(path); err != nil {
		return err
	}
	mw.watchProject(path)
	return nil
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	mw.saveProject(mw.state.ProjectPath)
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		switch filepath.Ext(path) {
		case project.Extension, ".yaml", ".yml":
		default:
			path += project.Extension
		}
		mw.saveLastDir(path)
		mw.saveProject(path)
	}, mw.Window)
	fd.SetFileName("poster" + project.Extension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) saveProject(path string) {
	if err := mw.sidePanel.Apply(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	// Our own write would otherwise trigger a reload.
	mw.watchMu.Lock()
	mw.stopWatchingLocked()
	mw.watchMu.Unlock()
	if err := mw.state.SaveProject(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.watchProject(path)
}

// onDownload exports the last render in the format named by the file
// extension.
func (mw *MainWindow) onDownload() {
	res := mw.state.LastResult()
	if !mw.state.CanDownload() || res == nil {
		mw.updateStatus("Nothing to download yet")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if _, err := export.FormatFromPath(path); err != nil {
			path += export.PNG.Extension()
		}
		mw.saveLastDir(path)
		if err := export.WriteFile(path, res, export.Options{}); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Saved " + path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".svg"}))
	fd.SetFileName(downloadName(mw.state.CurrentProject(), res.Mode))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// downloadName suggests a file name such as "our-wedding-portrait.png".
func downloadName(p *project.File, mode render.Mode) string {
	base := "star-map"
	if p != nil && strings.TrimSpace(p.Occasion) != "" {
		base = slug(p.Occasion)
	}
	return fmt.Sprintf("%s-%s%s", base, mode, export.PNG.Extension())
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (mw *MainWindow) onClearHistory() {
	if mw.history == nil {
		return
	}
	dialog.ShowConfirm("Clear History", "Forget all past renders and saved locations?", func(ok bool) {
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mw.history.Clear(ctx); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.sidePanel.ReloadHistory()
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s v%s\n\n"+
			"Printable star map posters for a date and place.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Name, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
