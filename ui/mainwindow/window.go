// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"

	"region-explorer/internal/app"
	"region-explorer/internal/config"
	"region-explorer/internal/version"
	"region-explorer/ui/canvas"
	"region-explorer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const panelGap = 10

// MainWindow is the primary application window: the map frame on the left,
// the description editor and point list on the right.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	cfg     *config.Config
	prefs   *prefs.Prefs

	canvas      *canvas.MapCanvas
	title       *widget.Label
	readOnly    *widget.Check
	saveBtn     *widget.Button
	removeBtn   *widget.Button
	description *widget.Entry
	points      *widget.List
	statusBar   *widget.Label

	// syncing is set while the window pushes session state into widgets,
	// so their change callbacks do not echo back as edits.
	syncing bool
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, cfg *config.Config, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Region Explorer")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		cfg:     cfg,
		prefs:   p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.SetFixedSize(true)
	win.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	win.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI lays the widgets out at the fixed positions the viewport
// configuration expects.
func (mw *MainWindow) setupUI() {
	vp := mw.session.Viewport()

	mw.canvas = canvas.NewMapCanvas(mw.session, mw.cfg.Viewport.ZoomStep)
	mw.canvas.OnError(func(err error) { dialog.ShowError(err, mw.Window) })

	mw.title = widget.NewLabel("")
	mw.title.TextStyle = fyne.TextStyle{Bold: true}

	mw.readOnly = widget.NewCheck("Read-only", func(on bool) {
		if mw.syncing {
			return
		}
		mw.apply(app.SetReadOnly{ReadOnly: on})
	})

	mw.saveBtn = widget.NewButton("Write", mw.onSave)
	mw.removeBtn = widget.NewButton("Remove point", mw.onRemovePoint)
	regionBtn := widget.NewButton("Region", func() { mw.apply(app.ClearSelection{}) })

	mw.description = widget.NewMultiLineEntry()
	mw.description.Wrapping = fyne.TextWrapWord
	mw.description.OnChanged = func(text string) {
		if mw.syncing {
			return
		}
		mw.apply(app.EditDescription{Text: text})
		mw.updateStatus()
	}

	mw.points = widget.NewList(
		func() int { return mw.session.Document().Len() },
		func() fyne.CanvasObject { return widget.NewLabel("#000 (00000.0, 00000.0)") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			doc := mw.session.Document()
			if id < 0 || id >= doc.Len() {
				return
			}
			p := doc.Points[id]
			obj.(*widget.Label).SetText(fmt.Sprintf("#%d (%.1f, %.1f)", id, p.X, p.Y))
		},
	)
	mw.points.OnSelected = func(id widget.ListItemID) {
		if mw.syncing {
			return
		}
		mw.apply(app.SelectPoint{Index: id})
	}

	mw.statusBar = widget.NewLabel("Ready")

	// Map frame
	frameEnd := vp.Frame.BottomRight()
	mw.canvas.Move(fyne.NewPos(float32(vp.Origin.X), float32(vp.Origin.Y)))
	mw.canvas.Resize(mw.canvas.MinSize())

	// Header above the map
	mw.title.Move(fyne.NewPos(float32(vp.Frame.X), 0))
	mw.title.Resize(fyne.NewSize(float32(vp.Frame.Width), float32(vp.Frame.Y)))

	// Side panel
	panelX := float32(frameEnd.X + panelGap)
	panelW := mw.cfg.Window.Width - panelX - panelGap
	header := container.NewHBox(mw.readOnly, regionBtn, mw.removeBtn, mw.saveBtn)
	header.Move(fyne.NewPos(panelX, 0))
	header.Resize(fyne.NewSize(panelW, float32(vp.Frame.Y)))

	editorH := float32(vp.Frame.Height) * 0.6
	mw.description.Move(fyne.NewPos(panelX, float32(vp.Frame.Y)))
	mw.description.Resize(fyne.NewSize(panelW, editorH))

	mw.points.Move(fyne.NewPos(panelX, float32(vp.Frame.Y)+editorH+panelGap))
	mw.points.Resize(fyne.NewSize(panelW, float32(vp.Frame.Height)-editorH-panelGap))

	mw.statusBar.Move(fyne.NewPos(float32(vp.Frame.X), float32(frameEnd.Y)))
	mw.statusBar.Resize(fyne.NewSize(mw.cfg.Window.Width, mw.cfg.Window.Height-float32(frameEnd.Y)))

	mw.SetContent(container.NewWithoutLayout(
		mw.canvas, mw.title, header, mw.description, mw.points, mw.statusBar,
	))
	mw.syncFromSession()
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Write", mw.onSave),
		fyne.NewMenuItem("Reload", mw.onReload),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.zoomCentered(mw.cfg.Viewport.ZoomStep) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.zoomCentered(-mw.cfg.Viewport.ZoomStep) }),
		fyne.NewMenuItem("Center Map", mw.session.CenterImage),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	resync := func(interface{}) { mw.syncFromSession() }
	mw.session.On(app.EventDocumentLoaded, resync)
	mw.session.On(app.EventSelectionChanged, resync)
	mw.session.On(app.EventReadOnlyChanged, resync)

	mw.session.On(app.EventPointAdded, func(interface{}) {
		mw.points.Refresh()
		mw.updateStatus()
	})
	mw.session.On(app.EventPointRemoved, func(interface{}) {
		mw.points.Refresh()
		mw.updateStatus()
	})
	mw.session.On(app.EventViewChanged, func(interface{}) { mw.updateStatus() })

	mw.session.On(app.EventSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.prefs.SetString(prefs.KeyLastDocument, path)
		}
		mw.updateStatus()
	})

	mw.session.On(app.EventExternalChange, func(data interface{}) {
		path, _ := data.(string)
		dialog.ShowConfirm("Region file changed",
			fmt.Sprintf("%s was modified outside the editor.\nReload it and discard unsaved edits?", filepath.Base(path)),
			func(ok bool) {
				if ok {
					mw.onReload()
				}
			}, mw.Window)
	})
}

// syncFromSession pushes selection and document state into the widgets.
func (mw *MainWindow) syncFromSession() {
	mw.syncing = true
	defer func() { mw.syncing = false }()

	doc := mw.session.Document()
	sel := mw.session.Selection()

	mw.title.SetText(doc.Name)
	mw.readOnly.SetChecked(sel.ReadOnly)
	if mw.description.Text != sel.Buffer {
		mw.description.SetText(sel.Buffer)
	}
	mw.points.Refresh()
	if sel.HasPoint() {
		mw.points.Select(sel.Index)
		mw.removeBtn.Enable()
	} else {
		mw.points.UnselectAll()
		mw.removeBtn.Disable()
	}
	if sel.ReadOnly {
		mw.saveBtn.Disable()
	} else {
		mw.saveBtn.Enable()
	}
	mw.updateStatus()
}

func (mw *MainWindow) updateStatus() {
	_, zoom := mw.session.View()
	status := fmt.Sprintf("%d points | zoom %.0f%%", mw.session.Document().Len(), zoom*100)
	if mw.session.Dirty() {
		status += " | modified"
	}
	if mw.session.ReadOnly() {
		status += " | read-only"
	}
	mw.statusBar.SetText(status)
}

func (mw *MainWindow) apply(cmd app.Command) {
	if err := mw.session.Apply(cmd); err != nil {
		log.Printf("Window: %T failed: %v", cmd, err)
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) zoomCentered(step float64) {
	center := mw.session.Viewport().Frame.Center()
	mw.apply(app.Zoom{At: center, Step: step})
}

func (mw *MainWindow) onSave() {
	mw.apply(app.Save{})
}

func (mw *MainWindow) onRemovePoint() {
	sel := mw.session.Selection()
	if !sel.HasPoint() {
		return
	}
	mw.apply(app.RemovePoint{Index: sel.Index})
}

func (mw *MainWindow) onReload() {
	if err := mw.session.Reload(); err != nil {
		log.Printf("Reload: %v", err)
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Region Explorer",
		fmt.Sprintf("Region Explorer %s\nBuilt %s (%s)", version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// SavePreferences stores view preferences.
func (mw *MainWindow) SavePreferences() {
	_, zoom := mw.session.View()
	mw.prefs.SetFloat(prefs.KeyLastZoom, zoom)
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(size.Width, size.Height)
	if path := mw.session.Path(); path != "" {
		mw.prefs.SetString(prefs.KeyLastDocument, path)
	}
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("Preferences: save failed: %v", err)
	}
}

func (mw *MainWindow) onClose() {
	closeNow := func() {
		mw.SavePreferences()
		if err := mw.session.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
		mw.Window.Close()
	}

	if !mw.session.Dirty() {
		closeNow()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		"The region has unsaved changes. Quit without writing them?",
		func(ok bool) {
			if ok {
				closeNow()
			}
		}, mw.Window)
}
