// Package mainwindow provides the preview window: the annotated table
// frame, per-slot readings and frame navigation.
package mainwindow

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"pokervision/internal/app"
	"pokervision/internal/config"
	"pokervision/internal/frame"
	"pokervision/internal/reader"
	"pokervision/internal/version"
	"pokervision/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the preview window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	view      *fynecanvas.Image
	readings  *widget.List
	statusBar *widget.Label
	autoRead  *widget.Check

	rows []reader.Reading
}

// New creates the preview window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(fmt.Sprintf("Card Preview %s", version.Version))

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	w := float32(p.FloatWithFallback(prefs.KeyWindowW, 1280))
	h := float32(p.FloatWithFallback(prefs.KeyWindowH, 800))
	mw.Resize(fyne.NewSize(w, h))
	mw.SetOnClosed(mw.SavePreferences)
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.view = fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	mw.view.FillMode = fynecanvas.ImageFillContain

	mw.readings = widget.NewList(
		func() int { return len(mw.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("slot") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(mw.rows) {
				return
			}
			label := obj.(*widget.Label)
			label.Importance = app.ReadingImportance(mw.rows[id])
			label.SetText(describe(mw.rows[id]))
		},
	)

	mw.statusBar = widget.NewLabel("Open a frame folder to start")

	strict := widget.NewCheck("Strict", func(on bool) {
		mw.prefs.SetBool(prefs.KeyStrict, on)
		if err := mw.state.SetStrict(on); err != nil {
			mw.setStatus(err.Error())
			return
		}
		mw.readCurrent()
	})
	strict.SetChecked(mw.prefs.Bool(prefs.KeyStrict, false))

	mw.autoRead = widget.NewCheck("Read on load", func(on bool) {
		mw.prefs.SetBool(prefs.KeyAutoRead, on)
	})
	mw.autoRead.SetChecked(mw.prefs.Bool(prefs.KeyAutoRead, true))

	toolbar := container.NewHBox(
		widget.NewButton("Open Frames...", mw.onOpenFrames),
		widget.NewButton("<", func() { mw.step(-1) }),
		widget.NewButton(">", func() { mw.step(1) }),
		widget.NewButton("Read", mw.readCurrent),
		widget.NewButton("Reset Hand", func() {
			mw.state.ResetHand()
			mw.setStatus("Stabilizer reset")
		}),
		strict,
		mw.autoRead,
	)

	split := container.NewHSplit(mw.view, mw.readings)
	split.SetOffset(0.7)

	mw.SetContent(container.NewBorder(
		toolbar,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	))
}

func (mw *MainWindow) setupMenus() {
	recent := fyne.NewMenuItem("Open Recent", nil)
	var items []*fyne.MenuItem
	for _, dir := range mw.prefs.Recent() {
		items = append(items, fyne.NewMenuItem(dir, func() { mw.OpenFrames(dir) }))
	}
	if len(items) == 0 {
		recent.Disabled = true
	} else {
		recent.ChildMenu = fyne.NewMenu("", items...)
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Frames...", mw.onOpenFrames),
		recent,
		fyne.NewMenuItem("Open Profile...", mw.onOpenProfile),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reload Templates", func() {
			if err := mw.state.ReloadTemplates(); err != nil {
				mw.setStatus(err.Error())
			}
		}),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventFrameLoaded, func(data interface{}) {
		f := data.(*frame.Frame)
		mw.showImage(f.Image)
		i, n := mw.state.Position()
		mw.setStatus(fmt.Sprintf("%s (%d/%d)", filepath.Base(f.Path), i+1, n))
		if mw.autoRead.Checked {
			mw.readCurrent()
		}
	})
	mw.state.On(app.EventTableRead, func(data interface{}) {
		st := data.(reader.TableState)
		img, profile, _ := mw.state.Snapshot()
		mw.showImage(frame.Annotate(img, profile, st))
		mw.rows = st.Readings
		mw.readings.Refresh()
	})
	mw.state.On(app.EventProfileLoaded, func(data interface{}) {
		mw.setStatus("Profile " + data.(config.Profile).Room + " loaded")
		mw.readCurrent()
	})
	mw.state.On(app.EventTemplatesLoaded, func(interface{}) {
		mw.setStatus("Templates loaded")
	})
	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.setStatus(err.Error())
		}
	})
}

// RestoreLast reopens the frame folder and profile from the previous session.
func (mw *MainWindow) RestoreLast() {
	if path := mw.prefs.String(prefs.KeyProfilePath); path != "" {
		if err := mw.state.LoadProfile(path); err != nil {
			mw.setStatus(err.Error())
		}
	}
	if dir := mw.prefs.String(prefs.KeyFramesDir); dir != "" {
		mw.OpenFrames(dir)
	}
}

// SavePreferences persists window size and the last opened paths.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		fmt.Printf("Failed to save preferences: %v\n", err)
	}
}

func (mw *MainWindow) onOpenFrames() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		mw.OpenFrames(uri.Path())
	}, mw.Window)
	if dir := mw.prefs.String(prefs.KeyFramesDir); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Show()
}

// OpenFrames lists the supported images in dir and shows the first one.
func (mw *MainWindow) OpenFrames(dir string) {
	paths, err := frame.List(dir)
	if err != nil {
		mw.setStatus(err.Error())
		return
	}
	mw.prefs.PushRecent(dir)
	mw.setupMenus()
	if len(paths) == 0 {
		mw.setStatus("No frames in " + dir)
		return
	}
	if err := mw.state.SetFrames(paths); err != nil {
		mw.setStatus(err.Error())
	}
}

func (mw *MainWindow) onOpenProfile() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		if err := mw.state.LoadProfile(path); err != nil {
			mw.setStatus(err.Error())
			return
		}
		mw.prefs.SetString(prefs.KeyProfilePath, path)
	}, mw.Window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	d.Show()
}

func (mw *MainWindow) step(delta int) {
	if err := mw.state.Step(delta); err != nil {
		mw.setStatus(err.Error())
	}
}

func (mw *MainWindow) readCurrent() {
	if !mw.state.HasFrame() {
		return
	}
	if _, err := mw.state.ReadCurrent(context.Background()); err != nil {
		mw.setStatus(err.Error())
	}
}

func (mw *MainWindow) showImage(img image.Image) {
	mw.view.Image = img
	mw.view.Refresh()
}

func (mw *MainWindow) setStatus(msg string) {
	mw.statusBar.SetText(msg)
}

func describe(r reader.Reading) string {
	d := r.Diagnostics
	rc, _ := d.Float("rank_conf")
	sc, _ := d.Float("suit_conf")
	s := fmt.Sprintf("%-16s %s  %s %.2f / %s %.2f", r.Slot, r.Label,
		d.String("rank_code"), rc, d.String("suit_code"), sc)
	if reason := d.String("reason"); reason != "" {
		s += "  (" + reason + ")"
	}
	return s
}
