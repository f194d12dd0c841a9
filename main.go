// Package main provides the entry point for the card preview application.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"pokervision/internal/app"
	"pokervision/internal/config"
	"pokervision/internal/ocr"
	"pokervision/internal/rank"
	"pokervision/internal/version"
	"pokervision/ui/mainwindow"
	"pokervision/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
)

const appID = "io.pokervision.preview"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting card preview %s", version.String())
	_ = godotenv.Load()

	profilePath := flag.String("profile", "", "Room profile YAML (default: $POKERIA_ROOM in assets/rooms)")
	frames := flag.String("frames", "", "Directory of table screenshots")
	flag.Parse()

	appPrefs := prefs.Load()

	path := *profilePath
	if path == "" {
		if room := os.Getenv("POKERIA_ROOM"); room != "" {
			path = config.RoomPath(room)
		}
	}

	var textReader rank.TextReader
	if engine, err := ocr.Shared(); err != nil {
		log.Printf("OCR unavailable, using templates only: %v", err)
	} else {
		defer engine.Close()
		textReader = engine
	}

	state, err := app.NewState(config.Default().ApplyEnv(), textReader)
	if err != nil {
		log.Fatalf("Failed to create state: %v", err)
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.PreviewTheme{})

	win := mainwindow.New(a, state, appPrefs)
	win.RestoreLast()

	if path != "" {
		if err := state.LoadProfile(path); err != nil {
			log.Printf("Failed to load profile %s: %v", path, err)
		}
	}
	if *frames != "" {
		win.OpenFrames(*frames)
	}

	watcher := setupHotReload(state)
	defer watcher.Stop()

	win.ShowAndRun()
}

// setupHotReload reloads the profile and the template bank when they change
// on disk, and follows the session to newly opened profiles and asset dirs.
func setupHotReload(state *app.State) *app.Watcher {
	w := app.NewWatcher(2*time.Second, state.WatchPaths()...)
	follow := func(interface{}) { w.SetPaths(state.WatchPaths()...) }
	state.On(app.EventProfileLoaded, follow)
	state.On(app.EventTemplatesLoaded, follow)

	w.OnChange(func(path string) {
		log.Printf("Hot reload: %s changed", path)
		if err := state.Reload(path); err != nil {
			log.Printf("Hot reload: %v", err)
		}
	})
	w.Start()
	return w
}
