// Package main provides the entry point for the Region Explorer application.
package main

import (
	"log"
	"os"

	"region-explorer/internal/app"
	"region-explorer/internal/config"
	"region-explorer/internal/image"
	"region-explorer/internal/version"
	"region-explorer/ui/mainwindow"
	"region-explorer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "com.regionexplorer.app"
	appTitle = "Region Explorer"

	configFile = "config.toml"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	appPrefs := prefs.Load()

	// Window size and zoom survive between runs
	cfg.Window.Width, cfg.Window.Height = appPrefs.WindowSize(cfg.Window.Width, cfg.Window.Height)

	session := app.NewSession(app.Options{
		Viewport:            cfg.ViewportConfig(),
		DescriptionCapacity: cfg.Editor.DescriptionCapacity,
	})

	// Handle command line arguments
	docPath := appPrefs.StartupDocument(os.Args[1:], cfg.Document.Path)
	if err := session.Open(docPath, cfg.Document.ResourceDir, image.FileDecoder{}); err != nil {
		log.Fatalf("Failed to load region %s: %v", docPath, err)
	}
	session.SetZoom(appPrefs.FloatWithFallback(prefs.KeyLastZoom, cfg.Viewport.Zoom))

	if err := session.Watch(); err != nil {
		log.Printf("Watch: %v", err)
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.RegionTheme{})

	win := mainwindow.New(a, session, cfg, appPrefs)
	win.SetTitle(appTitle + " - " + session.Document().Name)
	win.ShowAndRun()
}
