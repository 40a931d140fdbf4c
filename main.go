// Package main provides the entry point for the Star Map Generator application.
package main

import (
	"context"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"starmap/internal/app"
	"starmap/internal/history"
	"starmap/internal/render"
	"starmap/internal/version"
	"starmap/ui/mainwindow"
	"starmap/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String())

	fyneApp := fyneapp.NewWithID("dev.starmap.generator")
	fyneApp.Settings().SetTheme(&app.StarmapTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	var store *history.Store
	if path, err := history.DefaultPath(); err != nil {
		log.Printf("History disabled: %v", err)
	} else if store, err = history.Open(context.Background(), path); err != nil {
		log.Printf("History disabled: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	services, err := app.NewServices(app.EndpointsFromEnv(), store)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	controller := render.NewController(render.Config{
		Stars:    appState.StarSource(services),
		Streets:  services.Streets,
		Reporter: appState,
	})

	win := mainwindow.New(fyneApp, appState, mainwindow.Config{
		Controller: controller,
		Resolver:   services.Resolver,
		History:    store,
		Prefs:      appPrefs,
	})

	// Handle command line arguments
	if len(os.Args) > 1 {
		if err := win.OpenProject(os.Args[1]); err != nil {
			log.Printf("Failed to load project %s: %v", os.Args[1], err)
		}
	}

	win.ShowAndRun()
}
