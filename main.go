// Package main provides the entry point for the Lithophane Lamp Generator.
package main

import (
	"log"

	fyneapp "fyne.io/fyne/v2/app"

	"litho-lamp/internal/app"
	"litho-lamp/internal/version"
	"litho-lamp/ui/mainwindow"
	"litho-lamp/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Lithophane Lamp Generator v%s", version.Version)

	fyneApp := fyneapp.New()

	state := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.ShowAndRun()
}
