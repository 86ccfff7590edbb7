// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"litho-lamp/internal/app"
	"litho-lamp/internal/config"
	"litho-lamp/internal/pipeline"
	"litho-lamp/internal/version"
	"litho-lamp/ui/prefs"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	imageLabel  *widget.Label
	outputLabel *widget.Label
	status      *widget.Label
	progress    *widget.ProgressBar
	generateBtn *widget.Button
	cancelBtn   *widget.Button

	// Settings entries
	diameter  *widget.Entry
	height    *widget.Entry
	coverage  *widget.Entry
	minThick  *widget.Entry
	maxThick  *widget.Entry
	wallThick *widget.Entry

	cancelRun context.CancelFunc
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Lithophane Lamp Generator " + version.Version)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  appPrefs,
	}

	restoreSettings(appPrefs, state)
	mw.setupUI()
	mw.setupEventHandlers()
	win.Resize(fyne.NewSize(520, 480))

	return mw
}

func (mw *MainWindow) setupUI() {
	mw.imageLabel = widget.NewLabel("No image selected")
	mw.outputLabel = widget.NewLabel("lamp.stl")
	mw.status = widget.NewLabel("Ready")
	mw.progress = widget.NewProgressBar()

	cfg := mw.state.Settings()
	mw.diameter = numberEntry(cfg.CylinderDiameter)
	mw.height = numberEntry(cfg.CylinderHeight)
	mw.coverage = numberEntry(cfg.CoverageAngle)
	mw.minThick = numberEntry(cfg.MinThickness)
	mw.maxThick = numberEntry(cfg.MaxThickness)
	mw.wallThick = numberEntry(cfg.WallThickness)

	form := widget.NewForm(
		widget.NewFormItem("Diameter (mm)", mw.diameter),
		widget.NewFormItem("Height (mm)", mw.height),
		widget.NewFormItem("Coverage (°)", mw.coverage),
		widget.NewFormItem("Min wall (mm)", mw.minThick),
		widget.NewFormItem("Max wall (mm)", mw.maxThick),
		widget.NewFormItem("Inner wall (mm)", mw.wallThick),
	)

	browseBtn := widget.NewButton("Choose Image...", mw.onChooseImage)
	outputBtn := widget.NewButton("Output STL...", mw.onChooseOutput)
	settingsBtn := widget.NewButton("Load Settings...", mw.onLoadSettings)

	mw.generateBtn = widget.NewButton("Generate Lamp", mw.onGenerate)
	mw.cancelBtn = widget.NewButton("Cancel", mw.onCancel)
	mw.cancelBtn.Disable()

	content := container.NewVBox(
		container.NewHBox(browseBtn, mw.imageLabel),
		container.NewHBox(outputBtn, mw.outputLabel),
		container.NewHBox(settingsBtn),
		form,
		container.NewHBox(mw.generateBtn, mw.cancelBtn),
		mw.progress,
		mw.status,
	)

	mw.SetContent(container.NewPadded(content))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventGenerationFinished, func(data interface{}) {
		mw.generateBtn.Enable()
		mw.cancelBtn.Disable()
		mw.cancelRun = nil

		switch v := data.(type) {
		case error:
			mw.status.SetText("Failed")
			dialog.ShowError(v, mw.Window)
		case *pipeline.Result:
			mw.status.SetText("Done")
			dialog.ShowInformation("Lamp generated",
				fmt.Sprintf("%d vertices, %d faces\n~%.0fg PLA, ~%.1fh print",
					len(v.Mesh.Vertices), len(v.Mesh.Faces),
					v.Estimate.MaterialGrams, v.Estimate.PrintTimeHours),
				mw.Window)
		}
	})
}

func (mw *MainWindow) onChooseImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		mw.state.SetImagePath(path)
		mw.imageLabel.SetText(filepath.Base(path))
		mw.prefs.LastImageDir = filepath.Dir(path)
		_ = mw.prefs.Save()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	fd.Show()
}

func (mw *MainWindow) onChooseOutput() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		_ = writer.Close()

		mw.state.SetOutputPath(path)
		mw.outputLabel.SetText(filepath.Base(path))
		mw.prefs.LastOutputDir = filepath.Dir(path)
		_ = mw.prefs.Save()
	}, mw.Window)
	fd.SetFileName("lamp.stl")
	fd.Show()
}

func (mw *MainWindow) onLoadSettings() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		cfg, err := config.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.state.SetSettings(cfg)
		mw.refreshForm(cfg)
		mw.prefs.SettingsPath = path
		_ = mw.prefs.Save()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	fd.Show()
}

func (mw *MainWindow) onGenerate() {
	imagePath := mw.state.ImagePath()
	if imagePath == "" {
		dialog.ShowInformation("No image", "Choose a source image first.", mw.Window)
		return
	}
	outputPath := mw.state.OutputPath()
	if outputPath == "" {
		outputPath = "lamp.stl"
	}

	cfg, err := mw.settingsFromForm()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if err := cfg.Validate(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.state.SetSettings(cfg)

	if !mw.state.BeginGeneration() {
		return
	}
	mw.generateBtn.Disable()
	mw.cancelBtn.Enable()
	mw.progress.SetValue(0)
	mw.status.SetText("Starting...")

	ctx, cancel := context.WithCancel(context.Background())
	mw.cancelRun = cancel

	opts := pipeline.Options{
		Settings: cfg,
		Progress: func(stage pipeline.Stage) {
			mw.progress.SetValue(float64(stage.Percent()) / 100)
			mw.status.SetText(stage.String())
		},
	}

	go func() {
		result, err := pipeline.Generate(ctx, imagePath, outputPath, opts)
		mw.state.FinishGeneration(result, err)
	}()
}

func (mw *MainWindow) onCancel() {
	if mw.cancelRun != nil {
		mw.cancelRun()
		mw.status.SetText("Cancelling...")
	}
}

// settingsFromForm applies the form entries on top of the stored settings.
func (mw *MainWindow) settingsFromForm() (config.Settings, error) {
	cfg := mw.state.Settings()

	fields := []struct {
		entry *widget.Entry
		dst   *float64
		name  string
	}{
		{mw.diameter, &cfg.CylinderDiameter, "diameter"},
		{mw.height, &cfg.CylinderHeight, "height"},
		{mw.coverage, &cfg.CoverageAngle, "coverage angle"},
		{mw.minThick, &cfg.MinThickness, "min wall"},
		{mw.maxThick, &cfg.MaxThickness, "max wall"},
		{mw.wallThick, &cfg.WallThickness, "inner wall"},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.entry.Text, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q", f.name, f.entry.Text)
		}
		*f.dst = v
	}
	return cfg, nil
}

// refreshForm pushes settings values back into the form entries.
func (mw *MainWindow) refreshForm(cfg config.Settings) {
	mw.diameter.SetText(formatNumber(cfg.CylinderDiameter))
	mw.height.SetText(formatNumber(cfg.CylinderHeight))
	mw.coverage.SetText(formatNumber(cfg.CoverageAngle))
	mw.minThick.SetText(formatNumber(cfg.MinThickness))
	mw.maxThick.SetText(formatNumber(cfg.MaxThickness))
	mw.wallThick.SetText(formatNumber(cfg.WallThickness))
}

// restoreSettings loads the settings file used last session, if any.
// Failures fall back to whatever the state already holds.
func restoreSettings(p *prefs.Prefs, state *app.State) {
	if p.SettingsPath == "" {
		return
	}
	cfg, err := config.Load(p.SettingsPath)
	if err != nil {
		log.Printf("Could not restore settings from %s: %v", p.SettingsPath, err)
		return
	}
	state.SetSettings(cfg)
}

func numberEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(formatNumber(v))
	return e
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
