// Command lampgen generates a lithophane lamp STL from an image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"litho-lamp/internal/config"
	"litho-lamp/internal/pipeline"
)

func main() {
	imagePath := flag.String("image", "", "Path to source image (PNG, JPEG, or TIFF)")
	outPath := flag.String("out", "lamp.stl", "Output STL path")
	configPath := flag.String("config", "", "Settings YAML (defaults used if empty or missing)")
	gamma := flag.Float64("gamma", 0, "Tone-curve exponent override (0 = auto from image)")
	coverage := flag.Float64("coverage", 0, "Coverage angle override in degrees (0 = from settings)")
	facePriority := flag.Bool("face-priority", false, "Use face-priority thickness mapping")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: lampgen -image <path> [-out lamp.stl] [-config settings.yaml] [-gamma 1.0]")
		os.Exit(1)
	}

	settings := config.Default()
	if *configPath != "" {
		var err error
		settings, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
			os.Exit(1)
		}
	}
	if *coverage > 0 {
		settings.CoverageAngle = *coverage
	}
	if *facePriority {
		settings.Strategy = config.StrategyFacePriority
	}

	dims := settings.LithophaneDimensions()
	fmt.Printf("Cylinder: %.0fx%.0fmm, coverage %.0f°, image %dx%d px\n",
		settings.CylinderDiameter, settings.CylinderHeight,
		settings.CoverageAngle, dims.WidthPx, dims.HeightPx)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := pipeline.Options{
		Settings:      settings,
		GammaOverride: *gamma,
		Progress: func(stage pipeline.Stage) {
			fmt.Printf("[%3d%%] %s\n", stage.Percent(), stage)
		},
	}

	result, err := pipeline.Generate(ctx, *imagePath, *outPath, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImage class: %s (gamma %.2f)\n", result.ImageClass, result.Gamma)
	fmt.Printf("Mesh: %d vertices, %d faces (%dx%d lattice)\n",
		len(result.Mesh.Vertices), len(result.Mesh.Faces),
		result.AngularSegments, result.HeightSegments)
	if !result.Report.Watertight() {
		fmt.Printf("Note: %d boundary edges remain; the slicer may need to repair them\n",
			result.Report.LateralHoleEdges)
	}
	fmt.Printf("Estimate: %.1fg PLA, ~%.1fh print, %d layers\n",
		result.Estimate.MaterialGrams, result.Estimate.PrintTimeHours, result.Estimate.LayerCount)
	fmt.Printf("Wrote %s\n", *outPath)
}
