// Package pipeline orchestrates the lamp generation stages: image
// preparation, thickness field build, mesh synthesis, repair, and STL
// export. Stages run sequentially on the caller's goroutine; cancellation
// is polled between stages only, so no stage ever leaves partial state
// behind.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"

	"gonum.org/v1/gonum/mat"

	"litho-lamp/internal/config"
	"litho-lamp/internal/field"
	"litho-lamp/internal/imaging"
	"litho-lamp/internal/mesh"
	"litho-lamp/internal/stl"
)

// Stage marks a completed pipeline stage boundary.
type Stage int

const (
	StageValidated Stage = iota
	StageImageReady
	StageFieldBuilt
	StageVerticesDone
	StageFacesDone
	StageRepaired
	StageExported
)

// Percent maps a stage boundary to overall progress. Mesh synthesis
// dominates wall-clock time, so it gets the widest band.
func (s Stage) Percent() int {
	switch s {
	case StageValidated:
		return 5
	case StageImageReady:
		return 20
	case StageFieldBuilt:
		return 35
	case StageVerticesDone:
		return 60
	case StageFacesDone:
		return 75
	case StageRepaired:
		return 90
	case StageExported:
		return 100
	default:
		return 0
	}
}

func (s Stage) String() string {
	switch s {
	case StageValidated:
		return "settings validated"
	case StageImageReady:
		return "image prepared"
	case StageFieldBuilt:
		return "thickness field built"
	case StageVerticesDone:
		return "vertices generated"
	case StageFacesDone:
		return "faces generated"
	case StageRepaired:
		return "mesh repaired"
	case StageExported:
		return "STL exported"
	default:
		return "unknown stage"
	}
}

// ProgressFunc receives stage-boundary notifications on the goroutine
// running the pipeline.
type ProgressFunc func(stage Stage)

// Options configures one generation run.
type Options struct {
	Settings config.Settings

	// GammaOverride forces the tone-curve exponent. Zero means derive it
	// from the image classification.
	GammaOverride float64

	// PriorityMask enables face-priority thickness mapping when the
	// strategy asks for it. Supplied by an external detector.
	PriorityMask *mat.Dense

	Progress ProgressFunc
}

// Result carries the finished mesh and everything the caller may want to
// report about the run.
type Result struct {
	Mesh       *mesh.Mesh
	Report     *mesh.Report
	ImageClass string
	Gamma      float64

	AngularSegments int
	HeightSegments  int

	Estimate mesh.PrintEstimate
}

// Generate runs the full pipeline from an image file to an STL file.
func Generate(ctx context.Context, imagePath, outputPath string, opts Options) (*Result, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	report(opts, StageValidated)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray, class, err := imaging.Prepare(imagePath, opts.Settings)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}
	report(opts, StageImageReady)

	result, err := BuildMesh(ctx, gray, class, opts)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := stl.WriteFile(outputPath, result.Mesh, "lithophane lamp"); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	report(opts, StageExported)

	log.Printf("Lamp generated: %d vertices, %d faces, ~%.0fg PLA",
		len(result.Mesh.Vertices), len(result.Mesh.Faces), result.Estimate.MaterialGrams)
	return result, nil
}

// BuildMesh runs the computational core on an already prepared grayscale
// raster: thickness field, sampler, mesh synthesis, and repair. It
// performs no file I/O.
func BuildMesh(ctx context.Context, gray *image.Gray, imageClass string, opts Options) (*Result, error) {
	cfg := opts.Settings

	gamma := opts.GammaOverride
	if gamma == 0 {
		gamma = config.GammaFor(imageClass)
	}

	fieldOpts := field.Options{
		Gamma:        gamma,
		Strategy:     cfg.Strategy,
		PriorityMask: opts.PriorityMask,
	}
	grid, err := field.Build(gray, cfg, fieldOpts)
	if err != nil {
		return nil, fmt.Errorf("build thickness field: %w", err)
	}
	if grid.HistogramStretched() {
		log.Printf("Stretched compressed source histogram before thickness mapping")
	}

	sampler, err := field.NewSampler(grid, cfg)
	if err != nil {
		return nil, fmt.Errorf("build sampler: %w", err)
	}
	report(opts, StageFieldBuilt)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder, err := mesh.NewBuilder(sampler, cfg)
	if err != nil {
		return nil, err
	}

	vertices, err := builder.BuildVertices()
	if err != nil {
		return nil, err
	}
	report(opts, StageVerticesDone)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &mesh.Mesh{Vertices: vertices, Faces: builder.BuildFaces()}
	report(opts, StageFacesDone)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repairReport, err := mesh.Repair(m, mesh.RepairOptions{
		MidRadius: cfg.InnerRadius() + cfg.WallThickness/2,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range repairReport.Warnings {
		log.Printf("Repair warning: %s", w)
	}
	report(opts, StageRepaired)

	return &Result{
		Mesh:            m,
		Report:          repairReport,
		ImageClass:      imageClass,
		Gamma:           gamma,
		AngularSegments: builder.AngularSegments(),
		HeightSegments:  builder.HeightSegments(),
		Estimate:        m.EstimatePrint(cfg.LayerHeight),
	}, nil
}

func report(opts Options, stage Stage) {
	if opts.Progress != nil {
		opts.Progress(stage)
	}
}
