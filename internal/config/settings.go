// Package config provides lamp generation settings with validation,
// derived geometry values, and YAML persistence.
package config

import (
	"fmt"
	"math"
)

// ThicknessStrategy selects how image brightness is mapped to wall thickness.
type ThicknessStrategy int

const (
	// StrategyUniform maps every pixel through the same inverse-brightness law.
	StrategyUniform ThicknessStrategy = iota
	// StrategyFacePriority boosts local contrast inside a caller-supplied
	// priority mask (typically from a face detector).
	StrategyFacePriority
)

func (s ThicknessStrategy) String() string {
	switch s {
	case StrategyFacePriority:
		return "face-priority"
	default:
		return "uniform"
	}
}

// ErrInvalidConfig is wrapped by every validation failure so callers can
// test with errors.Is.
var ErrInvalidConfig = fmt.Errorf("invalid settings")

// MaxPrintableThickness is the printability ceiling for lithophane walls.
// Beyond this, backlight no longer penetrates the wall usefully.
const MaxPrintableThickness = 5.0

// Mesh resolution bounds. Derived segment counts are clamped into these
// bands so pathological settings cannot produce unusable meshes.
const (
	AngularSegmentsMin = 800
	AngularSegmentsMax = 1400
	HeightSegmentsMin  = 600
	HeightSegmentsMax  = 1200

	// meshResolutionMultiplier coarsens the mesh lattice relative to the
	// image pixel grid; the interpolated sampler covers the gap.
	meshResolutionMultiplier = 2.0
)

// Settings holds every parameter for lithophane lamp generation.
// All lengths are millimeters, angles are degrees. The on-disk YAML
// layout lives in yaml.go.
type Settings struct {
	// Physical dimensions
	CylinderDiameter float64
	CylinderHeight   float64
	WallThickness    float64

	// Printing parameters
	NozzleDiameter float64
	LayerHeight    float64
	MinThickness   float64
	MaxThickness   float64

	// Quality
	Resolution    float64 // mm per source pixel
	MeshQuality   float64
	CoverageAngle float64

	// Margins and blending
	TopMargin      float64
	BottomMargin   float64
	EdgeBlendWidth float64

	// Thickness mapping strategy
	Strategy ThicknessStrategy
}

// Default returns the settings tuned for a desk-size LED lamp.
func Default() Settings {
	return Settings{
		CylinderDiameter: 80,
		CylinderHeight:   120,
		WallThickness:    2.0,
		NozzleDiameter:   0.4,
		LayerHeight:      0.2,
		MinThickness:     0.5,
		MaxThickness:     2.2,
		Resolution:       0.1,
		MeshQuality:      1.0,
		CoverageAngle:    270,
		TopMargin:        8,
		BottomMargin:     8,
		EdgeBlendWidth:   3.0,
		Strategy:         StrategyUniform,
	}
}

// Validate checks every invariant the pipeline relies on.
// The first violated invariant is reported, wrapped in ErrInvalidConfig.
func (s Settings) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if s.CylinderDiameter <= 0 {
		return fail("cylinder diameter must be positive, got %g", s.CylinderDiameter)
	}
	if s.CylinderHeight <= 0 {
		return fail("cylinder height must be positive, got %g", s.CylinderHeight)
	}
	if s.WallThickness <= 0 {
		return fail("wall thickness must be positive, got %g", s.WallThickness)
	}
	if s.WallThickness >= s.CylinderDiameter/2 {
		return fail("wall thickness %gmm must be less than cylinder radius %gmm",
			s.WallThickness, s.CylinderDiameter/2)
	}
	if s.MinThickness < 0 {
		return fail("min thickness must be non-negative, got %g", s.MinThickness)
	}
	if s.MinThickness >= s.MaxThickness {
		return fail("min thickness %gmm must be less than max thickness %gmm",
			s.MinThickness, s.MaxThickness)
	}
	if s.MaxThickness > MaxPrintableThickness {
		return fail("max thickness %gmm exceeds printability ceiling %gmm",
			s.MaxThickness, MaxPrintableThickness)
	}
	if s.Resolution <= 0 || s.Resolution > 1.0 {
		return fail("resolution must be in (0, 1.0] mm/pixel, got %g", s.Resolution)
	}
	if s.CoverageAngle <= 0 || s.CoverageAngle > 360 {
		return fail("coverage angle must be in (0, 360] degrees, got %g", s.CoverageAngle)
	}
	if s.MeshQuality <= 0 {
		return fail("mesh quality must be positive, got %g", s.MeshQuality)
	}
	if s.NozzleDiameter <= 0 {
		return fail("nozzle diameter must be positive, got %g", s.NozzleDiameter)
	}
	if s.LayerHeight <= 0 {
		return fail("layer height must be positive, got %g", s.LayerHeight)
	}
	if s.LayerHeight > s.NozzleDiameter*1.2 {
		return fail("layer height %gmm should not exceed 1.2x nozzle diameter %gmm",
			s.LayerHeight, s.NozzleDiameter)
	}
	if s.TopMargin < 0 || s.BottomMargin < 0 {
		return fail("margins must be non-negative, got top %g bottom %g",
			s.TopMargin, s.BottomMargin)
	}
	if s.TopMargin+s.BottomMargin >= s.CylinderHeight {
		return fail("combined margins %gmm must be less than cylinder height %gmm",
			s.TopMargin+s.BottomMargin, s.CylinderHeight)
	}
	if s.EdgeBlendWidth < 0 {
		return fail("edge blend width must be non-negative, got %g", s.EdgeBlendWidth)
	}
	return nil
}

// InnerRadius returns the radius of the fixed inner wall.
func (s Settings) InnerRadius() float64 {
	return s.CylinderDiameter/2 - s.WallThickness
}

// BlendPixels returns the width of the border blend band in pixels.
// Never less than two pixels, so even tiny blend widths produce a ramp.
func (s Settings) BlendPixels() int {
	p := int(math.Round(s.EdgeBlendWidth / s.Resolution))
	if p < 2 {
		p = 2
	}
	return p
}

// LithophaneDimensions describes the pixel footprint the source image must
// be resized to, plus the physical extent it covers on the cylinder.
type LithophaneDimensions struct {
	WidthPx     int
	HeightPx    int
	ArcLengthMM float64
	ImageHeight float64
}

// LithophaneDimensions computes the target raster size from the arc the
// image covers and the vertical band between the margins.
func (s Settings) LithophaneDimensions() LithophaneDimensions {
	outerRadius := s.CylinderDiameter / 2
	arc := outerRadius * s.CoverageAngle * math.Pi / 180
	imageHeight := s.CylinderHeight - s.TopMargin - s.BottomMargin

	return LithophaneDimensions{
		WidthPx:     int(arc / s.Resolution),
		HeightPx:    int(imageHeight / s.Resolution),
		ArcLengthMM: arc,
		ImageHeight: imageHeight,
	}
}

// MeshResolution returns the angular and vertical segment counts for the
// cylinder lattice, scaled by mesh quality and clamped to the safe bands.
func (s Settings) MeshResolution() (angular, height int) {
	circumference := math.Pi * s.CylinderDiameter

	angular = int(circumference / (s.Resolution * meshResolutionMultiplier) * s.MeshQuality)
	angular = clampInt(angular, AngularSegmentsMin, AngularSegmentsMax)

	height = int(s.CylinderHeight / (s.Resolution * meshResolutionMultiplier) * s.MeshQuality)
	height = clampInt(height, HeightSegmentsMin, HeightSegmentsMax)

	return angular, height
}

// GammaFor returns the tone-curve exponent for a classified image type.
// Values below 1.0 brighten (thinner walls), above 1.0 darken.
func GammaFor(imageType string) float64 {
	if g, ok := gammaTable[imageType]; ok {
		return g
	}
	return 1.0
}

var gammaTable = map[string]float64{
	"portrait":              0.95,
	"portrait_low_contrast": 0.9,
	"underexposed":          0.95,
	"overexposed":           1.1,
	"low_contrast":          0.9,
	"shadow_heavy":          0.95,
	"highlight_heavy":       1.05,
	"balanced":              1.0,
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
