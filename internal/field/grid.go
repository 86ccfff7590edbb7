// Package field builds the millimeter thickness grid from a grayscale
// raster and provides smooth continuous-domain sampling over it.
package field

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Grid is a 2D field of wall thickness values in millimeters. Row 0
// corresponds to the top of the source image. A Grid is immutable once
// built; the mesh synthesizer reads it through a Sampler.
type Grid struct {
	data      *mat.Dense
	min       float64 // configured minimum thickness, also the blend baseline
	max       float64
	stretched bool
}

// Rows returns the vertical pixel count.
func (g *Grid) Rows() int {
	r, _ := g.data.Dims()
	return r
}

// Cols returns the horizontal pixel count.
func (g *Grid) Cols() int {
	_, c := g.data.Dims()
	return c
}

// At returns the thickness in millimeters at integer grid coordinates.
func (g *Grid) At(row, col int) float64 {
	return g.data.At(row, col)
}

// Baseline returns the value border pixels decay to (the configured
// minimum thickness).
func (g *Grid) Baseline() float64 {
	return g.min
}

// MaxThickness returns the configured thickness ceiling.
func (g *Grid) MaxThickness() float64 {
	return g.max
}

// HistogramStretched reports whether the source's compressed tonal range
// was widened before the thickness mapping.
func (g *Grid) HistogramStretched() bool {
	return g.stretched
}

// Mean returns the average thickness over the whole grid.
func (g *Grid) Mean() float64 {
	return stat.Mean(g.data.RawMatrix().Data, nil)
}
