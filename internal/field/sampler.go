package field

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"litho-lamp/internal/config"
)

// Sampler provides continuous-domain bicubic sampling over a thickness
// grid. Coordinates are fractional (row, col) positions in the unpadded
// grid frame; the lattice walked by the mesh synthesizer rarely lands on
// integer pixels, and anything coarser than bicubic shows up as faceting
// on the printed surface.
//
// The grid is replicate-padded by the blend width before interpolation and
// the pad is Gaussian-smoothed, so samples taken slightly outside the raw
// grid (near the coverage-angle boundary) decay smoothly instead of
// producing a hard edge. Requests beyond the padded domain return the
// baseline thickness.
type Sampler struct {
	padded *mat.Dense
	pad    int
	rows   int // unpadded dimensions
	cols   int
	fill   float64
}

// NewSampler builds the padded, edge-smoothed interpolation domain for a
// grid. The pad width follows the configured edge blend width.
func NewSampler(g *Grid, cfg config.Settings) (*Sampler, error) {
	if g == nil || g.Rows() == 0 || g.Cols() == 0 {
		return nil, fmt.Errorf("%w: empty thickness grid", ErrInvalidInput)
	}

	pad := cfg.BlendPixels()
	padded := replicatePad(g.data, pad)

	smoothed, err := gaussianSmooth(padded, pad)
	if err != nil {
		return nil, fmt.Errorf("smooth interpolation domain: %w", err)
	}

	// Keep the interior untouched and let only the pad band take the
	// smoothed values, ramped so the transition is seamless.
	rows, cols := padded.Dims()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			w := borderWeight(row, rows, pad)
			if cw := borderWeight(col, cols, pad); cw < w {
				w = cw
			}
			if w < 1 {
				v := padded.At(row, col)*w + smoothed.At(row, col)*(1-w)
				padded.Set(row, col, v)
			}
		}
	}

	return &Sampler{
		padded: padded,
		pad:    pad,
		rows:   g.Rows(),
		cols:   g.Cols(),
		fill:   g.Baseline(),
	}, nil
}

// Sample returns the interpolated thickness at fractional grid
// coordinates. Coordinates inside the pad band interpolate normally;
// beyond it the baseline fill value is returned.
func (s *Sampler) Sample(row, col float64) float64 {
	pr := row + float64(s.pad)
	pc := col + float64(s.pad)

	r0 := int(math.Floor(pr))
	c0 := int(math.Floor(pc))

	prows, pcols := s.padded.Dims()
	// The 4x4 bicubic stencil needs one pixel above and two below the cell.
	if r0-1 < 0 || r0+2 >= prows || c0-1 < 0 || c0+2 >= pcols {
		return s.fill
	}

	ty := pr - float64(r0)
	tx := pc - float64(c0)

	var colVals [4]float64
	for i := 0; i < 4; i++ {
		r := r0 - 1 + i
		colVals[i] = catmullRom(
			s.padded.At(r, c0-1),
			s.padded.At(r, c0),
			s.padded.At(r, c0+1),
			s.padded.At(r, c0+2),
			tx,
		)
	}
	return catmullRom(colVals[0], colVals[1], colVals[2], colVals[3], ty)
}

// Rows returns the unpadded grid height.
func (s *Sampler) Rows() int { return s.rows }

// Cols returns the unpadded grid width.
func (s *Sampler) Cols() int { return s.cols }

// catmullRom evaluates the Catmull-Rom cubic through p0..p3 at t in [0,1]
// between p1 and p2.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1) +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}

// replicatePad grows the grid by pad pixels on every side, repeating the
// edge values.
func replicatePad(data *mat.Dense, pad int) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.NewDense(rows+2*pad, cols+2*pad, nil)
	for row := 0; row < rows+2*pad; row++ {
		srcRow := clampIndex(row-pad, rows)
		for col := 0; col < cols+2*pad; col++ {
			out.Set(row, col, data.At(srcRow, clampIndex(col-pad, cols)))
		}
	}
	return out
}

// gaussianSmooth blurs the padded map with a kernel scaled to the pad
// width, using OpenCV.
func gaussianSmooth(data *mat.Dense, pad int) (*mat.Dense, error) {
	rows, cols := data.Dims()

	src := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer src.Close()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			src.SetFloatAt(row, col, float32(data.At(row, col)))
		}
	}

	kernel := pad / 2
	if kernel < 5 {
		kernel = 5
	}
	if kernel%2 == 0 {
		kernel++
	}
	sigma := float64(kernel) / 3.0

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Pt(kernel, kernel), sigma, sigma, gocv.BorderDefault)

	out := mat.NewDense(rows, cols, nil)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			out.Set(row, col, float64(dst.GetFloatAt(row, col)))
		}
	}
	return out, nil
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}
