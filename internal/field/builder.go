package field

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"litho-lamp/internal/config"
)

// ErrInvalidInput reports a malformed or empty source buffer.
var ErrInvalidInput = fmt.Errorf("invalid input buffer")

// Options tunes a single thickness field build.
type Options struct {
	// Gamma is the tone-curve exponent applied to normalized brightness.
	// 1.0 leaves the tone curve untouched.
	Gamma float64

	// Strategy selects uniform or face-priority mapping.
	Strategy config.ThicknessStrategy

	// PriorityMask holds per-pixel weights in [0,1] for StrategyFacePriority,
	// same dimensions as the source image. Ignored for StrategyUniform.
	PriorityMask *mat.Dense
}

// DefaultOptions returns a neutral uniform mapping.
func DefaultOptions() Options {
	return Options{Gamma: 1.0, Strategy: config.StrategyUniform}
}

// Build converts a grayscale image into a thickness grid: brightness is
// normalized, gamma-shaped, inverted (bright passes more light, so bright
// means thin), mapped linearly into [MinThickness, MaxThickness], and
// finally blended toward the baseline along all four borders so the wrap
// onto the cylinder shows no seam.
//
// Build is a pure function of its inputs.
func Build(img *image.Gray, cfg config.Settings, opts Options) (*Grid, error) {
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if cfg.MaxThickness <= cfg.MinThickness {
		return nil, fmt.Errorf("%w: max thickness %g <= min thickness %g",
			config.ErrInvalidConfig, cfg.MaxThickness, cfg.MinThickness)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	blend := cfg.BlendPixels()
	if 2*blend >= w || 2*blend >= h {
		return nil, fmt.Errorf("%w: blend band of %d pixels consumes the whole %dx%d grid",
			config.ErrInvalidConfig, blend, w, h)
	}
	if opts.Gamma <= 0 {
		return nil, fmt.Errorf("%w: gamma must be positive, got %g",
			config.ErrInvalidConfig, opts.Gamma)
	}
	if opts.Strategy == config.StrategyFacePriority && opts.PriorityMask != nil {
		mr, mc := opts.PriorityMask.Dims()
		if mr != h || mc != w {
			return nil, fmt.Errorf("%w: priority mask is %dx%d, image is %dx%d",
				ErrInvalidInput, mc, mr, w, h)
		}
	}

	normalized, stretched := normalizeHistogram(img)

	rng := cfg.MaxThickness - cfg.MinThickness
	data := mat.NewDense(h, w, nil)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			v := float64(normalized.GrayAt(col, row).Y) / 255.0
			inv := 1.0 - math.Pow(v, opts.Gamma)
			data.Set(row, col, cfg.MinThickness+inv*rng)
		}
	}

	if opts.Strategy == config.StrategyFacePriority && opts.PriorityMask != nil {
		boostPriorityRegions(data, opts.PriorityMask, cfg.MinThickness, cfg.MaxThickness)
	}

	applyBorderBlend(data, blend, cfg.MinThickness)

	return &Grid{data: data, min: cfg.MinThickness, max: cfg.MaxThickness, stretched: stretched}, nil
}

// applyBorderBlend ramps values linearly toward the baseline over the
// outer blend band. The per-pixel weight is the minimum of the four
// per-border ramps, so corners decay along both axes.
func applyBorderBlend(data *mat.Dense, blend int, baseline float64) {
	rows, cols := data.Dims()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			weight := borderWeight(row, rows, blend)
			if w := borderWeight(col, cols, blend); w < weight {
				weight = w
			}
			if weight < 1 {
				v := data.At(row, col)
				data.Set(row, col, v*weight+baseline*(1-weight))
			}
		}
	}
}

// borderWeight returns the blend weight for index i along an axis of the
// given length: 0.0 on the outermost row/column rising linearly to 1.0 at
// depth blend, so the border itself sits exactly on the baseline.
func borderWeight(i, length, blend int) float64 {
	dist := i
	if d := length - 1 - i; d < dist {
		dist = d
	}
	if dist >= blend {
		return 1.0
	}
	return float64(dist) / float64(blend)
}

// boostPriorityRegions increases local contrast where the mask is strong:
// inside the mask the field is stretched about its own midpoint, which
// deepens shadows and thins highlights on the subject without touching
// the background.
func boostPriorityRegions(data, mask *mat.Dense, minT, maxT float64) {
	const boost = 0.35

	rows, cols := data.Dims()
	mid := (minT + maxT) / 2
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			w := mask.At(row, col)
			if w <= 0 {
				continue
			}
			if w > 1 {
				w = 1
			}
			v := data.At(row, col)
			stretched := mid + (v-mid)*(1+boost)
			v = v*(1-w) + stretched*w
			if v < minT {
				v = minT
			}
			if v > maxT {
				v = maxT
			}
			data.Set(row, col, v)
		}
	}
}
