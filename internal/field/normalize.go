package field

import (
	"image"

	"gocv.io/x/gocv"
)

// Histogram stretch parameters. Stretching only kicks in when the 2%-98%
// percentile span is narrower than minHistogramRange grey levels; the
// result is blended with the original so the correction stays subtle.
const (
	histogramPercentileLow  = 0.02
	histogramPercentileHigh = 0.98
	minHistogramRange       = 100
	histogramTargetMin      = 10
	histogramTargetMax      = 245
	histogramBlendStretched = 0.7
)

// normalizeHistogram widens a compressed tonal range before the thickness
// mapping. Images that already span the grey axis pass through untouched;
// the second return reports whether stretching happened, so callers can
// surface the decision.
func normalizeHistogram(img *image.Gray) (*image.Gray, bool) {
	p2, p98 := histogramPercentiles(img)
	span := p98 - p2
	if span >= minHistogramRange || p98 <= p2 {
		return img, false
	}

	out := image.NewGray(img.Bounds())
	lo, hi := float64(p2), float64(p98)
	target := float64(histogramTargetMax - histogramTargetMin)
	for i, v := range img.Pix {
		f := float64(v)
		clipped := f
		if clipped < lo {
			clipped = lo
		}
		if clipped > hi {
			clipped = hi
		}
		stretched := (clipped-lo)/(hi-lo)*target + histogramTargetMin
		blended := stretched*histogramBlendStretched + f*(1-histogramBlendStretched)
		if blended < 0 {
			blended = 0
		}
		if blended > 255 {
			blended = 255
		}
		out.Pix[i] = uint8(blended + 0.5)
	}
	return out, true
}

// histogramPercentiles returns the grey levels at the low and high
// cumulative-histogram percentiles, computed with OpenCV.
func histogramPercentiles(img *image.Gray) (low, high int) {
	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return 0, 255
	}
	defer src.Close()

	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CalcHist([]gocv.Mat{src}, []int{0}, mask, &hist, []int{256}, []float64{0, 256}, false)

	total := float64(img.Bounds().Dx() * img.Bounds().Dy())
	loTarget := histogramPercentileLow * total
	hiTarget := histogramPercentileHigh * total

	low, high = 0, 255
	cum := 0.0
	foundLow := false
	for i := 0; i < 256; i++ {
		cum += float64(hist.GetFloatAt(i, 0))
		if !foundLow && cum >= loTarget {
			low = i
			foundLow = true
		}
		if cum >= hiTarget {
			high = i
			break
		}
	}
	return low, high
}
