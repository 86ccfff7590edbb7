package imaging

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Classification thresholds on 8-bit luminance.
const (
	underexposedMean = 85
	overexposedMean  = 170
	lowContrastStd   = 35
)

// Classify buckets an image by its luminance statistics. The class picks
// the gamma exponent for the thickness mapping (config.GammaFor); face
// detection is an external concern, so the portrait classes are only ever
// supplied by callers that run a detector.
func Classify(img *image.Gray) string {
	if img == nil || len(img.Pix) == 0 {
		return "balanced"
	}

	values := make([]float64, len(img.Pix))
	for i, v := range img.Pix {
		values[i] = float64(v)
	}

	mean, std := stat.MeanStdDev(values, nil)
	switch {
	case mean < underexposedMean:
		return "underexposed"
	case mean > overexposedMean:
		return "overexposed"
	case std < lowContrastStd:
		return "low_contrast"
	default:
		return "balanced"
	}
}
