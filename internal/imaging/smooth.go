package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Smoothing parameters. Lithophanes need far more smoothing than screen
// display: every residual speck of noise prints as a physical bump. The
// smoothed result is blended with the original so edges survive.
const (
	bilateralDiameter   = 9
	bilateralSigma      = 75
	portraitSigma       = 100
	gaussianKernel      = 5
	smoothBlendFraction = 0.8
)

// Smooth applies edge-preserving smoothing tuned for relief printing.
// Portrait-class images get the heavier variant: skin noise is the most
// visible artifact on a backlit face.
func Smooth(img *image.Gray, imageClass string) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("convert to mat: %w", err)
	}
	defer src.Close()

	sigma := float64(bilateralSigma)
	passes := 2
	if imageClass == "portrait" || imageClass == "portrait_low_contrast" {
		sigma = portraitSigma
		passes = 3
	}

	work := src.Clone()
	defer work.Close()
	for i := 0; i < passes; i++ {
		filtered := gocv.NewMat()
		gocv.BilateralFilter(work, &filtered, bilateralDiameter, sigma, sigma)
		work.Close()
		work = filtered
	}

	gocv.GaussianBlur(work, &work, image.Pt(gaussianKernel, gaussianKernel), 0, 0, gocv.BorderDefault)

	smoothed, err := work.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert from mat: %w", err)
	}
	smoothedGray := ToGray(smoothed)

	// Blend back a fraction of the original to keep edge definition.
	out := image.NewGray(img.Bounds())
	for i := range img.Pix {
		v := float64(smoothedGray.Pix[i])*smoothBlendFraction +
			float64(img.Pix[i])*(1-smoothBlendFraction)
		out.Pix[i] = uint8(v + 0.5)
	}
	return out, nil
}
