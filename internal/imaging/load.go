// Package imaging loads and prepares the source raster for the thickness
// field: decoding, grayscale conversion, resizing to the lithophane pixel
// footprint, and lithophane-specific smoothing.
package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"litho-lamp/internal/config"
)

// Load decodes an image file (PNG, JPEG, or TIFF).
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// ToGray converts any image to 8-bit grayscale using the standard
// luminance weights.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, img, bounds.Min, xdraw.Src)
	return gray
}

// Resize scales a grayscale image to the given size with Catmull-Rom
// resampling, which keeps gradients smooth enough for relief mapping.
func Resize(img *image.Gray, width, height int) *image.Gray {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Prepare runs the full preprocessing chain for one lamp generation:
// decode, grayscale, resize to the configured pixel footprint, classify,
// and smooth. It returns the prepared raster and the image class used to
// pick the gamma exponent.
func Prepare(path string, cfg config.Settings) (*image.Gray, string, error) {
	img, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	gray := ToGray(img)
	class := Classify(gray)

	dims := cfg.LithophaneDimensions()
	resized := Resize(gray, dims.WidthPx, dims.HeightPx)

	smoothed, err := Smooth(resized, class)
	if err != nil {
		return nil, "", fmt.Errorf("smooth image: %w", err)
	}
	return smoothed, class, nil
}
