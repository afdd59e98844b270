package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	// Screenshot and icon sources may come in any of these formats.
	_ "image/gif"
	_ "image/jpeg"
)

// Device display geometry and the accepted source scales.
const (
	// ScreenWidth and ScreenHeight are the target screenshot resolution.
	ScreenWidth  = 128
	ScreenHeight = 64

	// IconSize is the required icon edge length.
	IconSize = 10
)

// downscaleFactors are the accepted integer scales of screenshot sources.
var downscaleFactors = []int{4, 8}

// blackThreshold separates "ink" from background. Pixels brighter than this
// become fully transparent, matching the device's 1-bit rendering.
var blackThreshold = color.NRGBA{R: 15, G: 15, B: 15}

var (
	// pixelBlack is the opaque ink pixel of processed assets.
	pixelBlack = color.NRGBA{A: 255}
	// pixelTransparent is the keyed-out background pixel.
	pixelTransparent = color.NRGBA{R: 255, G: 255, B: 255}
)

var (
	// ErrIconSize is returned when the icon is not exactly 10x10.
	ErrIconSize = errors.New("unexpected icon resolution")
	// ErrNonMonochromeIcon is returned when an icon carries any color other
	// than pure black or pure white.
	ErrNonMonochromeIcon = errors.New("icon is not black and white")
	// ErrScreenshotResolution is returned when a screenshot is not an exact
	// allowed multiple of the device resolution.
	ErrScreenshotResolution = errors.New("unsupported screenshot resolution")
)

// ProcessIcon validates and transforms an application icon: the source must
// decode to exactly 10x10 with every pixel pure black or pure white. White
// pixels become transparent, black pixels stay opaque, and the result is
// written as PNG.
func ProcessIcon(src, dst string) error {
	img, err := decode(src)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if bounds.Dx() != IconSize || bounds.Dy() != IconSize {
		return fmt.Errorf("%w: %s is %dx%d, expected %dx%d",
			ErrIconSize, filepath.Base(src), bounds.Dx(), bounds.Dy(), IconSize, IconSize)
	}

	out := image.NewNRGBA(image.Rect(0, 0, IconSize, IconSize))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)

			if !isBlack(pixel) && !isWhite(pixel) {
				return fmt.Errorf("%w: %s", ErrNonMonochromeIcon, filepath.Base(src))
			}

			out.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, keyPixel(pixel))
		}
	}

	return savePNG(dst, out)
}

// ProcessScreenshot validates and transforms a screenshot: the source
// resolution must be the device resolution multiplied by one of the allowed
// factors, the same factor on both axes. The image is downscaled with
// nearest-neighbor sampling and reduced to transparency-keyed black.
func ProcessScreenshot(src, dst string) error {
	img, err := decode(src)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	factorX, factorY := width/ScreenWidth, height/ScreenHeight
	if factorX != factorY || !allowedFactor(factorX) ||
		factorX*ScreenWidth != width || factorY*ScreenHeight != height {
		return fmt.Errorf("%w: %s is %dx%d, expected %dx%d at scale 4 or 8",
			ErrScreenshotResolution, filepath.Base(src), width, height, ScreenWidth, ScreenHeight)
	}

	out := image.NewNRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))

	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			pixel := color.NRGBAModel.Convert(
				img.At(bounds.Min.X+x*factorX, bounds.Min.Y+y*factorY)).(color.NRGBA)

			out.SetNRGBA(x, y, keyPixel(pixel))
		}
	}

	return savePNG(dst, out)
}

// keyPixel maps a source pixel to the bilevel transparency-keyed palette:
// anything brighter than the near-black threshold is keyed out, the rest
// becomes opaque black.
func keyPixel(pixel color.NRGBA) color.NRGBA {
	if brighterThan(pixel, blackThreshold) {
		return pixelTransparent
	}

	return pixelBlack
}

// brighterThan orders two colors by their (R, G, B) tuples.
func brighterThan(pixel, threshold color.NRGBA) bool {
	if pixel.R != threshold.R {
		return pixel.R > threshold.R
	}

	if pixel.G != threshold.G {
		return pixel.G > threshold.G
	}

	return pixel.B > threshold.B
}

func isBlack(pixel color.NRGBA) bool {
	return pixel.R == 0 && pixel.G == 0 && pixel.B == 0
}

func isWhite(pixel color.NRGBA) bool {
	return pixel.R == 255 && pixel.G == 255 && pixel.B == 255
}

func allowedFactor(factor int) bool {
	for _, allowed := range downscaleFactors {
		if factor == allowed {
			return true
		}
	}

	return false
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}

	return img, nil
}

func savePNG(path string, img image.Image) error {
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	if err = png.Encode(file, img); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode image %s: %w", filepath.Base(path), err)
	}

	return file.Close()
}
