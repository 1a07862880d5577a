package rawio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/cwbudde/sobelpsnr/internal/sobel"
)

// Format is an image container for export.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromPath derives the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ExportImage encodes r as a grayscale image in the given format.
func ExportImage(path string, r *sobel.Raster, format Format) error {
	if r == nil {
		return fmt.Errorf("raster cannot be nil")
	}

	var encode func(f *os.File, img image.Image) error
	switch format {
	case FormatPNG:
		encode = func(f *os.File, img image.Image) error { return png.Encode(f, img) }
	case FormatBMP:
		encode = func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }
	case FormatTIFF:
		encode = func(f *os.File, img image.Image) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	gray := r.Gray()
	return writeAtomic(path, func(f *os.File) error {
		return encode(f, gray)
	})
}

// ImportImage decodes a PNG, JPEG, GIF, BMP or TIFF file and converts it
// to an 8-bit grayscale raster. The image must be square.
func ImportImage(path string) (*sobel.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return ToRaster(img)
}

// ToRaster converts img to grayscale using the standard luma weights.
func ToRaster(img image.Image) (*sobel.Raster, error) {
	bounds := img.Bounds()
	if bounds.Dx() != bounds.Dy() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, bounds.Dx(), bounds.Dy())
	}

	r := sobel.NewRaster(bounds.Dx())
	dst := r.Gray()

	if g, ok := img.(*image.Gray); ok {
		draw.Draw(dst, dst.Rect, g, bounds.Min, draw.Src)
		return r, nil
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			dst.SetGray(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return r, nil
}
