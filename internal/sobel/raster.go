package sobel

import "image"

// DefaultSize is the edge length of the reference rasters (4096x4096).
const DefaultSize = 4096

// minSize is the smallest raster that has at least one interior pixel.
const minSize = 3

// Raster is a square 8-bit grayscale image stored row-major.
// Pix holds exactly Size*Size samples.
type Raster struct {
	Pix  []uint8
	Size int
}

// NewRaster allocates a zeroed n x n raster.
func NewRaster(n int) *Raster {
	if n < 0 {
		n = 0
	}
	return &Raster{
		Pix:  make([]uint8, n*n),
		Size: n,
	}
}

// RasterFromBytes wraps pix as an n x n raster without copying.
// It fails with a ShapeMismatchError if len(pix) != n*n or n < 3.
func RasterFromBytes(pix []uint8, n int) (*Raster, error) {
	r := &Raster{Pix: pix, Size: n}
	if err := r.validate("raster"); err != nil {
		return nil, err
	}
	return r, nil
}

// At returns the sample at column x, row y.
func (r *Raster) At(x, y int) uint8 {
	return r.Pix[y*r.Size+x]
}

// Set writes the sample at column x, row y.
func (r *Raster) Set(x, y int, v uint8) {
	r.Pix[y*r.Size+x] = v
}

// Row returns the samples of row y. The slice aliases Pix.
func (r *Raster) Row(y int) []uint8 {
	off := y * r.Size
	return r.Pix[off : off+r.Size : off+r.Size]
}

// Bounds returns the raster rectangle, anchored at the origin.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Size, r.Size)
}

// Gray returns an image.Gray view sharing Pix with the raster.
func (r *Raster) Gray() *image.Gray {
	return &image.Gray{
		Pix:    r.Pix,
		Stride: r.Size,
		Rect:   r.Bounds(),
	}
}

func (r *Raster) validate(name string) error {
	if r == nil {
		return &ShapeMismatchError{Raster: name, Reason: "raster is nil"}
	}
	if r.Size < minSize {
		return &ShapeMismatchError{Raster: name, Want: minSize, Got: r.Size, Reason: "size below minimum"}
	}
	if len(r.Pix) != r.Size*r.Size {
		return &ShapeMismatchError{Raster: name, Want: r.Size * r.Size, Got: len(r.Pix), Reason: "buffer length does not match size"}
	}
	return nil
}
