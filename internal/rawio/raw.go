// Package rawio reads and writes headerless 8-bit grayscale rasters and
// converts them to and from common image formats.
package rawio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/sobelpsnr/internal/sobel"
)

var (
	// ErrSizeMismatch is returned when a raw file does not hold exactly N*N samples.
	ErrSizeMismatch = errors.New("raw raster size mismatch")
	// ErrNotSquare is returned when an image or inferred raster is not N x N.
	ErrNotSquare = errors.New("raster is not square")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// InferSize returns N for a raw buffer of length n*n bytes.
func InferSize(length int64) (int, error) {
	if length <= 0 {
		return 0, fmt.Errorf("%w: empty file", ErrSizeMismatch)
	}
	n := int64(math.Sqrt(float64(length)))
	// Correct for float error around large perfect squares
	for n*n > length {
		n--
	}
	for (n+1)*(n+1) <= length {
		n++
	}
	if n*n != length {
		return 0, fmt.Errorf("%w: %d bytes is not a perfect square", ErrNotSquare, length)
	}
	return int(n), nil
}

// ReadRaster loads a raw row-major raster of size x size bytes.
// A size of 0 infers the size from the file length.
func ReadRaster(path string, size int) (*sobel.Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raster %s: %w", path, err)
	}

	if size == 0 {
		size, err = InferSize(int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to infer size of %s: %w", path, err)
		}
	}

	if len(data) != size*size {
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d (%dx%d)",
			ErrSizeMismatch, path, len(data), size*size, size, size)
	}

	r, err := sobel.RasterFromBytes(data, size)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap raster %s: %w", path, err)
	}

	slog.Debug("Raster loaded", "path", path, "size", size)
	return r, nil
}

// WriteRaster writes r as raw bytes. It writes to a temporary file first
// and renames it into place.
func WriteRaster(path string, r *sobel.Raster) error {
	if r == nil {
		return fmt.Errorf("raster cannot be nil")
	}
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(r.Pix)
		return err
	})
}

// writeAtomic creates path via a temp file in the same directory + rename.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename output file: %w", err)
	}

	slog.Debug("File written", "path", path)
	return nil
}
