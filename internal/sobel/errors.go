package sobel

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch matches any *ShapeMismatchError.
// Use errors.Is(err, ErrShapeMismatch) to check for it.
var ErrShapeMismatch = &ShapeMismatchError{}

// ErrUnknownBackend is returned when a backend name is not recognised.
var ErrUnknownBackend = errors.New("unknown sobel backend")

// ShapeMismatchError reports rasters whose dimensions disagree or are
// too small to hold an interior pixel.
type ShapeMismatchError struct {
	Raster string // input, golden or output
	Want   int
	Got    int
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	if e.Raster == "" {
		return "raster shape mismatch"
	}
	if e.Want == 0 && e.Got == 0 {
		return fmt.Sprintf("raster shape mismatch: %s: %s", e.Raster, e.Reason)
	}
	return fmt.Sprintf("raster shape mismatch: %s: %s (want %d, got %d)", e.Raster, e.Reason, e.Want, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool {
	_, ok := target.(*ShapeMismatchError)
	return ok
}
