package sobel

import "math"

// Kernel is a 3x3 convolution operator indexed [row][column].
type Kernel [3][3]int32

var (
	kx = Kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	ky = Kernel{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	}
)

// HorizontalKernel returns a copy of the horizontal-gradient operator Kx.
func HorizontalKernel() Kernel { return kx }

// VerticalKernel returns a copy of the vertical-gradient operator Ky.
func VerticalKernel() Kernel { return ky }

// Apply convolves k with the 3x3 neighbourhood centred on (x, y).
// The caller guarantees 1 <= x, y <= Size-2.
func (k *Kernel) Apply(r *Raster, x, y int) int32 {
	var acc int32
	for m := -1; m <= 1; m++ {
		row := r.Pix[(y+m)*r.Size:]
		for n := -1; n <= 1; n++ {
			acc += int32(row[x+n]) * k[m+1][n+1]
		}
	}
	return acc
}

// Magnitude combines the two gradient responses into a clipped 8-bit value.
// The square root is truncated toward zero, then values above 255 clip.
func Magnitude(gx, gy int32) uint8 {
	mag := int32(math.Sqrt(float64(gx*gx + gy*gy)))
	if mag > 255 {
		return 255
	}
	return uint8(mag)
}

// convolveRow writes the Sobel magnitude for the interior columns of row y
// into dst and zeroes the two border columns. The three source rows are
// read once per column so both kernels share the loads.
func convolveRow(dst []uint8, src *Raster, y int) {
	n := src.Size
	above := src.Pix[(y-1)*n : y*n]
	mid := src.Pix[y*n : (y+1)*n]
	below := src.Pix[(y+1)*n : (y+2)*n]

	dst[0] = 0
	dst[n-1] = 0

	for x := 1; x < n-1; x++ {
		var gx, gy int32
		for c := -1; c <= 1; c++ {
			a := int32(above[x+c])
			m := int32(mid[x+c])
			b := int32(below[x+c])
			gx += a*kx[0][c+1] + m*kx[1][c+1] + b*kx[2][c+1]
			gy += a*ky[0][c+1] + m*ky[1][c+1] + b*ky[2][c+1]
		}
		dst[x] = Magnitude(gx, gy)
	}
}
