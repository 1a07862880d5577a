package sobel

import "math"

// peakSquared is the PSNR numerator. It is 256^2 rather than 255^2 to
// stay comparable with the golden metrics of the reference tool.
const peakSquared = 65536.0

// PerfectMatchPSNR is returned when output and golden are identical and
// the MSE is exactly zero.
var PerfectMatchPSNR = math.Inf(1)

// IsPerfectMatch reports whether psnr is the perfect-match sentinel.
func IsPerfectMatch(psnr float64) bool {
	return math.IsInf(psnr, 1)
}

// MSE returns sse / pixels. It returns 0 for an empty domain.
func MSE(sse uint64, pixels int) float64 {
	if pixels <= 0 {
		return 0
	}
	return float64(sse) / float64(pixels)
}

// PSNR returns 10*log10(65536/mse), or PerfectMatchPSNR when mse is 0.
func PSNR(mse float64) float64 {
	if mse == 0 {
		return PerfectMatchPSNR
	}
	return 10 * math.Log10(peakSquared/mse)
}
