package sobel

import (
	"log/slog"

	"golang.org/x/sys/cpu"
)

// SSE (sum of squared differences) row kernels with runtime dispatch.
//
// Both kernels accumulate in integers, so they agree exactly. The unrolled
// kernel is selected on CPUs with wide out-of-order cores (AVX2 on x86-64,
// ASIMD on arm64), where the independent accumulators keep more ALUs busy;
// everything else uses the naive loop.

// SSEKernel indicates which SSE row kernel is active.
type SSEKernel int

const (
	SSEKernelNaive    SSEKernel = iota // One pixel per iteration
	SSEKernelUnrolled                  // Eight pixels per iteration, four accumulators
)

func (k SSEKernel) String() string {
	switch k {
	case SSEKernelNaive:
		return "naive"
	case SSEKernelUnrolled:
		return "unrolled"
	default:
		return "unknown"
	}
}

// ActiveSSEKernel reports which kernel was selected at initialization.
var ActiveSSEKernel SSEKernel

// fastSSE is the runtime-dispatched row kernel. Set by init().
var fastSSE func(a, b []uint8) uint64

func init() {
	switch {
	case cpu.X86.HasAVX2:
		ActiveSSEKernel = SSEKernelUnrolled
		fastSSE = sseUnrolled
		slog.Debug("SSE kernel initialized", "kernel", "unrolled", "cpu", "AVX2")
	case cpu.ARM64.HasASIMD:
		ActiveSSEKernel = SSEKernelUnrolled
		fastSSE = sseUnrolled
		slog.Debug("SSE kernel initialized", "kernel", "unrolled", "cpu", "ASIMD")
	default:
		ActiveSSEKernel = SSEKernelNaive
		fastSSE = sseNaive
		slog.Debug("SSE kernel initialized", "kernel", "naive", "reason", "no wide-issue CPU features")
	}
}

// CPUFeatures lists the CPU features relevant to kernel selection.
func CPUFeatures() []string {
	var features []string
	if cpu.X86.HasSSE2 {
		features = append(features, "sse2")
	}
	if cpu.X86.HasAVX2 {
		features = append(features, "avx2")
	}
	if cpu.X86.HasAVX512F {
		features = append(features, "avx512f")
	}
	if cpu.ARM64.HasASIMD {
		features = append(features, "asimd")
	}
	if cpu.ARM64.HasSVE {
		features = append(features, "sve")
	}
	return features
}

// SSE returns the sum of squared differences between a and b.
// Only the first min(len(a), len(b)) samples are compared.
func SSE(a, b []uint8) uint64 {
	if len(b) < len(a) {
		a = a[:len(b)]
	}
	return fastSSE(a, b[:len(a)])
}

// sseNaive is the reference implementation used for validation.
func sseNaive(a, b []uint8) uint64 {
	var sum uint64
	for i := range a {
		d := int32(a[i]) - int32(b[i])
		sum += uint64(d * d)
	}
	return sum
}

// sseUnrolled processes eight samples per iteration into four accumulators.
// A single uint32 accumulator takes two squared differences per iteration,
// so it holds at most 2*65025 before being folded into the uint64 total.
func sseUnrolled(a, b []uint8) uint64 {
	n := len(a)
	b = b[:n]

	var sum uint64
	i := 0
	for ; i+8 <= n; i += 8 {
		d0 := int32(a[i+0]) - int32(b[i+0])
		d1 := int32(a[i+1]) - int32(b[i+1])
		d2 := int32(a[i+2]) - int32(b[i+2])
		d3 := int32(a[i+3]) - int32(b[i+3])
		d4 := int32(a[i+4]) - int32(b[i+4])
		d5 := int32(a[i+5]) - int32(b[i+5])
		d6 := int32(a[i+6]) - int32(b[i+6])
		d7 := int32(a[i+7]) - int32(b[i+7])

		s0 := uint32(d0*d0 + d4*d4)
		s1 := uint32(d1*d1 + d5*d5)
		s2 := uint32(d2*d2 + d6*d6)
		s3 := uint32(d3*d3 + d7*d7)

		sum += uint64(s0) + uint64(s1) + uint64(s2) + uint64(s3)
	}

	// Remainder (0-7 samples)
	for ; i < n; i++ {
		d := int32(a[i]) - int32(b[i])
		sum += uint64(d * d)
	}

	return sum
}

// CompareSSEKernels checks that the active kernel agrees with the naive
// reference on a and b.
func CompareSSEKernels(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	return sseNaive(a, b) == fastSSE(a, b)
}
