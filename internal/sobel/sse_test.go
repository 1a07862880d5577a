package sobel

import (
	"fmt"
	"math/rand"
	"testing"
)

func randomBytes(n int, seed int64) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]uint8, n)
	for i := range buf {
		buf[i] = uint8(rng.Intn(256))
	}
	return buf
}

// TestSSE_Identical tests that SSE of identical buffers is zero
func TestSSE_Identical(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 64, 4096} {
		buf := randomBytes(n, 42)
		if got := SSE(buf, buf); got != 0 {
			t.Errorf("n=%d: expected 0, got %d", n, got)
		}
	}
}

// TestSSE_MaxDifference tests white vs black
func TestSSE_MaxDifference(t *testing.T) {
	white := make([]uint8, 100)
	black := make([]uint8, 100)
	for i := range white {
		white[i] = 255
	}
	if got := SSE(white, black); got != 100*65025 {
		t.Errorf("Expected %d, got %d", 100*65025, got)
	}
}

// TestSSE_LengthMismatch tests that only the common prefix is compared
func TestSSE_LengthMismatch(t *testing.T) {
	a := []uint8{1, 2, 3, 4}
	b := []uint8{0, 0}
	if got := SSE(a, b); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
	if got := SSE(b, a); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
}

// TestSSE_KernelEquivalence tests unrolled against naive on sizes that
// exercise the remainder loop
func TestSSE_KernelEquivalence(t *testing.T) {
	for _, n := range []int{1, 7, 8, 15, 16, 17, 255, 1000, 4096} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			a := randomBytes(n, int64(n))
			b := randomBytes(n, int64(n)+100)

			naive := sseNaive(a, b)
			unrolled := sseUnrolled(a, b)
			if naive != unrolled {
				t.Errorf("naive=%d unrolled=%d", naive, unrolled)
			}
			if !CompareSSEKernels(a, b) {
				t.Errorf("Active kernel %s differs from naive", ActiveSSEKernel)
			}
		})
	}
}

func TestSSEKernelString(t *testing.T) {
	if SSEKernelNaive.String() != "naive" || SSEKernelUnrolled.String() != "unrolled" {
		t.Error("Unexpected kernel names")
	}
	if SSEKernel(42).String() != "unknown" {
		t.Error("Expected unknown for out-of-range kernel")
	}
	if fastSSE == nil {
		t.Fatal("fastSSE not initialized")
	}
}

func BenchmarkSSE(b *testing.B) {
	a := randomBytes(4096, 1)
	c := randomBytes(4096, 2)

	kernels := map[string]func(a, b []uint8) uint64{
		"naive":    sseNaive,
		"unrolled": sseUnrolled,
	}
	for name, fn := range kernels {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(a)))
			for i := 0; i < b.N; i++ {
				fn(a, c)
			}
		})
	}
}
