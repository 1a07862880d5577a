package sobel

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config selects the engine's scheduling.
type Config struct {
	Backend Backend
	Workers int // <= 0 uses GOMAXPROCS; ignored by the serial backend
}

// Result holds the fidelity metric of one Compute call.
type Result struct {
	SSE          uint64  // Sum of squared differences over all N*N pixels
	MSE          float64 // SSE / (N*N)
	PSNR         float64 // dB, or PerfectMatchPSNR
	PerfectMatch bool    // MSE == 0
	Pixels       int
}

// Engine applies the Sobel operator and measures PSNR against a golden
// raster in a single pass. An Engine holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	backend Backend
	workers int
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	backend := NormalizeBackend(string(cfg.Backend))
	if !backend.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if backend == BackendSerial {
		workers = 1
	}

	return &Engine{backend: backend, workers: workers}, nil
}

// Backend returns the engine's scheduling backend.
func (e *Engine) Backend() Backend { return e.backend }

// Workers returns the number of row bands processed concurrently.
func (e *Engine) Workers() int { return e.workers }

// Describe returns attributes for structured logging.
func (e *Engine) Describe() []any {
	return []any{
		"backend", string(e.backend),
		"workers", e.workers,
		"sse_kernel", ActiveSSEKernel.String(),
	}
}

// Compute writes the Sobel magnitude of input into output and returns the
// PSNR of output against golden. All three rasters must be N x N with the
// same N >= 3. The border of output is set to zero and the MSE runs over
// every pixel, border included.
func (e *Engine) Compute(input, golden, output *Raster) (Result, error) {
	if err := checkShapes(input, golden); err != nil {
		return Result{}, err
	}
	if err := checkOutput(input, output); err != nil {
		return Result{}, err
	}

	n := input.Size
	bands := e.bands(n)
	partial := make([]uint64, len(bands))

	if len(bands) == 1 {
		partial[0] = processBand(input, golden, output, bands[0].start, bands[0].end)
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, b := range bands {
			i, b := i, b
			g.Go(func() error {
				partial[i] = processBand(input, golden, output, b.start, b.end)
				return nil
			})
		}
		// Bands never fail; Wait is the barrier.
		_ = g.Wait()
	}

	// Integer partial sums: the total is independent of band order.
	var sse uint64
	for _, s := range partial {
		sse += s
	}

	pixels := n * n
	mse := MSE(sse, pixels)
	res := Result{
		SSE:          sse,
		MSE:          mse,
		PSNR:         PSNR(mse),
		PerfectMatch: sse == 0,
		Pixels:       pixels,
	}

	slog.Debug("Sobel pass complete",
		append(e.Describe(), "size", n, "bands", len(bands), "sse", sse, "perfect_match", res.PerfectMatch)...)

	return res, nil
}

// Compute runs a parallel engine with default settings, allocating the
// output raster on the caller's behalf.
func Compute(input, golden *Raster) (*Raster, Result, error) {
	if err := checkShapes(input, golden); err != nil {
		return nil, Result{}, err
	}
	e, err := NewEngine(Config{Backend: BackendParallel})
	if err != nil {
		return nil, Result{}, err
	}
	output := NewRaster(input.Size)
	res, err := e.Compute(input, golden, output)
	if err != nil {
		return nil, Result{}, err
	}
	return output, res, nil
}

type band struct {
	start, end int // rows [start, end)
}

// bands partitions rows [0, n) into contiguous chunks, one per worker.
func (e *Engine) bands(n int) []band {
	workers := min(e.workers, n)
	if workers <= 1 {
		return []band{{0, n}}
	}

	chunk := (n + workers - 1) / workers
	out := make([]band, 0, workers)
	for start := 0; start < n; start += chunk {
		out = append(out, band{start, min(start+chunk, n)})
	}
	return out
}

// processBand fills output rows [start, end) and returns their SSE
// against golden.
func processBand(input, golden, output *Raster, start, end int) uint64 {
	n := input.Size
	var sse uint64
	for y := start; y < end; y++ {
		dst := output.Row(y)
		if y == 0 || y == n-1 {
			clear(dst)
		} else {
			convolveRow(dst, input, y)
		}
		sse += fastSSE(dst, golden.Row(y))
	}
	return sse
}

// checkShapes validates input and golden against each other.
func checkShapes(input, golden *Raster) error {
	if err := input.validate("input"); err != nil {
		return err
	}
	if err := golden.validate("golden"); err != nil {
		return err
	}
	if golden.Size != input.Size {
		return &ShapeMismatchError{Raster: "golden", Want: input.Size, Got: golden.Size, Reason: "size differs from input"}
	}
	return nil
}

func checkOutput(input, output *Raster) error {
	if err := output.validate("output"); err != nil {
		return err
	}
	if output.Size != input.Size {
		return &ShapeMismatchError{Raster: "output", Want: input.Size, Got: output.Size, Reason: "size differs from input"}
	}
	return nil
}
