package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/sobelpsnr/internal/sobel"
)

// RunConfig records how a run was invoked.
type RunConfig struct {
	InputPath  string `json:"inputPath"`
	GoldenPath string `json:"goldenPath"`
	OutputPath string `json:"outputPath"`
	Size       int    `json:"size"`
	Backend    string `json:"backend"`
	Workers    int    `json:"workers"`
}

// Report is the persisted outcome of one Sobel/PSNR run.
//
// JSON cannot encode +Inf, so a perfect match is stored with PSNR 0 and
// PerfectMatch set. Use Metric to recover the sentinel.
type Report struct {
	RunID          string    `json:"runId"`
	Timestamp      time.Time `json:"timestamp"`
	Config         RunConfig `json:"config"`
	SSE            uint64    `json:"sse"`
	MSE            float64   `json:"mse"`
	PSNR           float64   `json:"psnr"`
	PerfectMatch   bool      `json:"perfectMatch"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
	SSEKernel      string    `json:"sseKernel"`
}

// ReportInfo is the listing view of a report.
type ReportInfo struct {
	RunID        string    `json:"runId"`
	Timestamp    time.Time `json:"timestamp"`
	Size         int       `json:"size"`
	PSNR         float64   `json:"psnr"`
	PerfectMatch bool      `json:"perfectMatch"`
	InputPath    string    `json:"inputPath"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewReport builds a report from an engine result.
func NewReport(runID string, config RunConfig, res sobel.Result, elapsed time.Duration) *Report {
	r := &Report{
		RunID:          runID,
		Timestamp:      time.Now(),
		Config:         config,
		SSE:            res.SSE,
		MSE:            res.MSE,
		PerfectMatch:   res.PerfectMatch,
		ElapsedSeconds: elapsed.Seconds(),
		SSEKernel:      sobel.ActiveSSEKernel.String(),
	}
	if !res.PerfectMatch {
		r.PSNR = res.PSNR
	}
	return r
}

// Metric returns the PSNR, restoring the perfect-match sentinel.
func (r *Report) Metric() float64 {
	if r.PerfectMatch {
		return sobel.PerfectMatchPSNR
	}
	return r.PSNR
}

// FormatMetric renders the PSNR for humans.
func FormatMetric(psnr float64) string {
	if sobel.IsPerfectMatch(psnr) {
		return "inf (perfect match)"
	}
	return fmt.Sprintf("%g", psnr)
}

// ToInfo converts a full Report to ReportInfo.
func (r *Report) ToInfo() ReportInfo {
	return ReportInfo{
		RunID:        r.RunID,
		Timestamp:    r.Timestamp,
		Size:         r.Config.Size,
		PSNR:         r.PSNR,
		PerfectMatch: r.PerfectMatch,
		InputPath:    r.Config.InputPath,
	}
}

// Validate checks if the report has valid data.
func (r *Report) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Size < 3 {
		return &ValidationError{Field: "Config.Size", Reason: "must be at least 3"}
	}
	if r.Config.InputPath == "" {
		return &ValidationError{Field: "Config.InputPath", Reason: "cannot be empty"}
	}
	if r.Config.GoldenPath == "" {
		return &ValidationError{Field: "Config.GoldenPath", Reason: "cannot be empty"}
	}
	if r.MSE < 0 {
		return &ValidationError{Field: "MSE", Reason: "cannot be negative"}
	}
	if r.PerfectMatch != (r.SSE == 0) {
		return &ValidationError{Field: "PerfectMatch", Reason: "must be set exactly when SSE is zero"}
	}
	if r.ElapsedSeconds < 0 {
		return &ValidationError{Field: "ElapsedSeconds", Reason: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsComparable checks whether baseline measured the same golden raster at
// the same size, so the two metrics can be compared.
func (r *Report) IsComparable(baseline *Report) error {
	if r.Config.GoldenPath != baseline.Config.GoldenPath {
		return &CompatibilityError{
			Field:    "GoldenPath",
			Expected: baseline.Config.GoldenPath,
			Actual:   r.Config.GoldenPath,
		}
	}
	if r.Config.Size != baseline.Config.Size {
		return &CompatibilityError{
			Field:    "Size",
			Expected: fmt.Sprintf("%d", baseline.Config.Size),
			Actual:   fmt.Sprintf("%d", r.Config.Size),
		}
	}
	return nil
}

// CompatibilityError represents a report comparison error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
