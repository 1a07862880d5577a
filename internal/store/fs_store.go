package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Reports are stored in a directory structure: <baseDir>/runs/<runID>/
//
// Thread-safety: This implementation uses atomic file operations (rename)
// and does not require locks. Multiple goroutines can safely call methods
// concurrently.
type FSStore struct {
	baseDir string // Root directory for all report data (e.g., "./data")
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// runDir returns the directory path for a given run ID.
func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, "runs", runID)
}

// reportPath returns the path to the report.json file for a run.
func (fs *FSStore) reportPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "report.json")
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

// RunDir returns the directory holding the artifacts of a run.
func (fs *FSStore) RunDir(runID string) string {
	return fs.runDir(runID)
}

// SaveReport atomically saves a report for the given run.
// Uses temp file + rename so readers never observe a partial report.
func (fs *FSStore) SaveReport(runID string, report *Report) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	runDir := fs.runDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tempPath := fs.reportPath(runID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}

	finalPath := fs.reportPath(runID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	slog.Debug("Report saved", "run_id", runID, "path", finalPath)
	return nil
}

// LoadReport retrieves the report for the given run.
func (fs *FSStore) LoadReport(runID string) (*Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := fs.reportPath(runID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}

	slog.Debug("Report loaded", "run_id", runID, "path", path)
	return &report, nil
}

// ListReports returns metadata for all available reports, oldest first.
func (fs *FSStore) ListReports() ([]ReportInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if os.IsNotExist(err) {
		return []ReportInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []ReportInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		report, err := fs.LoadReport(runID)
		if errors.Is(err, ErrNotFound) {
			continue // Directory without report.json
		}
		if err != nil {
			slog.Warn("Failed to load report for listing", "run_id", runID, "error", err)
			continue
		}

		infos = append(infos, report.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})

	slog.Debug("Listed reports", "count", len(infos))
	return infos, nil
}

// DeleteReport removes the run directory and everything in it.
func (fs *FSStore) DeleteReport(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	runDir := fs.runDir(runID)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Report deleted", "run_id", runID, "path", runDir)
	return nil
}
