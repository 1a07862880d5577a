package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// HistoryEntry is one line of the run history log.
// Each entry is serialized as a JSON line in history.jsonl.
type HistoryEntry struct {
	RunID          string    `json:"runId"`
	Timestamp      time.Time `json:"timestamp"`
	Size           int       `json:"size"`
	Backend        string    `json:"backend"`
	Workers        int       `json:"workers"`
	PSNR           float64   `json:"psnr"`
	PerfectMatch   bool      `json:"perfectMatch"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
}

// HistoryEntryFromReport extracts the history line for a report.
func HistoryEntryFromReport(r *Report) HistoryEntry {
	return HistoryEntry{
		RunID:          r.RunID,
		Timestamp:      r.Timestamp,
		Size:           r.Config.Size,
		Backend:        r.Config.Backend,
		Workers:        r.Config.Workers,
		PSNR:           r.PSNR,
		PerfectMatch:   r.PerfectMatch,
		ElapsedSeconds: r.ElapsedSeconds,
	}
}

func historyPath(baseDir string) string {
	return filepath.Join(baseDir, "history.jsonl")
}

// HistoryWriter appends entries to <baseDir>/history.jsonl.
// It uses buffered I/O and is safe for concurrent use.
type HistoryWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewHistoryWriter opens the history log for appending, creating it if needed.
func NewHistoryWriter(baseDir string) (*HistoryWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	path := historyPath(baseDir)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}

	return &HistoryWriter{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   path,
	}, nil
}

// Write appends an entry. It is buffered until Flush or Close.
func (hw *HistoryWriter) Write(entry HistoryEntry) error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	if _, err := hw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	if err := hw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes buffered entries and syncs the file.
func (hw *HistoryWriter) Flush() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush history writer: %w", err)
	}
	if err := hw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the file.
func (hw *HistoryWriter) Close() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		hw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := hw.file.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the history file.
func (hw *HistoryWriter) Path() string {
	return hw.path
}

// AppendHistory writes a single entry and closes the log.
func AppendHistory(baseDir string, entry HistoryEntry) error {
	hw, err := NewHistoryWriter(baseDir)
	if err != nil {
		return err
	}
	if err := hw.Write(entry); err != nil {
		hw.Close()
		return err
	}
	return hw.Close()
}

// ReadHistory returns all entries of <baseDir>/history.jsonl in file order.
// A missing file yields an empty slice.
func ReadHistory(baseDir string) ([]HistoryEntry, error) {
	f, err := os.Open(historyPath(baseDir))
	if os.IsNotExist(err) {
		return []HistoryEntry{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	return decodeHistory(f)
}

func decodeHistory(r io.Reader) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}
