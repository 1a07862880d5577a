package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/sobelpsnr/internal/store"
	"github.com/spf13/cobra"
)

var (
	reportsDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved run reports",
	Long: `Manage run reports written by 'run --report', including listing,
inspecting, viewing the run history and cleaning old reports.`,
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved reports",
	RunE:  runListReports,
}

var showReportCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print a saved report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the run history log",
	RunE:  runHistory,
}

var cleanReportsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old reports",
	Long: `Delete old reports based on retention policy.
You can keep only the last N reports or delete reports older than N days.`,
	RunE: runCleanReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.AddCommand(listReportsCmd)
	reportsCmd.AddCommand(showReportCmd)
	reportsCmd.AddCommand(historyCmd)
	reportsCmd.AddCommand(cleanReportsCmd)

	reportsCmd.PersistentFlags().StringVar(&reportsDataDir, "data-dir", "./data", "Base directory for run reports")

	cleanReportsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N reports (0 = keep all)")
	cleanReportsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete reports older than N days (0 = no age limit)")
	cleanReportsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListReports(cmd *cobra.Command, args []string) error {
	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reportStore.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tSIZE\tPSNR\tINPUT\tDISK")
	fmt.Fprintln(w, "------\t---------\t----\t----\t-----\t----")

	for _, info := range infos {
		size, err := getDirSize(reportStore.RunDir(info.RunID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		psnr := store.FormatMetric(info.PSNR)
		if info.PerfectMatch {
			psnr = "inf"
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(info.RunID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Size,
			psnr,
			info.InputPath,
			sizeStr,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal reports: %d\n", len(infos))
	return nil
}

func runShowReport(cmd *cobra.Command, args []string) error {
	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	report, err := reportStore.LoadReport(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries, err := store.ReadHistory(reportsDataDir)
	if err != nil {
		return err
	}
	return printHistory(cmd.OutOrStdout(), entries)
}

func printHistory(out io.Writer, entries []store.HistoryEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tRUN ID\tSIZE\tBACKEND\tWORKERS\tPSNR\tSECONDS")
	for _, e := range entries {
		psnr := fmt.Sprintf("%.4f", e.PSNR)
		if e.PerfectMatch {
			psnr = "inf"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\t%.4f\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			shortID(e.RunID),
			e.Size,
			e.Backend,
			e.Workers,
			psnr,
			e.ElapsedSeconds,
		)
	}
	return w.Flush()
}

func runCleanReports(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	reportStore, err := store.NewFSStore(reportsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reportStore.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports to clean.")
		return nil
	}

	toDelete := selectReportsForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No reports match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d report(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s)\n", shortID(info.RunID), info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := reportStore.DeleteReport(info.RunID); err != nil {
			slog.Error("Failed to delete report", "run_id", info.RunID, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted report", "run_id", info.RunID)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d report(s), %d failed.\n", deleted, failed)
	return nil
}

// selectReportsForDeletion applies the retention policy: reports older
// than olderThanDays, plus the oldest reports beyond the newest keepLast.
// A zero value disables the corresponding rule.
func selectReportsForDeletion(infos []store.ReportInfo, keepLast, olderThanDays int, now time.Time) []store.ReportInfo {
	var toDelete []store.ReportInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.ReportInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
