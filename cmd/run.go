package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/sobelpsnr/internal/rawio"
	"github.com/cwbudde/sobelpsnr/internal/sobel"
	"github.com/cwbudde/sobelpsnr/internal/store"
	"github.com/spf13/cobra"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	inputPath  string
	goldenPath string
	outPath    string
	imagePath  string
	size       int
	backend    string
	workers    int
	saveReport bool
	dataDir    string
	baseline   string
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply the Sobel filter and report PSNR against the golden raster",
	Long: `Reads the input and golden rasters, computes the Sobel gradient magnitude,
writes the output raster and prints the PSNR between output and golden.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := executeRun(runOpts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.inputPath, "input", "input.grey", "Input raster path")
	runCmd.Flags().StringVar(&runOpts.goldenPath, "golden", "golden.grey", "Golden raster path")
	runCmd.Flags().StringVar(&runOpts.outPath, "out", "output_sobel.grey", "Output raster path")
	runCmd.Flags().StringVar(&runOpts.imagePath, "image", "", "Also export the output as an image (.png, .bmp, .tif)")
	runCmd.Flags().IntVar(&runOpts.size, "size", sobel.DefaultSize, "Raster edge length N (0 infers from the input file)")
	runCmd.Flags().StringVar(&runOpts.backend, "backend", "parallel", "Engine backend: serial, parallel")
	runCmd.Flags().IntVar(&runOpts.workers, "workers", 0, "Parallel workers (0 = GOMAXPROCS)")
	runCmd.Flags().BoolVar(&runOpts.saveReport, "report", false, "Persist a run report and history entry")
	runCmd.Flags().StringVar(&runOpts.dataDir, "data-dir", "./data", "Base directory for run reports")
	runCmd.Flags().StringVar(&runOpts.baseline, "baseline", "", "Run ID of a saved report to compare against")

	rootCmd.AddCommand(runCmd)
}

// executeRun performs one Sobel/PSNR run and returns its report.
func executeRun(opts runOptions, out io.Writer) (*store.Report, error) {
	engine, err := sobel.NewEngine(sobel.Config{
		Backend: sobel.Backend(opts.backend),
		Workers: opts.workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	input, err := rawio.ReadRaster(opts.inputPath, opts.size)
	if err != nil {
		return nil, err
	}
	golden, err := rawio.ReadRaster(opts.goldenPath, input.Size)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting Sobel run", append(engine.Describe(), "input", opts.inputPath, "size", input.Size)...)

	output := sobel.NewRaster(input.Size)

	start := time.Now()
	res, err := engine.Compute(input, golden, output)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to compute: %w", err)
	}

	fmt.Fprintf(out, "Total time = %10g seconds\n", elapsed.Seconds())

	if err := rawio.WriteRaster(opts.outPath, output); err != nil {
		return nil, err
	}
	if opts.imagePath != "" {
		if err := exportOutput(opts.imagePath, output); err != nil {
			return nil, err
		}
	}

	config := store.RunConfig{
		InputPath:  opts.inputPath,
		GoldenPath: opts.goldenPath,
		OutputPath: opts.outPath,
		Size:       input.Size,
		Backend:    string(engine.Backend()),
		Workers:    engine.Workers(),
	}
	report := store.NewReport(store.NewRunID(), config, res, elapsed)

	slog.Info("Sobel run complete",
		"run_id", report.RunID,
		"elapsed", elapsed,
		"sse", res.SSE,
		"mse", res.MSE,
		"psnr", store.FormatMetric(res.PSNR),
		"perfect_match", res.PerfectMatch,
	)

	fmt.Fprintf(out, "PSNR of original Sobel and computed Sobel image: %s\n", store.FormatMetric(res.PSNR))
	fmt.Fprintf(out, "A visualization of the sobel filter can be found at %s\n", visualizationHint(opts))

	if opts.saveReport || opts.baseline != "" {
		if err := persistReport(opts, report, out); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func exportOutput(path string, output *sobel.Raster) error {
	format, err := rawio.FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := rawio.ExportImage(path, output, format); err != nil {
		return fmt.Errorf("failed to export image: %w", err)
	}
	slog.Info("Exported output image", "path", path, "format", format)
	return nil
}

func visualizationHint(opts runOptions) string {
	if opts.imagePath != "" {
		return opts.imagePath
	}
	return fmt.Sprintf("%s, or run 'sobelpsnr export --in %s' to get a png", opts.outPath, opts.outPath)
}

// persistReport saves the report, appends history and compares against a
// baseline when one was requested.
func persistReport(opts runOptions, report *store.Report, out io.Writer) error {
	reportStore, err := store.NewFSStore(opts.dataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	if opts.baseline != "" {
		base, err := reportStore.LoadReport(opts.baseline)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		if err := report.IsComparable(base); err != nil {
			return fmt.Errorf("baseline %s is not comparable: %w", opts.baseline, err)
		}
		fmt.Fprintf(out, "Baseline %s: %s\n", opts.baseline, describeDelta(report, base))
	}

	if !opts.saveReport {
		return nil
	}

	if err := reportStore.SaveReport(report.RunID, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	if err := store.AppendHistory(opts.dataDir, store.HistoryEntryFromReport(report)); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	slog.Info("Report saved", "run_id", report.RunID, "dir", reportStore.RunDir(report.RunID))
	fmt.Fprintf(out, "Report: %s\n", report.RunID)
	return nil
}

// describeDelta summarises how report's metric moved relative to base.
func describeDelta(report, base *store.Report) string {
	switch {
	case report.PerfectMatch && base.PerfectMatch:
		return "both perfect matches"
	case report.PerfectMatch:
		return fmt.Sprintf("improved from %g dB to perfect match", base.PSNR)
	case base.PerfectMatch:
		return fmt.Sprintf("regressed from perfect match to %g dB", report.PSNR)
	default:
		return fmt.Sprintf("%+.4f dB (%g -> %g)", report.PSNR-base.PSNR, base.PSNR, report.PSNR)
	}
}
