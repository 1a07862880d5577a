package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cwbudde/sobelpsnr/internal/rawio"
	"github.com/cwbudde/sobelpsnr/internal/sobel"
	"github.com/spf13/cobra"
)

var (
	exportIn   string
	exportOut  string
	exportSize int

	importIn  string
	importOut string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a raw raster to PNG, BMP or TIFF",
	Long: `Reads a headerless 8-bit grayscale raster and writes it as an image.
The format is taken from the output file extension.`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert a square image to a raw grayscale raster",
	Long: `Decodes a PNG, JPEG, GIF, BMP or TIFF image, converts it to 8-bit grayscale
and writes the samples row-major without a header.`,
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportIn, "in", "output_sobel.grey", "Raw raster to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Image path (default: input name with .png)")
	exportCmd.Flags().IntVar(&exportSize, "size", 0, "Raster edge length N (0 infers from the file)")

	importCmd.Flags().StringVar(&importIn, "in", "", "Image to import (required)")
	importCmd.Flags().StringVar(&importOut, "out", "input.grey", "Raw raster path")
	importCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	out := exportOut
	if out == "" {
		out = strings.TrimSuffix(exportIn, filepath.Ext(exportIn)) + ".png"
	}

	r, err := rawio.ReadRaster(exportIn, exportSize)
	if err != nil {
		return err
	}
	if err := exportOutput(out, r); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", out, r.Size, r.Size)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	r, err := rawio.ImportImage(importIn)
	if err != nil {
		return err
	}
	if r.Size < 3 {
		return fmt.Errorf("image too small: %dx%d: %w", r.Size, r.Size, sobel.ErrShapeMismatch)
	}
	if err := rawio.WriteRaster(importOut, r); err != nil {
		return err
	}

	slog.Info("Imported image", "in", importIn, "out", importOut, "size", r.Size)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", importOut, r.Size, r.Size)
	return nil
}
