package rawio

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/sobelpsnr/internal/sobel"
)

func gradientRaster(n int) *sobel.Raster {
	r := sobel.NewRaster(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			r.Set(x, y, uint8((x*7+y*13)%256))
		}
	}
	return r
}

func TestInferSize(t *testing.T) {
	tests := []struct {
		length int64
		want   int
		ok     bool
	}{
		{9, 3, true},
		{16, 4, true},
		{4096 * 4096, 4096, true},
		{10, 0, false},
		{0, 0, false},
	}
	for _, tc := range tests {
		got, err := InferSize(tc.length)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("InferSize(%d): expected %d, got %d (%v)", tc.length, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("InferSize(%d): expected error, got %d", tc.length, got)
		}
	}
}

func TestWriteReadRaster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "output_sobel.grey")
	want := gradientRaster(16)

	if err := WriteRaster(path, want); err != nil {
		t.Fatalf("WriteRaster failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
	if info.Size() != 256 {
		t.Errorf("Expected 256 bytes, got %d", info.Size())
	}

	for _, size := range []int{16, 0} {
		got, err := ReadRaster(path, size)
		if err != nil {
			t.Fatalf("ReadRaster(size=%d) failed: %v", size, err)
		}
		if got.Size != 16 {
			t.Errorf("Expected size 16, got %d", got.Size)
		}
		for i := range want.Pix {
			if got.Pix[i] != want.Pix[i] {
				t.Fatalf("Sample %d: expected %d, got %d", i, want.Pix[i], got.Pix[i])
			}
		}
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}

func TestReadRaster_SizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.grey")
	if err := os.WriteFile(path, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadRaster(path, 16); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Expected ErrSizeMismatch, got %v", err)
	}
	if _, err := ReadRaster(path, 10); err != nil {
		t.Errorf("Expected 10x10 to load, got %v", err)
	}

	if err := os.WriteFile(path, make([]byte, 99), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRaster(path, 0); !errors.Is(err, ErrNotSquare) {
		t.Errorf("Expected ErrNotSquare, got %v", err)
	}
}

func TestReadRaster_Missing(t *testing.T) {
	_, err := ReadRaster(filepath.Join(t.TempDir(), "golden.grey"), 4)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.png":   FormatPNG,
		"OUT.PNG":   FormatPNG,
		"edges.bmp": FormatBMP,
		"a.tif":     FormatTIFF,
		"a.tiff":    FormatTIFF,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q): expected %q, got %q (%v)", path, want, got, err)
		}
	}
	if _, err := FormatFromPath("out.jpg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

// TestExportImportRoundTrip checks that each lossless export decodes back
// to the same samples
func TestExportImportRoundTrip(t *testing.T) {
	want := gradientRaster(24)

	for _, format := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "edges."+string(format))
			if err := ExportImage(path, want, format); err != nil {
				t.Fatalf("ExportImage failed: %v", err)
			}

			got, err := ImportImage(path)
			if err != nil {
				t.Fatalf("ImportImage failed: %v", err)
			}
			if got.Size != want.Size {
				t.Fatalf("Expected size %d, got %d", want.Size, got.Size)
			}
			for i := range want.Pix {
				if got.Pix[i] != want.Pix[i] {
					t.Fatalf("Sample %d: expected %d, got %d", i, want.Pix[i], got.Pix[i])
				}
			}
		})
	}
}

func TestExportImage_UnsupportedFormat(t *testing.T) {
	err := ExportImage(filepath.Join(t.TempDir(), "x.webp"), gradientRaster(4), Format("webp"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImportImage_ColorAndNotSquare(t *testing.T) {
	dir := t.TempDir()

	// A pure white RGBA image converts to 255 everywhere
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	path := filepath.Join(dir, "white.png")
	writePNG(t, path, img)

	r, err := ImportImage(path)
	if err != nil {
		t.Fatalf("ImportImage failed: %v", err)
	}
	for i, p := range r.Pix {
		if p != 255 {
			t.Fatalf("Sample %d: expected 255, got %d", i, p)
		}
	}

	wide := image.NewGray(image.Rect(0, 0, 6, 4))
	path = filepath.Join(dir, "wide.png")
	writePNG(t, path, wide)
	if _, err := ImportImage(path); !errors.Is(err, ErrNotSquare) {
		t.Errorf("Expected ErrNotSquare, got %v", err)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
