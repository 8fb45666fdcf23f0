package testsupport

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Entry is a named payload written into a test archive.
type Entry struct {
	Name string
	Data []byte
}

// WriteCBZ creates a zip archive at path holding entries in order.
func WriteCBZ(t testing.TB, path string, entries ...Entry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			t.Fatalf("create entry %s: %v", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			t.Fatalf("write entry %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Pages returns one entry per variant, named 01.png, 02.png, and so on.
func Pages(t testing.TB, variants ...uint64) []Entry {
	t.Helper()

	entries := make([]Entry, 0, len(variants))
	for i, v := range variants {
		entries = append(entries, Entry{
			Name: pageName(i + 1),
			Data: PNG(t, v),
		})
	}
	return entries
}

func pageName(n int) string {
	return string([]byte{'0' + byte(n/10%10), '0' + byte(n%10)}) + ".png"
}

const (
	pngSize  = 64
	pngBlock = pngSize / 8
)

// PNG renders a 64x64 image made of an 8x8 grid of black or white blocks.
// Each variant produces a different block pattern, so distinct variants
// produce distinct average hashes and equal variants produce identical bytes.
func PNG(t testing.TB, variant uint64) []byte {
	t.Helper()

	bits := splitmix(variant)
	// Keep at least one block of each shade so the mean splits the grid.
	bits = (bits | 1) &^ (1 << 63)

	img := image.NewGray(image.Rect(0, 0, pngSize, pngSize))
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			shade := color.Gray{Y: 0}
			if bits&(1<<uint(by*8+bx)) != 0 {
				shade = color.Gray{Y: 255}
			}
			for y := by * pngBlock; y < (by+1)*pngBlock; y++ {
				for x := bx * pngBlock; x < (bx+1)*pngBlock; x++ {
					img.SetGray(x, y, shade)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func splitmix(seed uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
