package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRunApplyPreset(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeTestPNG(t, in, 24, 16)

	if err := runApply([]string{"-in", in, "-out", out, "-preset", "bw", "-max", "12"}); err != nil {
		t.Fatalf("runApply: %v", err)
	}
	img, err := loadRGBA(out, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 12 || b.Dy() != 8 {
		t.Errorf("expected 12x8 thumbnail, got %v", b)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, bl := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		if r != g || g != bl {
			t.Fatalf("pixel %d not gray after mono preset: %d %d %d", i/4, r, g, bl)
		}
	}
}

func TestRunApplyErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeTestPNG(t, in, 4, 4)
	tests := []struct {
		name string
		args []string
	}{
		{"missing out", []string{"-in", in}},
		{"unknown preset", []string{"-in", in, "-out", filepath.Join(dir, "a.png"), "-preset", "sparkle"}},
		{"exclusive flags", []string{"-in", in, "-out", filepath.Join(dir, "b.png"), "-preset", "bw", "-filter", "sepia(1)"}},
		{"bad extension", []string{"-in", in, "-out", filepath.Join(dir, "c.bmp"), "-filter", "sepia(1)"}},
		{"missing input", []string{"-in", filepath.Join(dir, "nope.png"), "-out", filepath.Join(dir, "d.png")}},
	}
	for _, tt := range tests {
		if err := runApply(tt.args); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestRunApplyUnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bmp")
	// The input does not exist: the output format must be rejected before decoding.
	err := runApply([]string{"-in", filepath.Join(dir, "missing.png"), "-out", out, "-filter", "sepia(1)"})
	if err == nil {
		t.Fatal("expected error for .bmp output")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("input was opened before output format was checked: %v", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unsupported output left a file behind: stat err=%v", err)
	}

	in := filepath.Join(dir, "in.png")
	writeTestPNG(t, in, 4, 4)
	if err := runApply([]string{"-in", in, "-out", out, "-filter", "sepia(1)"}); err == nil {
		t.Fatal("expected error for .bmp output")
	}
	if _, err := os.Stat(out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unsupported output left a file behind: stat err=%v", err)
	}
}
