package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{name: "fits", w: 100, h: 50, maxW: 200, maxH: 200, wantW: 100, wantH: 50},
		{name: "too wide", w: 400, h: 200, maxW: 100, maxH: 100, wantW: 100, wantH: 50},
		{name: "too tall", w: 200, h: 400, maxW: 100, maxH: 100, wantW: 50, wantH: 100},
		{name: "height bound only", w: 1000, h: 500, maxW: 0, maxH: 250, wantW: 500, wantH: 250},
		{name: "unbounded", w: 5000, h: 5000, wantW: 5000, wantH: 5000},
		{name: "thin strip keeps one pixel", w: 10000, h: 1, maxW: 100, maxH: 100, wantW: 100, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	return img
}

func writeImage(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := encode(f); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func dimensions(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNativeProcessor_Process(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bigPNG := filepath.Join(dir, "big.png")
	smallPNG := filepath.Join(dir, "small.png")
	photo := filepath.Join(dir, "photo.jpg")

	writeImage(t, bigPNG, func(f *os.File) error { return png.Encode(f, solid(400, 200)) })
	writeImage(t, smallPNG, func(f *os.File) error { return png.Encode(f, solid(60, 30)) })
	writeImage(t, photo, func(f *os.File) error { return jpeg.Encode(f, solid(300, 300), nil) })

	proc := NewNativeProcessor(100, 100, 70)
	for _, p := range []string{bigPNG, smallPNG, photo} {
		if err := proc.Process(context.Background(), p); err != nil {
			t.Fatalf("Process(%s) error = %v", filepath.Base(p), err)
		}
	}

	for path, want := range map[string][2]int{
		bigPNG:   {100, 50},
		smallPNG: {60, 30},
		photo:    {100, 100},
	} {
		w, h := dimensions(t, path)
		if w != want[0] || h != want[1] {
			t.Errorf("%s = %dx%d, want %dx%d", filepath.Base(path), w, h, want[0], want[1])
		}
	}
}

func TestNativeProcessor_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() []byte {
		path := filepath.Join(t.TempDir(), "img.jpg")
		writeImage(t, path, func(f *os.File) error { return jpeg.Encode(f, solid(250, 120), nil) })
		if err := NewNativeProcessor(100, 100, 80).Process(context.Background(), path); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return data
	}

	if !bytes.Equal(run(), run()) {
		t.Error("processing the same input twice gave different bytes")
	}
}

func TestNativeProcessor_GIFUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "anim.gif")
	writeImage(t, path, func(f *os.File) error { return gif.Encode(f, solid(300, 300), nil) })
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if err := NewNativeProcessor(100, 100, 80).Process(context.Background(), path); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("GIF was rewritten")
	}
}

func TestNativeProcessor_CorruptImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := NewNativeProcessor(100, 100, 80).Process(context.Background(), path); err == nil {
		t.Error("expected decode error")
	}
}
