package media

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/gif" // so GIFs decode and are recognized as untouched
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// NativeProcessor resizes and recompresses JPEG and PNG files in pure Go.
// Re-encoding drops metadata. GIF and other formats are left untouched.
// It is safe for concurrent use.
type NativeProcessor struct {
	MaxWidth  int // 0 = unbounded
	MaxHeight int // 0 = unbounded
	Quality   int // JPEG quality 1-100, 0 = jpeg.DefaultQuality
}

// NewNativeProcessor creates a NativeProcessor.
func NewNativeProcessor(maxWidth, maxHeight, quality int) *NativeProcessor {
	return &NativeProcessor{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// Process rewrites the image at path through a temporary file in the same directory.
func (p *NativeProcessor) Process(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, format, err := decode(path)
	if err != nil {
		return err
	}
	if format != "jpeg" && format != "png" {
		return nil
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), p.MaxWidth, p.MaxHeight)
	img := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		img = dst
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		if format == "png" {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, img)
		}
		quality := p.Quality
		if quality <= 0 {
			quality = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
}

func decode(path string) (image.Image, string, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from a tree walk
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}

// writeAtomic writes through a temp file renamed over path, keeping path's
// permission bits.
func writeAtomic(path string, encode func(io.Writer) error) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".media-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := encode(bw); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing image: %w", err)
	}
	return nil
}

// Fit scales w×h down to fit inside maxW×maxH keeping the aspect ratio.
// A zero bound is unbounded; images are never enlarged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	if scale >= 1 {
		return w, h
	}
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}
