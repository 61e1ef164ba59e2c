package heatmap

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// SideBySide scales left and right into the two halves of a width×height
// canvas. A nil image leaves its half blank.
func SideBySide(width, height int, left, right image.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(out, out.Bounds(), colorBackground)
	half := width / 2
	for i, src := range []image.Image{left, right} {
		if src == nil {
			continue
		}
		dst := image.Rect(i*half, 0, i*half+half, height)
		xdraw.ApproxBiLinear.Scale(out, dst, src, src.Bounds(), xdraw.Src, nil)
	}
	return out
}

// FileName is the conventional file name for a finished map.
func FileName(modality string) string {
	return "heatmap_" + modality + ".png"
}

// WritePNG encodes img to path, creating parent directories, and returns the
// number of bytes written.
func WritePNG(path string, img image.Image) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create plot dir: %w", err)
	}
	f, err := os.Create(path) // #nosec G304 -- caller chooses the output path
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return info.Size(), nil
}
