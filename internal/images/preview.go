package images

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// PreviewSize is the rough edge length a preview is reduced to.
const PreviewSize = 100

// ScaleFactor is the integer subsample factor for one axis: dim/PreviewSize
// rounded half to even, never less than 1.
func ScaleFactor(dim int) int {
	f := int(math.RoundToEven(float64(dim) / PreviewSize))
	if f < 1 {
		return 1
	}
	return f
}

// Preview decodes the image at path and subsamples it to roughly
// PreviewSize on each axis. The file on disk is never modified.
func (l *Library) Preview(path string) (image.Image, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()

	src, format, err := image.Decode(f)
	if err != nil {
		l.logger.Warn("Failed to decode image", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrImageUnavailable, path, err)
	}

	scaled := Subsample(src)
	l.logger.Debug("Preview refreshed",
		"path", path,
		"format", format,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy(),
		"preview_width", scaled.Bounds().Dx(),
		"preview_height", scaled.Bounds().Dy())
	return scaled, nil
}

// Subsample keeps every n-th pixel on each axis, n being the axis' ScaleFactor.
func Subsample(src image.Image) image.Image {
	b := src.Bounds()
	fx, fy := ScaleFactor(b.Dx()), ScaleFactor(b.Dy())
	if fx == 1 && fy == 1 {
		return src
	}

	w := (b.Dx() + fx - 1) / fx
	h := (b.Dy() + fy - 1) / fy
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
