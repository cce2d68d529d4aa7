package inspect

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
)

const gap = 2

// RenderPair draws two square grayscale images side by side, separated by a
// white gap. Values are pixel intensities on the 0..255 scale and are
// clamped.
func RenderPair(w io.Writer, left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("%w: images have %d and %d pixels", ErrInvalidArgument, len(left), len(right))
	}
	side := int(math.Sqrt(float64(len(left))))
	if side == 0 || side*side != len(left) {
		return fmt.Errorf("%w: %d pixels do not form a square", ErrInvalidArgument, len(left))
	}

	img := image.NewGray(image.Rect(0, 0, 2*side+gap, side))
	for y := 0; y < side; y++ {
		for x := 0; x < gap; x++ {
			img.SetGray(side+x, y, color.Gray{Y: 255})
		}
		for x := 0; x < side; x++ {
			img.SetGray(x, y, gray(left[y*side+x]))
			img.SetGray(side+gap+x, y, gray(right[y*side+x]))
		}
	}
	return png.Encode(w, img)
}

// SavePair writes RenderPair output to path, creating parent directories.
func SavePair(path string, left, right []float64) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create image dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return RenderPair(f, left, right)
}

func gray(v float64) color.Gray {
	switch {
	case math.IsNaN(v) || v <= 0:
		return color.Gray{}
	case v >= 255:
		return color.Gray{Y: 255}
	default:
		return color.Gray{Y: uint8(math.Round(v))}
	}
}
