// Package imagesrc loads a source image from disk and resizes it to a
// mode's canonical resolution, producing the *sstv.RGBImage the
// encoder's Mode Engine consumes. Decoding leans on the standard
// library's image registry; resizing is delegated to
// github.com/nfnt/resize, the same resize library the rest of the
// retrieved pack reaches for rather than a hand-rolled scaler.
package imagesrc

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/cwsl/sstv-modulator/sstv"
)

// Resample selects the interpolation kernel used when the source
// image doesn't already match the target mode's resolution.
type Resample int

const (
	// ResampleLanczos3 is the default: a sharp, general-purpose kernel
	// suited to photographic source images.
	ResampleLanczos3 Resample = iota
	// ResampleNearest preserves hard pixel edges, useful for
	// synthetic test patterns and pixel art.
	ResampleNearest
)

// ParseResample maps a CLI flag value to a Resample, defaulting to
// ResampleLanczos3 for an empty string.
func ParseResample(name string) (Resample, error) {
	switch name {
	case "", "lanczos3":
		return ResampleLanczos3, nil
	case "nearest":
		return ResampleNearest, nil
	default:
		return 0, fmt.Errorf("imagesrc: unknown resample kernel %q", name)
	}
}

func (r Resample) interpolation() resize.InterpolationFunction {
	if r == ResampleNearest {
		return resize.NearestNeighbor
	}
	return resize.Lanczos3
}

// Result is a loaded and resized image, plus the source's original
// dimensions for diagnostic logging.
type Result struct {
	Image                     *sstv.RGBImage
	SourceWidth, SourceHeight int
}

// Load decodes the image at path and resizes it to exactly
// targetWidth x targetHeight using the given resample kernel. The
// decoder is chosen by the standard library from the file's content,
// not its extension.
func Load(path string, targetWidth, targetHeight int, resample Resample) (Result, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return Result{}, fmt.Errorf("imagesrc: target dimensions must be positive, got %dx%d", targetWidth, targetHeight)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("imagesrc: open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("imagesrc: decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	resized := src
	if srcW != targetWidth || srcH != targetHeight {
		resized = resize.Resize(uint(targetWidth), uint(targetHeight), src, resample.interpolation())
	}

	img := sstv.NewRGBImage(targetWidth, targetHeight)
	rb := resized.Bounds()
	for y := 0; y < targetHeight; y++ {
		for x := 0; x < targetWidth; x++ {
			r, g, b, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			img.Set(x, y, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	return Result{Image: img, SourceWidth: srcW, SourceHeight: srcH}, nil
}
