package imagesrc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadResizesToTargetDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	writeTestPNG(t, path, 40, 30)

	result, err := Load(path, 320, 256, ResampleLanczos3)
	require.NoError(t, err)
	assert.Equal(t, 40, result.SourceWidth)
	assert.Equal(t, 30, result.SourceHeight)
	assert.Equal(t, 320, result.Image.Width)
	assert.Equal(t, 256, result.Image.Height)
}

func TestLoadPassesThroughExactMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exact.png")
	writeTestPNG(t, path, 160, 120)

	result, err := Load(path, 160, 120, ResampleNearest)
	require.NoError(t, err)
	r, g, b := result.Image.At(0, 0)
	assert.Equal(t, byte(0), r)
	assert.Equal(t, byte(0), g)
	assert.Equal(t, byte(128), b)
}

func TestLoadRejectsNonPositiveDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	writeTestPNG(t, path, 10, 10)

	_, err := Load(path, 0, 10, ResampleLanczos3)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"), 100, 100, ResampleLanczos3)
	assert.Error(t, err)
}

func TestParseResample(t *testing.T) {
	r, err := ParseResample("nearest")
	require.NoError(t, err)
	assert.Equal(t, ResampleNearest, r)

	r, err = ParseResample("")
	require.NoError(t, err)
	assert.Equal(t, ResampleLanczos3, r)

	_, err = ParseResample("bogus")
	assert.Error(t, err)
}
