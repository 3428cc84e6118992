package sstv

import (
	"fmt"
	"log"
)

/*
 * Mode Engine
 *
 * Given an RGB pixel buffer already resized to a mode's canonical
 * resolution, emits scanline-by-scanline the exact sequence of sync,
 * separator, and per-pixel color tones the mode's family prescribes.
 * Dispatch is by family, over a closed set of four scanline shapes
 * (Martin, Scottie, Robot36, Robot72) — a switch over the closed
 * Family set, not a virtual-method hierarchy, per the design note that
 * modes are data and families are the only behavioral axis.
 */

const (
	lineSyncHz = 1200.0
	separHz    = 1500.0
)

// colorToFreq maps a normalized [0,1] channel sample to its tone
// frequency for every RGB-direct (Martin, Scottie) mode.
func colorToFreq(v float64) float64 {
	return 1500 + 800*v
}

// RGBImage is a read-only RGB8 pixel grid sized exactly to an active
// mode's resolution. The core never resizes it; that is the image
// loader collaborator's job (see imagesrc.Load).
type RGBImage struct {
	Width  int
	Height int
	// Pix holds Width*Height RGB triples in row-major order:
	// Pix[3*(y*Width+x)+0..2] = (r, g, b).
	Pix []byte
}

// NewRGBImage allocates a black image of the given dimensions.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// At returns the (r, g, b) byte triple at column x, row y.
func (img *RGBImage) At(x, y int) (r, g, b byte) {
	i := 3 * (y*img.Width + x)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// Set writes the (r, g, b) byte triple at column x, row y.
func (img *RGBImage) Set(x, y int, r, g, b byte) {
	i := 3 * (y*img.Width + x)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
}

// EncodeObserver receives progress notifications during Encode. All
// methods are called synchronously from the encoding goroutine; a nil
// EncodeObserver is always safe to pass to Encode.
type EncodeObserver interface {
	// ToneEmitted is called once per emitted tone, after the
	// Oscillator has produced its samples.
	ToneEmitted(freqHz, durationMs float64)
	// EncodeStarted is called once, before the VIS header.
	EncodeStarted(mode Mode, width, height int)
	// EncodeCompleted is called once, after the last scanline.
	EncodeCompleted(totalDurationMs float64)
}

// toneEmitter bundles the Oscillator, the PCM sink, and the optional
// observer so family scanline emitters only need to carry one value.
type toneEmitter struct {
	osc      *Oscillator
	sink     PCMSink
	observer EncodeObserver
	totalMs  float64
}

func (te *toneEmitter) emit(freqHz, durationMs float64) {
	te.osc.EmitTone(te.sink, freqHz, durationMs)
	te.totalMs += durationMs
	if te.observer != nil {
		te.observer.ToneEmitted(freqHz, durationMs)
	}
}

// EncodeConfig carries the encoding run's tunables.
type EncodeConfig struct {
	SampleRate         int
	Amplitude          float64 // [0, 1]
	CalibrationEnabled bool
	Logger             *log.Logger // nil uses the standard logger
	Observer           EncodeObserver
}

// Encode runs a full encoding pass: optional calibration prelude, VIS
// header, then every scanline of img dispatched to mode's family
// protocol. Returns normally after the last tone; per-sample sink
// errors are logged by the Oscillator and never abort the sequence
// (see Oscillator.EmitTone).
func Encode(mode Mode, img *RGBImage, cfg EncodeConfig, sink PCMSink) error {
	wantW, wantH := mode.Resolution()
	if img.Width != wantW || img.Height != wantH {
		return fmt.Errorf("sstv: image is %dx%d, mode %s requires %dx%d", img.Width, img.Height, mode, wantW, wantH)
	}
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("sstv: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Amplitude < 0 || cfg.Amplitude > 1 {
		return fmt.Errorf("sstv: amplitude must be in [0,1], got %g", cfg.Amplitude)
	}

	osc, err := NewOscillator(cfg.SampleRate, cfg.Amplitude, cfg.Logger)
	if err != nil {
		return err
	}

	te := &toneEmitter{osc: osc, sink: sink, observer: cfg.Observer}

	if cfg.Observer != nil {
		cfg.Observer.EncodeStarted(mode, img.Width, img.Height)
	}

	if cfg.CalibrationEnabled {
		emitCalibration(te)
	}
	emitVIS(te, mode.VISCode())

	switch mode.Family() {
	case FamilyMartin:
		emitMartinScanlines(te, img, mode.ColorScanMs())
	case FamilyScottie:
		emitScottieScanlines(te, img, mode.ColorScanMs())
	case FamilyRobot36:
		emitRobot36Scanlines(te, img)
	case FamilyRobot72:
		emitRobot72Scanlines(te, img)
	default:
		return fmt.Errorf("sstv: mode %s has unhandled family %v", mode, mode.Family())
	}

	if cfg.Observer != nil {
		cfg.Observer.EncodeCompleted(te.totalMs)
	}

	return nil
}

// emitMartinScanlines implements §4.3.1: per line, sync, then
// green/blue/red scans each bracketed by a 1500 Hz separator.
func emitMartinScanlines(te *toneEmitter, img *RGBImage, colorScanMs float64) {
	const (
		lineSyncMs = 4.862
		separMs    = 0.572
	)
	width := img.Width
	pixelMs := colorScanMs / float64(width)

	for y := 0; y < img.Height; y++ {
		te.emit(lineSyncHz, lineSyncMs)
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 1, pixelMs) // green
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 2, pixelMs) // blue
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 0, pixelMs) // red
		te.emit(separHz, separMs)
	}
}

// emitScottieScanlines implements §4.3.2: separator, green, separator,
// blue, line sync, separator, red — the sync sits between blue and
// red rather than at the start of the line.
func emitScottieScanlines(te *toneEmitter, img *RGBImage, colorScanMs float64) {
	const (
		lineSyncMs = 9.0
		separMs    = 1.5
	)
	width := img.Width
	pixelMs := colorScanMs / float64(width)

	for y := 0; y < img.Height; y++ {
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 1, pixelMs) // green
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 2, pixelMs) // blue
		te.emit(lineSyncHz, lineSyncMs)
		te.emit(separHz, separMs)
		emitChannelScan(te, img, y, 0, pixelMs) // red
	}
}

// emitChannelScan emits one color channel's pixel tones for scanline y.
// channel: 0=red, 1=green, 2=blue.
func emitChannelScan(te *toneEmitter, img *RGBImage, y int, channel int, pixelMs float64) {
	for x := 0; x < img.Width; x++ {
		r, g, b := img.At(x, y)
		var raw byte
		switch channel {
		case 0:
			raw = r
		case 1:
			raw = g
		case 2:
			raw = b
		}
		v := float64(raw) / 255.0
		te.emit(colorToFreq(v), pixelMs)
	}
}

// emitRobot36Scanlines implements §4.3.3: Y/Cr/Cb with chroma
// line-interleaving (Cr on even lines, Cb on odd lines).
func emitRobot36Scanlines(te *toneEmitter, img *RGBImage) {
	const (
		lineSyncMs  = 9.0
		separMs     = 3.0
		chromaMs    = 4.5
		shortSepMs  = 1.5
		yScanMs     = 88.0
		colorScanMs = 44.0
	)
	width := img.Width
	yPixelMs := yScanMs / float64(width)
	cPixelMs := colorScanMs / float64(width)

	for y := 0; y < img.Height; y++ {
		te.emit(lineSyncHz, lineSyncMs)
		te.emit(separHz, separMs)

		for x := 0; x < width; x++ {
			r, g, b := img.At(x, y)
			lum, _, _ := rgbToYCrCb(float64(r)/255, float64(g)/255, float64(b)/255)
			te.emit(1500+800*lum, yPixelMs)
		}

		if y%2 == 0 {
			te.emit(1500, chromaMs)
		} else {
			te.emit(2300, chromaMs)
		}
		te.emit(separHz, shortSepMs)

		for x := 0; x < width; x++ {
			r, g, b := img.At(x, y)
			_, cr, cb := rgbToYCrCb(float64(r)/255, float64(g)/255, float64(b)/255)
			chroma := cr
			if y%2 != 0 {
				chroma = cb
			}
			te.emit(1900+400*chroma, cPixelMs)
		}
	}
}

// emitRobot72Scanlines implements §4.3.4: Y/Cr/Cb with both chroma
// channels transmitted on every line.
func emitRobot72Scanlines(te *toneEmitter, img *RGBImage) {
	const (
		lineSyncMs  = 8.5
		separMs     = 3.0
		chromaMs    = 4.75
		porchMs     = 1.5
		porchHz     = 1900.0
		yScanMs     = 138.0
		colorScanMs = 69.0
	)
	width := img.Width
	yPixelMs := yScanMs / float64(width)
	cPixelMs := colorScanMs / float64(width)

	for y := 0; y < img.Height; y++ {
		te.emit(lineSyncHz, lineSyncMs)
		te.emit(separHz, separMs)

		for x := 0; x < width; x++ {
			r, g, b := img.At(x, y)
			lum, _, _ := rgbToYCrCb(float64(r)/255, float64(g)/255, float64(b)/255)
			te.emit(1500+800*lum, yPixelMs)
		}

		te.emit(1500, chromaMs)
		te.emit(porchHz, porchMs)
		for x := 0; x < width; x++ {
			r, g, b := img.At(x, y)
			_, cr, _ := rgbToYCrCb(float64(r)/255, float64(g)/255, float64(b)/255)
			te.emit(1900+400*cr, cPixelMs)
		}

		te.emit(2300, chromaMs)
		te.emit(porchHz, porchMs)
		for x := 0; x < width; x++ {
			r, g, b := img.At(x, y)
			_, _, cb := rgbToYCrCb(float64(r)/255, float64(g)/255, float64(b)/255)
			te.emit(1900+400*cb, cPixelMs)
		}
	}
}
