package sstv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayImage(width, height int, r, g, b byte) *RGBImage {
	img := NewRGBImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, r, g, b)
		}
	}
	return img
}

// visToneCount is the number of tones emitVIS records ahead of the
// first scanline: leader, break, leader, start, 7 data, parity, stop.
const visToneCount = 13

func TestRGBImageSetAndAt(t *testing.T) {
	img := NewRGBImage(4, 3)
	img.Set(2, 1, 10, 20, 30)
	r, g, b := img.At(2, 1)
	assert.Equal(t, byte(10), r)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(30), b)

	r, g, b = img.At(0, 0)
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestEncodeRejectsWrongImageDimensions(t *testing.T) {
	img := NewRGBImage(10, 10)
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0}
	err := Encode(ModeM1, img, cfg, &countingSink{})
	assert.Error(t, err)
}

func TestEncodeRejectsInvalidSampleRateAndAmplitude(t *testing.T) {
	img := grayImage(320, 256, 128, 128, 128)

	err := Encode(ModeM1, img, EncodeConfig{SampleRate: 0, Amplitude: 1.0}, &countingSink{})
	assert.Error(t, err)

	err = Encode(ModeM1, img, EncodeConfig{SampleRate: 44100, Amplitude: 1.5}, &countingSink{})
	assert.Error(t, err)
}

// TestEncodeDurationAccuracy is P1: total samples written equals,
// within +-1, the analytic sum of emitted tone durations.
func TestEncodeDurationAccuracy(t *testing.T) {
	img := grayImage(320, 256, 128, 128, 128)
	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
	sink := &countingSink{}

	require.NoError(t, Encode(ModeM1, img, cfg, sink))

	var totalMs float64
	for _, tn := range rec.tones {
		totalMs += tn.ms
	}
	ideal := math.Round(totalMs * 44100 / 1000)
	assert.InDelta(t, ideal, float64(len(sink.samples)), 1)
}

// TestM1TotalDurationMatchesScenario is S1: mode M1's total transfer
// time is ~114.430s, yielding ~5,046,363 samples at 44100 Hz.
func TestM1TotalDurationMatchesScenario(t *testing.T) {
	img := grayImage(320, 256, 128, 128, 128)
	sink := &countingSink{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0}

	require.NoError(t, Encode(ModeM1, img, cfg, sink))

	want := math.Round(114430.0 * 44.1)
	assert.InDelta(t, want, float64(len(sink.samples)), 1)
}

// TestColorMappingLawForGrayImage is P5: every color-scan tone for an
// equal-channel input v has frequency 1500+800*(v/255).
func TestColorMappingLawForGrayImage(t *testing.T) {
	for _, v := range []byte{0, 1, 64, 128, 200, 255} {
		img := grayImage(320, 256, v, v, v)
		rec := &toneRecorder{}
		cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
		require.NoError(t, Encode(ModeM1, img, cfg, &countingSink{}))

		want := 1500 + 800*(float64(v)/255.0)
		for _, tn := range rec.tones[visToneCount:] {
			if tn.freq == lineSyncHz || tn.freq == separHz {
				continue
			}
			assert.InDelta(t, want, tn.freq, 1e-6)
		}
	}
}

// TestM2LinearGreenRamp is S3: mode M2, pixel (r,g,b) = (0,x,0) produces a
// green scan climbing linearly with x while blue stays at 1500 Hz.
func TestM2LinearGreenRamp(t *testing.T) {
	width, height := 160, 256
	img := NewRGBImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, 0, byte(x), 0)
		}
	}

	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
	require.NoError(t, Encode(ModeM2, img, cfg, &countingSink{}))

	// Per scanline: sync, sep, green(width), sep, blue(width), sep, red(width), sep = 4+3*width tones.
	perLine := 4 + 3*width
	require.GreaterOrEqual(t, len(rec.tones), visToneCount+perLine)

	greenStart := visToneCount + 2
	assert.InDelta(t, 1500.0, rec.tones[greenStart].freq, 1e-6)
	lastGreen := greenStart + width - 1
	wantLast := 1500 + 800*(159.0/255.0)
	assert.InDelta(t, wantLast, rec.tones[lastGreen].freq, 1e-6)

	blueStart := greenStart + width + 1
	for i := 0; i < width; i++ {
		assert.InDelta(t, 1500.0, rec.tones[blueStart+i].freq, 1e-6)
	}
}

// TestM3WhiteImageTiming is S4: a pure-white image produces 2300 Hz
// color-scan tones, 1500 Hz separators, and 1200 Hz/4.862ms line syncs.
func TestM3WhiteImageTiming(t *testing.T) {
	img := grayImage(320, 128, 255, 255, 255)
	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
	require.NoError(t, Encode(ModeM3, img, cfg, &countingSink{}))

	for _, tn := range rec.tones[visToneCount:] {
		switch tn.freq {
		case lineSyncHz:
			assert.Equal(t, 4.862, tn.ms)
		case separHz:
			// separators are fixed-duration porch tones
		default:
			assert.InDelta(t, 2300.0, tn.freq, 1e-6)
		}
	}
}

// TestR72RedImageScenario is S5: a pure-red 320x240 image yields the
// documented Y/Cr/Cb tone frequencies.
func TestR72RedImageScenario(t *testing.T) {
	img := grayImage(320, 240, 255, 0, 0)
	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
	require.NoError(t, Encode(ModeR72, img, cfg, &countingSink{}))

	wantY := 1500 + 800*0.299
	wantCr := 1900 + 400*0.701
	wantCb := 1900 + 400*(-0.299)

	var sawY, sawCr, sawCb bool
	for _, tn := range rec.tones {
		if math.Abs(tn.freq-wantY) < 1e-3 {
			sawY = true
		}
		if math.Abs(tn.freq-wantCr) < 1e-3 {
			sawCr = true
		}
		if math.Abs(tn.freq-wantCb) < 1e-3 {
			sawCb = true
		}
	}
	assert.True(t, sawY, "expected a luminance tone near %f", wantY)
	assert.True(t, sawCr, "expected a Cr tone near %f", wantCr)
	assert.True(t, sawCb, "expected a Cb tone near %f", wantCb)
}

// TestR36ChromaInterleave is P6: even scanlines carry Cr behind a
// 1500 Hz chroma sync, odd scanlines carry Cb behind 2300 Hz.
func TestR36ChromaInterleave(t *testing.T) {
	width, height := ModeR36.Resolution()
	img := NewRGBImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, 200, 50, 10)
		}
	}

	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 44100, Amplitude: 1.0, Observer: rec}
	require.NoError(t, Encode(ModeR36, img, cfg, &countingSink{}))

	// Per scanline: sync, sep, Y(width), chroma-sync, short-sep, C(width).
	perLine := 4 + 2*width
	require.Equal(t, visToneCount+perLine*height, len(rec.tones))

	for y := 0; y < height; y++ {
		chromaSyncIdx := visToneCount + y*perLine + 2 + width
		chromaSync := rec.tones[chromaSyncIdx]
		if y%2 == 0 {
			assert.Equal(t, 1500.0, chromaSync.freq)
		} else {
			assert.Equal(t, 2300.0, chromaSync.freq)
		}
	}
}

func TestEncodeCallsObserverLifecycle(t *testing.T) {
	img := grayImage(160, 128, 0, 0, 0)
	rec := &toneRecorder{}
	cfg := EncodeConfig{SampleRate: 8000, Amplitude: 1.0, Observer: rec}
	require.NoError(t, Encode(ModeM4, img, cfg, &countingSink{}))
	assert.Equal(t, 1, rec.started)
	assert.NotEmpty(t, rec.tones)
	assert.Equal(t, 1, rec.completed)
}
