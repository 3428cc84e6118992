package sstv

import (
	"fmt"
	"log"
	"math"
)

/*
 * Oscillator
 *
 * A stateful single-tone generator. EmitTone converts a (frequency,
 * duration) pair into a run of int16 PCM samples, carrying phase and
 * a fractional-sample remainder across calls so that thousands of
 * short tone segments never accumulate timing drift.
 *
 * Demodulators extract instantaneous frequency by zero-crossing or
 * quadrature; a phase discontinuity at a tone boundary produces an
 * audible click and decoded pixel noise, so phase is never reset
 * between tones, only wrapped into [0, 2π).
 */

// PCMSink is an append-only, sequential-write destination for signed
// 16-bit PCM samples. The Oscillator is its only writer for the
// duration of an encoding run.
type PCMSink interface {
	WriteSample(s int16) error
}

// Oscillator is a mutable phase-continuous sine generator.
type Oscillator struct {
	sampleRate  int
	amplitude   float64
	phase       float64
	fracSamples float64
	logger      *log.Logger
}

// NewOscillator constructs an Oscillator for the given sample rate and
// amplitude (clamped to [0, 1]). logger may be nil, in which case the
// standard library's default logger is used for the best-effort
// sink-write warning described in EmitTone.
func NewOscillator(sampleRate int, amplitude float64, logger *log.Logger) (*Oscillator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sstv: sample rate must be positive, got %d", sampleRate)
	}
	if amplitude < 0 {
		amplitude = 0
	} else if amplitude > 1 {
		amplitude = 1
	}
	return &Oscillator{
		sampleRate: sampleRate,
		amplitude:  amplitude,
		logger:     logger,
	}, nil
}

// SampleRate returns the Oscillator's immutable sample rate in Hz.
func (o *Oscillator) SampleRate() int {
	return o.sampleRate
}

// Phase returns the current phase in [0, 2π), for testing/inspection.
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// FracSamples returns the carried fractional-sample remainder in
// [0, 1), for testing/inspection.
func (o *Oscillator) FracSamples() float64 {
	return o.fracSamples
}

// EmitTone appends N int16 samples to sink, where
//
//	N = floor(durationMs * sampleRate / 1000 + fracSamplesPrev)
//
// freqHz <= 0 emits N samples of silence without advancing phase.
// Otherwise each sample is sin(phase) * amplitude * 32767 rounded half-away-
// from-zero and clamped to the int16 range, with phase advancing by
// 2π*freqHz/sampleRate after every sample.
//
// A sink write error is logged and this tone's remaining samples are
// not written, but phase and the fractional-sample accumulator still
// advance as though they had been: the Oscillator remains usable for
// the next call, and the caller is never interrupted (best-effort
// audio output, matching the "partial file is better than an aborted
// transmission" policy described in the error-handling design).
func (o *Oscillator) EmitTone(sink PCMSink, freqHz, durationMs float64) {
	sr := float64(o.sampleRate)
	exact := durationMs * sr / 1000.0
	total := exact + o.fracSamples
	n := int(math.Floor(total))
	o.fracSamples = total - float64(n)

	silent := freqHz <= 0
	var deltaPhi float64
	if !silent {
		deltaPhi = 2 * math.Pi * freqHz / sr
	}

	ampScale := float64(math.MaxInt16) * o.amplitude
	sinkFailed := false

	for i := 0; i < n; i++ {
		var sampleF float64
		if !silent {
			sampleF = math.Sin(o.phase) * ampScale
		}

		if !sinkFailed {
			if err := sink.WriteSample(roundClampInt16(sampleF)); err != nil {
				o.logPrintf("sstv: oscillator: sink write failed, aborting remaining samples of this tone: %v", err)
				sinkFailed = true
			}
		}

		if !silent {
			o.phase += deltaPhi
			if o.phase >= 2*math.Pi {
				o.phase -= 2 * math.Pi
			}
		}
	}
}

func (o *Oscillator) logPrintf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// roundClampInt16 rounds half-away-from-zero and clamps to the int16 range.
func roundClampInt16(v float64) int16 {
	var rounded float64
	if v >= 0 {
		rounded = math.Floor(v + 0.5)
	} else {
		rounded = math.Ceil(v - 0.5)
	}
	if rounded > math.MaxInt16 {
		return math.MaxInt16
	}
	if rounded < math.MinInt16 {
		return math.MinInt16
	}
	return int16(rounded)
}
