package sstv

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

/*
 * Spectral verification
 *
 * DominantFrequency runs an FFT over a segment of already-encoded
 * audio to check what frequency it actually carries, for use by the
 * optional -verify CLI pass. It never runs on the encode path
 * itself and never fails encoding.
 */

// DominantFrequency returns the frequency, in Hz, of the strongest
// spectral component of samples at the given sample rate. Input is
// Hann-windowed before the transform to reduce spectral leakage from
// the segment's edges.
func DominantFrequency(samples []int16, sampleRate float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	windowed := make([]complex128, n)
	for i, s := range samples {
		hann := 0.5
		if n > 1 {
			hann = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
		windowed[i] = complex(float64(s)/32768.0*hann, 0)
	}

	padded := fourier.PadRadix2(windowed)
	coeffs := fourier.CoefficientsRadix2(padded)
	fftSize := len(coeffs)
	half := fftSize / 2

	powers := make([]float64, half)
	maxBin := 0
	for i := 0; i < half; i++ {
		powers[i] = real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		if i > 0 && powers[i] > powers[maxBin] {
			maxBin = i
		}
	}

	peakFreq := float64(maxBin) / float64(fftSize) * sampleRate

	// Gaussian interpolation between the three bins around the peak
	// sharpens the estimate beyond the raw bin width.
	if maxBin > 0 && maxBin < half-1 &&
		powers[maxBin] > 0 && powers[maxBin-1] > 0 && powers[maxBin+1] > 0 {
		numerator := powers[maxBin+1] / powers[maxBin-1]
		denominator := (powers[maxBin] * powers[maxBin]) / (powers[maxBin+1] * powers[maxBin-1])
		if numerator > 0 && denominator > 0 && math.Abs(math.Log(denominator)) > 1e-9 {
			delta := math.Log(numerator) / (2 * math.Log(denominator))
			peakFreq = (float64(maxBin) + delta) / float64(fftSize) * sampleRate
		}
	}

	return peakFreq
}
