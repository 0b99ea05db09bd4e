package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of real data.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitudes of the first half of the spectrum.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// PadPow2 copies data into a zero-padded slice whose length is a power of 2.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of data sampled every spacing seconds. The mean is removed first.
func DominantFrequency(data []float64, spacing float64) float64 {
	if len(data) < 4 || spacing <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	padded := PadPow2(centered)
	ps := PowerSpectrum(padded)

	maxIdx := 0
	maxPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}

	return float64(maxIdx) / (float64(len(padded)) * spacing)
}
