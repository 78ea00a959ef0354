package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns |X_k| for the non-negative frequency bins of data
// together with the bin frequencies for sample spacing dt.
func PowerSpectrum(data []float64, dt float64) (freqs, power []float64, err error) {
	if len(data) < 2 {
		return nil, nil, ErrTooFewPoints
	}
	if dt <= 0 {
		return nil, nil, ErrNonPositive
	}
	fft := fourier.NewFFT(len(data))
	coeffs := fft.Coefficients(nil, data)

	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		power[i] = cmplx.Abs(c)
	}
	return freqs, power, nil
}

// DominantFrequency is the frequency of the strongest non-zero bin, in cycles
// per unit time. The mean is removed and a Hann window applied first, so a
// record that does not hold a whole number of periods leaks little power.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	centered := removeMean(data)
	window.Apply(centered, window.Hann)
	freqs, power, err := PowerSpectrum(centered, dt)
	if err != nil {
		return 0, err
	}
	best := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	return freqs[best], nil
}

func removeMean(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}
