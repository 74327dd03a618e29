package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrNoPeriod = errors.New("analysis: no dominant period")

// Period estimates the dominant period of series sampled every dt seconds.
// The peak of the power spectrum is refined by parabolic interpolation
// between neighbouring bins.
func Period(series []float64, dt float64) (float64, error) {
	n := len(series)
	if n < 4 || dt <= 0 {
		return 0, ErrNoPeriod
	}

	mean := stat.Mean(series, nil)
	centred := make([]float64, n)
	for i, v := range series {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	power := make([]float64, n/2+1)
	for k := range power {
		power[k] = cmplx.Abs(spectrum[k])
	}

	peak := 0
	for k := 1; k < len(power); k++ {
		if power[k] > power[peak] {
			peak = k
		}
	}
	if peak == 0 || power[peak] < 1e-12*float64(n)*maxAbs(centred) {
		return 0, ErrNoPeriod
	}

	k := float64(peak)
	if peak > 1 && peak < len(power)-1 {
		a, b, c := power[peak-1], power[peak], power[peak+1]
		if den := a - 2*b + c; den != 0 {
			k += 0.5 * (a - c) / den
		}
	}

	return float64(n) * dt / k, nil
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, v := range xs {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
