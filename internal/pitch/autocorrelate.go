// SPDX-License-Identifier: MIT
/*
Package pitch implements the time-domain pitch pipeline of the tuner:
- Autocorrelator: fundamental frequency from one block of samples
- Note mapping: frequency to equal-tempered note index and cents
- Smoother: rolling frequency/note histories and decayed cents

None of the types here are safe for concurrent use. They keep scratch
buffers between calls so the per-block path does not allocate once warm.
*/
package pitch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultNoiseFloor is the RMS level below which a block is silence.
	DefaultNoiseFloor = 0.01

	goodCorrelation = 0.9  // A lag must beat this to count as a peak candidate.
	minCorrelation  = 0.01 // Weakest candidate accepted by the fallback path.

	// Blocks are scaled to this RMS before correlating, so the thresholds
	// above select the same lags at every input level.
	referenceLevel = 0.1

	refineIterations = 2
	maxShift         = 0.5 // Samples; a nearer integer lag would have been chosen.
)

// Autocorrelator estimates the fundamental frequency of a block using a
// normalised absolute-difference correlation over half the block.
type Autocorrelator struct {
	NoiseFloor float64

	signal []float64 // Float64 copy of the current block.
}

// NewAutocorrelator returns an Autocorrelator with the given noise floor.
// A non-positive floor selects DefaultNoiseFloor.
func NewAutocorrelator(noiseFloor float64) *Autocorrelator {
	if noiseFloor <= 0 {
		noiseFloor = DefaultNoiseFloor
	}
	return &Autocorrelator{NoiseFloor: noiseFloor}
}

// Estimate returns the fundamental frequency of samples in Hz and true, or
// false when the block is silent or carries no periodicity. The caller must
// still reject non-finite results before using them.
func (a *Autocorrelator) Estimate(samples []float32, sampleRate int) (float64, bool) {
	x := a.load(samples)
	if len(x) < 2 {
		return 0, false
	}
	level := RMS(x)
	if level < a.NoiseFloor {
		return 0, false
	}
	floats.Scale(referenceLevel/level, x)

	n := len(x) / 2
	bestOffset := -1
	bestCorrelation := 0.0
	lastCorrelation := 1.0
	rising := false

	for offset := range n {
		correlation := 1 - difference(x, n, offset)/float64(n)

		switch {
		case correlation > goodCorrelation && correlation > lastCorrelation:
			rising = true
			if correlation > bestCorrelation {
				bestCorrelation = correlation
				bestOffset = offset
			}
		case rising && correlation < lastCorrelation:
			// The fundamental period was the previous peak.
			shift := refine(x, n, bestOffset)
			return float64(sampleRate) / (float64(bestOffset) + shift), true
		}

		lastCorrelation = correlation
	}

	if bestCorrelation > minCorrelation && bestOffset > 0 {
		return float64(sampleRate) / float64(bestOffset), true
	}
	return 0, false
}

// RMS returns the root-mean-square level of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// load copies samples into the reusable float64 buffer.
func (a *Autocorrelator) load(samples []float32) []float64 {
	if cap(a.signal) < len(samples) {
		a.signal = make([]float64, len(samples))
	}
	a.signal = a.signal[:len(samples)]
	for i, s := range samples {
		a.signal[i] = float64(s)
	}
	return a.signal
}

// difference is the summed absolute difference between the first n samples
// and the same span shifted by offset.
func difference(x []float64, n, offset int) float64 {
	return floats.Distance(x[:n], x[offset:offset+n], 1)
}

// refine returns the correction, in samples, from the coarse lag to the true
// period. Near the period P the difference sum of a periodic block follows
// A*|sin(pi*(lag-P)/P)|, so the coarse lag and its neighbour on the same side
// of P fix the offset. The model needs P itself, so the estimate is repeated
// with the refined period.
func refine(x []float64, n, coarse int) float64 {
	before := difference(x, n, coarse-1)
	at := difference(x, n, coarse)
	after := difference(x, n, coarse+1)

	period := float64(coarse)
	var shift float64
	for range refineIterations {
		theta := math.Pi / period
		if after <= before {
			shift = math.Atan2(at*math.Sin(theta), before-at*math.Cos(theta)) / theta
		} else {
			shift = -math.Atan2(at*math.Sin(theta), after-at*math.Cos(theta)) / theta
		}
		shift = max(-maxShift, min(maxShift, shift))
		period = float64(coarse) + shift
	}
	return shift
}
