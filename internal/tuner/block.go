// SPDX-License-Identifier: MIT
package tuner

import (
	"fmt"
	"math"
)

// SampleBlock is one cycle of mono audio. Samples lie roughly in [-1, 1].
// The engine reads a block only for the duration of ProcessBlock and never
// retains it, so sources may reuse the backing array afterwards.
type SampleBlock struct {
	Samples    []float32
	SampleRate int
}

// Validate reports ErrInvalidSampleBlock for empty blocks, non-positive
// sample rates and non-finite samples.
func (b SampleBlock) Validate() error {
	if len(b.Samples) == 0 {
		return fmt.Errorf("%w: empty block", ErrInvalidSampleBlock)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidSampleBlock, b.SampleRate)
	}
	for i, s := range b.Samples {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidSampleBlock, i)
		}
	}
	return nil
}
