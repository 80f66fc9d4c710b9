// SPDX-License-Identifier: MIT
package tuner

import (
	"fmt"
	"math"

	"tuner/internal/pitch"
)

// Display constants for the tuning needle.
const (
	InTuneCents    = 5.0  // |cents| below this is in tune.
	MaxNeedleAngle = 45.0 // Needle deflection limit in degrees either side.
	centsPerDegree = 2.0
)

// TuningState classifies a Reading for display.
type TuningState int

const (
	Absent TuningState = iota // No pitch this cycle.
	InTune
	Flat
	Sharp
)

func (s TuningState) String() string {
	switch s {
	case Absent:
		return "absent"
	case InTune:
		return "in-tune"
	case Flat:
		return "flat"
	case Sharp:
		return "sharp"
	default:
		return fmt.Sprintf("TuningState(%d)", int(s))
	}
}

// MarshalText encodes the state by name so JSON consumers see "flat" rather than 2.
func (s TuningState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateFromCents classifies a smoothed cents value.
func StateFromCents(cents float64) TuningState {
	switch {
	case math.Abs(cents) < InTuneCents:
		return InTune
	case cents < 0:
		return Flat
	default:
		return Sharp
	}
}

// NeedleAngle maps smoothed cents to a needle rotation in degrees.
func NeedleAngle(cents float64) float64 {
	return max(-MaxNeedleAngle, min(MaxNeedleAngle, cents/centsPerDegree))
}

// Reading is the per-cycle output handed to renderers. A zero Frequency
// together with State Absent means no pitch was detected.
type Reading struct {
	Frequency    float64     `json:"frequency,omitempty"`    // Smoothed frequency in Hz.
	RawFrequency float64     `json:"rawFrequency,omitempty"` // This cycle's unsmoothed estimate.
	Note         string      `json:"note,omitempty"`         // Stable note name.
	NoteIndex    int         `json:"noteIndex"`
	Octave       int         `json:"octave"`
	Cents        float64     `json:"cents"`
	NeedleAngle  float64     `json:"needleAngle"`
	State        TuningState `json:"state"`
}

// HasPitch reports whether the reading carries a detected pitch.
func (r Reading) HasPitch() bool {
	return r.State != Absent
}

func (r Reading) String() string {
	if !r.HasPitch() {
		return "-- no signal --"
	}
	return fmt.Sprintf("%-2s %8.2f Hz %+6.1f cents %-7s", r.Note, r.Frequency, r.Cents, r.State)
}

// silentReading is the neutral display state.
func silentReading() Reading {
	return Reading{State: Absent}
}

func newReading(raw float64, s pitch.Smoothed) Reading {
	return Reading{
		Frequency:    s.Frequency,
		RawFrequency: raw,
		Note:         s.Note,
		NoteIndex:    s.NoteIndex,
		Octave:       pitch.Octave(s.NoteIndex),
		Cents:        s.Cents,
		NeedleAngle:  NeedleAngle(s.Cents),
		State:        StateFromCents(s.Cents),
	}
}
