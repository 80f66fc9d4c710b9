// SPDX-License-Identifier: MIT
package pitch

import "gonum.org/v1/gonum/stat"

const (
	DefaultFrequencyHistory = 10 // Estimates averaged into the displayed frequency.
	DefaultNoteHistory      = 5  // Note names voted on for the displayed note.

	centsRetain = 0.8 // Share of the previous smoothed cents kept each cycle.
)

// Smoothed is the stabilised output of one Smoother cycle.
type Smoothed struct {
	Frequency float64 // Mean of the frequency history.
	NoteIndex int     // Note nearest to Frequency.
	Note      string  // Most frequent name in the note history.
	RawCents  int     // Offset of Frequency from NoteIndex.
	Cents     float64 // Exponentially decayed RawCents.
}

// Smoother suppresses flicker by averaging recent frequency estimates and
// voting over recent note names.
type Smoother struct {
	frequencies *History[float64]
	notes       *History[string]
	cents       float64
	scratch     []float64
}

// NewSmoother creates a Smoother with the given history capacities.
func NewSmoother(frequencyHistory, noteHistory int) *Smoother {
	f := NewHistory[float64](frequencyHistory)
	return &Smoother{
		frequencies: f,
		notes:       NewHistory[string](noteHistory),
		scratch:     make([]float64, 0, f.Cap()),
	}
}

// Update folds one valid frequency estimate into the histories.
func (s *Smoother) Update(freq float64) Smoothed {
	s.frequencies.Push(freq)
	s.scratch = s.frequencies.AppendTo(s.scratch[:0])
	mean := stat.Mean(s.scratch, nil)

	index := NoteIndex(mean)
	s.notes.Push(NoteName(index))

	raw := CentsOffset(mean, index)
	s.cents = s.cents*centsRetain + float64(raw)*(1-centsRetain)

	return Smoothed{
		Frequency: mean,
		NoteIndex: index,
		Note:      s.stableNote(),
		RawCents:  raw,
		Cents:     s.cents,
	}
}

// Silence records a cycle without pitch: both histories are dropped at once
// and the smoothed cents decay toward zero.
func (s *Smoother) Silence() {
	s.frequencies.Reset()
	s.notes.Reset()
	s.cents *= centsRetain
}

// Reset returns the Smoother to its initial state.
func (s *Smoother) Reset() {
	s.frequencies.Reset()
	s.notes.Reset()
	s.cents = 0
}

// Cents returns the current smoothed cents value.
func (s *Smoother) Cents() float64 {
	return s.cents
}

// FrequencyLen returns the number of estimates in the frequency history.
func (s *Smoother) FrequencyLen() int {
	return s.frequencies.Len()
}

// NoteLen returns the number of names in the note history.
func (s *Smoother) NoteLen() int {
	return s.notes.Len()
}

// stableNote returns the most frequent note name. Ties go to the note seen
// most recently: names are visited newest first and only a strictly higher
// count replaces the leader.
func (s *Smoother) stableNote() string {
	var (
		leader string
		most   int
	)
	for i := s.notes.Len() - 1; i >= 0; i-- {
		name := s.notes.At(i)
		count := 0
		for j := range s.notes.Len() {
			if s.notes.At(j) == name {
				count++
			}
		}
		if count > most {
			leader = name
			most = count
		}
	}
	return leader
}
