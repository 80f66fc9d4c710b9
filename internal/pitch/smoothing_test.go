// SPDX-License-Identifier: MIT
package pitch

import (
	"math"
	"testing"
)

func TestSmootherConvergesToConstantInput(t *testing.T) {
	s := NewSmoother(DefaultFrequencyHistory, DefaultNoteHistory)

	// Seed the history with a different pitch first.
	for range 4 {
		s.Update(415.3)
	}

	var out Smoothed
	for range DefaultFrequencyHistory {
		out = s.Update(329.63)
	}

	if math.Abs(out.Frequency-329.63) > 1e-9 {
		t.Errorf("Frequency = %.12f, want 329.63", out.Frequency)
	}
	if out.Note != "E" {
		t.Errorf("Note = %q, want E", out.Note)
	}
}

func TestSmootherHistoryBounds(t *testing.T) {
	s := NewSmoother(DefaultFrequencyHistory, DefaultNoteHistory)
	freqs := []float64{440, 445, 452, 466.16, 493.88, 523.25, 98, 82.41}

	for i := range 50 {
		s.Update(freqs[i%len(freqs)])
		if s.FrequencyLen() > DefaultFrequencyHistory {
			t.Fatalf("cycle %d: frequency history %d > %d", i, s.FrequencyLen(), DefaultFrequencyHistory)
		}
		if s.NoteLen() > DefaultNoteHistory {
			t.Fatalf("cycle %d: note history %d > %d", i, s.NoteLen(), DefaultNoteHistory)
		}
	}
}

func TestSmootherMeanFrequency(t *testing.T) {
	s := NewSmoother(3, 3)
	s.Update(100)
	s.Update(200)
	out := s.Update(300)
	if out.Frequency != 200 {
		t.Errorf("Frequency = %f, want 200", out.Frequency)
	}

	// The oldest estimate falls out of the window.
	out = s.Update(400)
	if out.Frequency != 300 {
		t.Errorf("Frequency = %f, want 300", out.Frequency)
	}
}

func TestSmootherSilenceClearsHistories(t *testing.T) {
	s := NewSmoother(DefaultFrequencyHistory, DefaultNoteHistory)
	for range 7 {
		s.Update(445)
	}
	before := s.Cents()

	s.Silence()

	if s.FrequencyLen() != 0 || s.NoteLen() != 0 {
		t.Fatalf("histories after Silence = %d, %d, want 0, 0", s.FrequencyLen(), s.NoteLen())
	}
	if got, want := s.Cents(), before*centsRetain; math.Abs(got-want) > 1e-12 {
		t.Errorf("Cents after Silence = %f, want %f", got, want)
	}

	out := s.Update(220)
	if out.Frequency != 220 {
		t.Errorf("first Frequency after Silence = %f, want 220", out.Frequency)
	}
}

func TestSmootherCentsDecay(t *testing.T) {
	s := NewSmoother(1, 1)

	// 445 Hz is 19 whole cents above A4.
	out := s.Update(445)
	if out.RawCents != 19 {
		t.Fatalf("RawCents = %d, want 19", out.RawCents)
	}
	if math.Abs(out.Cents-3.8) > 1e-9 {
		t.Errorf("Cents after one cycle = %f, want 3.8", out.Cents)
	}

	out = s.Update(445)
	if math.Abs(out.Cents-6.84) > 1e-9 {
		t.Errorf("Cents after two cycles = %f, want 6.84", out.Cents)
	}

	s.Reset()
	if s.Cents() != 0 {
		t.Errorf("Cents after Reset = %f, want 0", s.Cents())
	}
}

func TestSmootherStableNote(t *testing.T) {
	const (
		g      = 392.0
		a      = 440.0
		aSharp = 466.16
	)

	tests := []struct {
		desc  string
		freqs []float64
		want  string
	}{
		{"Majority", []float64{a, aSharp, a, g, a}, "A"},
		{"Tie goes to most recent", []float64{a, aSharp, a, aSharp}, "A#"},
		{"Tie after eviction", []float64{g, a, aSharp, aSharp, a}, "A"},
		{"Evicted majority", []float64{g, g, g, a, a, aSharp, aSharp, aSharp}, "A#"},
		{"Single", []float64{g}, "G"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			// One-element frequency history makes each note follow its input.
			s := NewSmoother(1, DefaultNoteHistory)
			var out Smoothed
			for _, f := range tt.freqs {
				out = s.Update(f)
			}
			if out.Note != tt.want {
				t.Errorf("Note = %q, want %q", out.Note, tt.want)
			}
		})
	}
}

func TestSmootherUpdateHotPath(t *testing.T) {
	s := NewSmoother(DefaultFrequencyHistory, DefaultNoteHistory)
	s.Update(440)

	allocs := testing.AllocsPerRun(100, func() {
		s.Update(441)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Smoother.Update, got %.1f", allocs)
	}
}
