// SPDX-License-Identifier: MIT
package pitch

import "math"

// Pitch standard anchor: A4 is note index 69 at 440 Hz.
const (
	ReferenceFrequency = 440.0
	ReferenceNote      = 69
	semitonesPerOctave = 12
	centsPerOctave     = 1200
)

var noteNames = [semitonesPerOctave]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// NoteIndex returns the nearest equal-tempered note index for freq. Halfway
// values round up. freq must be positive and finite.
func NoteIndex(freq float64) int {
	semitones := semitonesPerOctave * math.Log2(freq/ReferenceFrequency)
	return int(math.Floor(semitones+0.5)) + ReferenceNote
}

// NoteFrequency returns the exact frequency of note index n.
func NoteFrequency(n int) float64 {
	return ReferenceFrequency * math.Pow(2, float64(n-ReferenceNote)/semitonesPerOctave)
}

// CentsOffset returns the signed distance of freq from note n, floored to
// whole cents. Negative is flat, positive is sharp.
func CentsOffset(freq float64, n int) int {
	return int(math.Floor(centsPerOctave * math.Log2(freq/NoteFrequency(n))))
}

// NoteName maps a note index onto the twelve-name chromatic alphabet.
func NoteName(n int) string {
	return noteNames[((n%semitonesPerOctave)+semitonesPerOctave)%semitonesPerOctave]
}

// Octave returns the scientific pitch octave of note index n (60 is C4).
func Octave(n int) int {
	return int(math.Floor(float64(n)/semitonesPerOctave)) - 1
}
