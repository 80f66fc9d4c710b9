// SPDX-License-Identifier: MIT
package audio

import (
	"slices"
	"testing"
)

func TestSlidingWindowMono(t *testing.T) {
	w := newSlidingWindow(4)

	w.push([]float32{1, 2}, 1)
	if w.primed() {
		t.Fatal("window primed after 2 of 4 samples")
	}

	w.push([]float32{3, 4}, 1)
	if !w.primed() {
		t.Fatal("window not primed after 4 samples")
	}

	w.push([]float32{5}, 1)
	got := make([]float32, 4)
	w.snapshot(got)
	if want := []float32{2, 3, 4, 5}; !slices.Equal(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
}

func TestSlidingWindowInterleaved(t *testing.T) {
	w := newSlidingWindow(3)

	// Frames are (L, R); only L is kept.
	w.push([]float32{1, -1, 2, -2, 3, -3}, 2)

	got := make([]float32, 3)
	w.snapshot(got)
	if want := []float32{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
}

func TestSlidingWindowOversizedPush(t *testing.T) {
	w := newSlidingWindow(3)
	w.push([]float32{1, 2, 3, 4, 5, 6}, 1)

	got := make([]float32, 3)
	w.snapshot(got)
	if want := []float32{4, 5, 6}; !slices.Equal(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
	if !w.primed() {
		t.Error("window not primed")
	}
}

func TestSlidingWindowPartialFrame(t *testing.T) {
	w := newSlidingWindow(4)
	w.push([]float32{1, -1, 2}, 2)

	if w.filled != 1 {
		t.Errorf("filled = %d, want 1", w.filled)
	}
}

func TestSlidingWindowReset(t *testing.T) {
	w := newSlidingWindow(2)
	w.push([]float32{1, 2}, 1)
	w.reset()

	if w.primed() || w.filled != 0 {
		t.Error("reset did not empty the window")
	}
	if !slices.Equal(w.buf, []float32{0, 0}) {
		t.Errorf("buf = %v after reset", w.buf)
	}
}

func TestSlidingWindowZeroAllocs(t *testing.T) {
	w := newSlidingWindow(2048)
	in := make([]float32, 512*2)
	dst := make([]float32, 2048)

	allocs := testing.AllocsPerRun(100, func() {
		w.push(in, 2)
		w.snapshot(dst)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in window push, got %.1f", allocs)
	}
}
