// SPDX-License-Identifier: MIT
package audio

// slidingWindow keeps the most recent mono samples of an interleaved input
// stream. It never allocates after construction.
type slidingWindow struct {
	buf    []float32
	filled int
}

func newSlidingWindow(size int) *slidingWindow {
	return &slidingWindow{buf: make([]float32, size)}
}

// push appends channel 0 of the interleaved frames in, dropping the oldest
// samples once the window is full. Trailing partial frames are ignored.
func (w *slidingWindow) push(in []float32, channels int) {
	if channels < 1 {
		channels = 1
	}
	frames := len(in) / channels
	size := len(w.buf)

	skip := 0
	if frames > size {
		skip = frames - size
		frames = size
	}

	copy(w.buf, w.buf[frames:])
	dst := w.buf[size-frames:]
	for i := range dst {
		dst[i] = in[(skip+i)*channels]
	}

	w.filled = min(size, w.filled+frames)
}

// primed reports whether the window holds a full block of samples.
func (w *slidingWindow) primed() bool {
	return w.filled == len(w.buf)
}

// snapshot copies the window, oldest sample first, into dst.
func (w *slidingWindow) snapshot(dst []float32) {
	copy(dst, w.buf)
}

// reset empties the window.
func (w *slidingWindow) reset() {
	clear(w.buf)
	w.filled = 0
}
