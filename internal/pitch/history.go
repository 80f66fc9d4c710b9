// SPDX-License-Identifier: MIT
package pitch

// History is a fixed-capacity FIFO. Pushing onto a full History evicts the
// oldest element. It is not safe for concurrent use; the owner serialises access.
type History[T any] struct {
	values []T
	head   int // Index of the oldest element.
	count  int // Number of valid elements.
}

// NewHistory creates an empty History holding at most capacity elements.
// A capacity below one is raised to one.
func NewHistory[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &History[T]{values: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the History is full.
func (h *History[T]) Push(v T) {
	size := len(h.values)
	if h.count < size {
		h.values[(h.head+h.count)%size] = v
		h.count++
		return
	}

	h.values[h.head] = v
	h.head = (h.head + 1) % size
}

// Len returns the number of stored elements.
func (h *History[T]) Len() int {
	return h.count
}

// Cap returns the maximum number of elements.
func (h *History[T]) Cap() int {
	return len(h.values)
}

// At returns the i-th element counting from the oldest. It panics when i is
// out of range, like a slice index.
func (h *History[T]) At(i int) T {
	if i < 0 || i >= h.count {
		panic("pitch: history index out of range")
	}
	return h.values[(h.head+i)%len(h.values)]
}

// AppendTo appends the stored elements, oldest first, to dst.
func (h *History[T]) AppendTo(dst []T) []T {
	for i := range h.count {
		dst = append(dst, h.values[(h.head+i)%len(h.values)])
	}
	return dst
}

// Reset drops every element.
func (h *History[T]) Reset() {
	clear(h.values)
	h.head = 0
	h.count = 0
}
