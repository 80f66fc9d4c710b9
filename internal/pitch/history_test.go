package pitch

import (
	"slices"
	"testing"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory[int](3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
		if h.Len() > h.Cap() {
			t.Fatalf("Len %d exceeds Cap %d", h.Len(), h.Cap())
		}
	}

	if got := h.AppendTo(nil); !slices.Equal(got, []int{3, 4, 5}) {
		t.Errorf("contents = %v, want [3 4 5]", got)
	}
	if h.At(0) != 3 || h.At(2) != 5 {
		t.Errorf("At(0), At(2) = %d, %d, want 3, 5", h.At(0), h.At(2))
	}
}

func TestHistoryPartialFill(t *testing.T) {
	h := NewHistory[string](4)
	h.Push("a")
	h.Push("b")

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if got := h.AppendTo([]string{"x"}); !slices.Equal(got, []string{"x", "a", "b"}) {
		t.Errorf("AppendTo = %v, want [x a b]", got)
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory[float64](2)
	h.Push(1)
	h.Push(2)
	h.Push(3)
	h.Reset()

	if h.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", h.Len())
	}

	h.Push(4)
	if got := h.AppendTo(nil); !slices.Equal(got, []float64{4}) {
		t.Errorf("contents after Reset = %v, want [4]", got)
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory[int](0)
	if h.Cap() != 1 {
		t.Errorf("Cap = %d, want 1", h.Cap())
	}
}

func TestHistoryAtOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At on an empty History did not panic")
		}
	}()
	NewHistory[int](2).At(0)
}
