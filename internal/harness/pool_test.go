package harness

import (
	"testing"

	"github.com/KuzmaKhrabrov/nequip/internal/data"
)

func markedFrame(v float32) data.Frame {
	return data.Frame{
		data.KeyPositions: data.NewF32([]int{1, 3}, []float32{v, 0, 0}),
		data.KeyAtomTypes: data.NewI64([]int{1}, []int64{0}),
		data.KeyEdgeIndex: data.NewI64([]int{2, 0}, nil),
	}
}

func mark(fr data.Frame) float32 {
	return fr[data.KeyPositions].F32[0]
}

func TestPoolCyclesWithPeriod(t *testing.T) {
	pool := NewPool([]data.Frame{markedFrame(1), markedFrame(2), markedFrame(3)})
	want := []float32{1, 2, 3, 1, 2, 3, 1}
	for i, w := range want {
		if got := mark(pool.Next()); got != w {
			t.Fatalf("retrieval %d: frame %v, want %v", i, got, w)
		}
	}
}

func TestPoolReset(t *testing.T) {
	pool := NewPool([]data.Frame{markedFrame(1), markedFrame(2)})
	pool.Next()
	pool.Reset()
	if got := mark(pool.Next()); got != 1 {
		t.Fatalf("after Reset: frame %v, want 1", got)
	}
	if pool.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pool.Len())
	}
}

func TestPoolHandsOutCopies(t *testing.T) {
	pool := NewPool([]data.Frame{markedFrame(1)})
	fr := pool.Next()
	// Simulate a model writing scratch state into the frame.
	fr[data.KeyPositions].F32[0] = 99
	fr["scratch"] = data.NewF32([]int{1}, []float32{1})

	again := pool.Next()
	if mark(again) != 1 {
		t.Error("in-place mutation of a retrieved frame corrupted the pool")
	}
	if _, ok := again["scratch"]; ok {
		t.Error("scratch field leaked back into the pool")
	}
}
