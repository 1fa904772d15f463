package data

import "testing"

func TestNeighborListOpenBoundary(t *testing.T) {
	// Three collinear atoms, 2.0 apart. Cutoff 2.5 links nearest neighbors
	// only, in both directions.
	pos := []float64{0, 0, 0, 2, 0, 0, 4, 0, 0}
	src, dst := neighborList(pos, nil, 2.5)
	if len(src) != 4 {
		t.Fatalf("expected 4 directed edges, got %d", len(src))
	}
	counts := map[[2]int64]bool{}
	for i := range src {
		counts[[2]int64{src[i], dst[i]}] = true
	}
	for _, want := range [][2]int64{{0, 1}, {1, 0}, {1, 2}, {2, 1}} {
		if !counts[want] {
			t.Errorf("missing edge %v", want)
		}
	}
	if counts[[2]int64{0, 2}] {
		t.Error("atoms 4.0 apart must not be neighbors at cutoff 2.5")
	}
}

func TestNeighborListMinimumImage(t *testing.T) {
	// Two atoms near opposite faces of a 10x10x10 cell: 9.0 apart directly,
	// 1.0 apart through the periodic boundary.
	cell := []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}
	pos := []float64{0.5, 5, 5, 9.5, 5, 5}
	src, _ := neighborList(pos, cell, 2.0)
	if len(src) != 2 {
		t.Fatalf("expected 2 directed edges through the boundary, got %d", len(src))
	}

	// Without the cell they are out of range.
	src, _ = neighborList(pos, nil, 2.0)
	if len(src) != 0 {
		t.Fatalf("expected no edges without periodicity, got %d", len(src))
	}
}

func TestNeighborListNoSelfEdges(t *testing.T) {
	pos := []float64{0, 0, 0, 1, 0, 0}
	src, dst := neighborList(pos, nil, 5.0)
	for i := range src {
		if src[i] == dst[i] {
			t.Fatalf("self edge %d -> %d", src[i], dst[i])
		}
	}
}
