package bench

import (
	"errors"
	"math"
	"testing"
)

func TestTimeitRunsExactlyNTrials(t *testing.T) {
	calls := 0
	timer := Timer{Stmt: func() error {
		calls++
		return nil
	}}
	m, err := timer.Timeit(7)
	if err != nil {
		t.Fatalf("Timeit failed: %v", err)
	}
	if calls != 7 {
		t.Errorf("expected 7 invocations, got %d", calls)
	}
	if len(m.Times()) != 7 {
		t.Errorf("expected 7 samples, got %d", len(m.Times()))
	}
}

func TestTimeitRejectsNonPositiveCount(t *testing.T) {
	timer := Timer{Stmt: func() error { return nil }}
	if _, err := timer.Timeit(0); err == nil {
		t.Fatal("expected error for n=0")
	}
	if _, err := timer.Timeit(-3); err == nil {
		t.Fatal("expected error for negative n")
	}
}

func TestTimeitPropagatesStmtError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	timer := Timer{Stmt: func() error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	}}
	if _, err := timer.Timeit(10); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped stmt error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected measurement to stop at failing trial, got %d calls", calls)
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		times []float64
		want  float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{5}, 5},
	}
	for _, tc := range cases {
		if got := NewMeasurement(tc.times).Median(); got != tc.want {
			t.Errorf("Median(%v) = %v, want %v", tc.times, got, tc.want)
		}
	}
}

func TestSignificantFiguresBounds(t *testing.T) {
	// A tight sample resolves the maximum number of digits.
	tight := make([]float64, 100)
	for i := range tight {
		tight[i] = 1.0 + 1e-9*float64(i)
	}
	if got := NewMeasurement(tight).SignificantFigures(); got != maxSignificantFigures {
		t.Errorf("tight sample: got %d figures, want %d", got, maxSignificantFigures)
	}

	// A wildly noisy sample resolves only one digit.
	noisy := []float64{0.001, 0.5, 1.0, 2.0, 10.0, 0.01, 5.0, 0.1}
	got := NewMeasurement(noisy).SignificantFigures()
	if got < 1 || got > maxSignificantFigures {
		t.Errorf("noisy sample: %d figures out of [1, %d]", got, maxSignificantFigures)
	}

	if got := NewMeasurement([]float64{1.5}).SignificantFigures(); got != maxSignificantFigures {
		t.Errorf("single sample: got %d, want %d", got, maxSignificantFigures)
	}
}

func TestRepresentativeIsTrimmedMedian(t *testing.T) {
	m := NewMeasurement([]float64{0.0123456, 0.0123457, 0.0123455})
	want := TrimSigfig(m.Median(), m.SignificantFigures())
	if got := m.Representative(); math.Abs(got-want) > 1e-15 {
		t.Errorf("Representative() = %v, want %v", got, want)
	}
}
