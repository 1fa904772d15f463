// Package bench provides the statistical wall-clock timer and the derived
// molecular-dynamics metrics computed from its measurements.
package bench

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Timer measures repeated executions of a single statement.
type Timer struct {
	// Stmt is the statement under measurement. It must be a blocking,
	// synchronous call; its error aborts the measurement.
	Stmt func() error
}

// Timeit executes the statement n times and returns the full distribution of
// per-call elapsed times.
func (t Timer) Timeit(n int) (Measurement, error) {
	if n <= 0 {
		return Measurement{}, fmt.Errorf("trial count must be positive, got %d", n)
	}
	times := make([]float64, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := t.Stmt(); err != nil {
			return Measurement{}, fmt.Errorf("trial %d: %w", i, err)
		}
		times[i] = time.Since(start).Seconds()
	}
	return NewMeasurement(times), nil
}

// Measurement is a statistical sample of per-call elapsed times in seconds.
type Measurement struct {
	sorted []float64
}

// NewMeasurement wraps a sample of elapsed times.
func NewMeasurement(times []float64) Measurement {
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)
	return Measurement{sorted: sorted}
}

// Times returns the sorted sample.
func (m Measurement) Times() []float64 { return m.sorted }

// Median returns the central elapsed-time estimate.
func (m Measurement) Median() float64 {
	n := len(m.sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return m.sorted[n/2]
	}
	return 0.5 * (m.sorted[n/2-1] + m.sorted[n/2])
}

const maxSignificantFigures = 4

// SignificantFigures estimates how many digits of the median are resolved by
// the sample, from the relative width of an interquartile confidence
// interval. Clamped to [1, 4].
func (m Measurement) SignificantFigures() int {
	n := len(m.sorted)
	if n < 2 {
		return maxSignificantFigures
	}
	lower := n / 4
	upper := int(math.Ceil(3 * float64(n) / 4))
	iq := m.sorted[lower:upper]
	if len(iq) < 2 {
		return maxSignificantFigures
	}
	var mean float64
	for _, v := range iq {
		mean += v
	}
	mean /= float64(len(iq))
	var ss float64
	for _, v := range iq {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / float64(len(iq)-1))
	ci := 1.645 * std / math.Sqrt(float64(len(iq)))
	if ci <= 0 {
		return maxSignificantFigures
	}
	rel := math.Log10(m.Median() / ci)
	figs := int(math.Floor(rel))
	if figs < 1 {
		figs = 1
	}
	if figs > maxSignificantFigures {
		figs = maxSignificantFigures
	}
	return figs
}

// Representative returns the central estimate trimmed to the sample's
// significant-figure resolution.
func (m Measurement) Representative() float64 {
	return TrimSigfig(m.Median(), m.SignificantFigures())
}
