package bench

import (
	"fmt"
	"math"
)

// TrimSigfig rounds x to n significant figures, discarding spurious precision
// beyond the measurement's statistical resolution.
func TrimSigfig(x float64, n int) float64 {
	if x == 0 || n <= 0 {
		return 0
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	scale := math.Pow(10, magnitude-float64(n))
	return math.Round(x/scale) * scale
}

// SelectUnit chooses a human-appropriate time unit for a duration in seconds,
// returning the unit name and its scale in seconds.
func SelectUnit(t float64) (unit string, scale float64) {
	if t <= 0 {
		return "s", 1
	}
	switch int(math.Floor(math.Log10(t) / 3)) {
	case -3:
		return "ns", 1e-9
	case -2:
		return "us", 1e-6
	case -1:
		return "ms", 1e-3
	}
	return "s", 1
}

// FormatTime renders a duration in seconds with n significant figures and an
// automatically selected unit.
func FormatTime(t float64, n int) string {
	unit, scale := SelectUnit(t)
	return fmt.Sprintf("%.*g%s", n, t/scale, unit)
}
