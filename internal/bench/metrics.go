package bench

// Derived MD metrics. Pure functions of the representative per-call time.

// SecondsPerDay is the wall-clock budget the ns/day projection divides up.
const SecondsPerDay = 86400.0

// PerAtomTime normalizes a per-call elapsed time (seconds) by atom count.
func PerAtomTime(t float64, atoms int) float64 {
	return t / float64(atoms)
}

// NsPerDay projects simulated nanoseconds of dynamics per real day for a
// per-call time t (seconds) and an integration timestep in femtoseconds.
// Seconds-per-day over seconds-per-step gives steps per day; times fs per
// step, converted fs to ns. Assumes perfectly linear scaling of cost with
// step count, which is almost never true in practice.
func NsPerDay(t, timestepFS float64) float64 {
	return (SecondsPerDay / t) * timestepFS * 1e-6
}
