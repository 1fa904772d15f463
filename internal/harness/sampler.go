package harness

import (
	"fmt"
	"math/rand"

	"github.com/KuzmaKhrabrov/nequip/internal/data"
)

// SampleStats aggregates the diagnostics printed after sampling.
type SampleStats struct {
	DatasetSize  int
	NumAtoms     int
	NumTypes     int
	AvgEdges     float64
	AvgNeighbors float64
}

// SampleFrames draws a deterministic seeded random subset of nData dataset
// frames. Every sampled frame must have the same atom count; the per-atom
// normalization cannot handle variable-size batches in one run.
func SampleFrames(ds *data.Dataset, nData int, seed int64) ([]data.Frame, SampleStats, error) {
	if nData <= 0 {
		return nil, SampleStats{}, fmt.Errorf("%w: --n-data must be positive, got %d", ErrConfig, nData)
	}
	if nData > ds.Len() {
		return nil, SampleStats{}, fmt.Errorf("%w: --n-data=%d exceeds dataset size %d", ErrConfig, nData, ds.Len())
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(ds.Len())

	frames := make([]data.Frame, 0, nData)
	for _, i := range perm[:nData] {
		fr, err := ds.Frame(i)
		if err != nil {
			return nil, SampleStats{}, fmt.Errorf("materialize frame %d: %w", i, err)
		}
		frames = append(frames, fr)
	}

	nAtoms := frames[0].NumAtoms()
	totalEdges := 0
	for k, fr := range frames {
		if fr.NumAtoms() != nAtoms {
			return nil, SampleStats{}, fmt.Errorf(
				"%w: sampled frame %d has %d atoms, expected %d; benchmarking frames with a variable number of atoms is not supported",
				ErrUnsupportedInput, k, fr.NumAtoms(), nAtoms)
		}
		totalEdges += fr.NumEdges()
	}

	stats := SampleStats{
		DatasetSize:  ds.Len(),
		NumAtoms:     nAtoms,
		NumTypes:     ds.NumTypes(),
		AvgEdges:     float64(totalEdges) / float64(len(frames)),
		AvgNeighbors: float64(totalEdges) / float64(len(frames)*nAtoms),
	}
	return frames, stats, nil
}
