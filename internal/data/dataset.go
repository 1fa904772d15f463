package data

import (
	"fmt"
	"sort"

	"github.com/KuzmaKhrabrov/nequip/internal/config"
)

// TypeMapper maps chemical symbols to dense atom-type indices. The mapping is
// built from every species seen in the dataset, in sorted symbol order, so it
// is stable across runs.
type TypeMapper struct {
	symbols []string
	index   map[string]int64
}

func newTypeMapper(frames []rawFrame) *TypeMapper {
	seen := map[string]bool{}
	for _, fr := range frames {
		for _, s := range fr.symbols {
			seen[s] = true
		}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	index := make(map[string]int64, len(symbols))
	for i, s := range symbols {
		index[s] = int64(i)
	}
	return &TypeMapper{symbols: symbols, index: index}
}

// NumTypes returns the number of distinct atom types in the dataset.
func (tm *TypeMapper) NumTypes() int { return len(tm.symbols) }

// Type returns the dense index for a chemical symbol.
func (tm *TypeMapper) Type(symbol string) (int64, bool) {
	t, ok := tm.index[symbol]
	return t, ok
}

// Dataset is a fixed-length, randomly indexable collection of input frames
// read from an extended-XYZ trajectory. Neighbor lists are built lazily per
// frame at the configured cutoff.
type Dataset struct {
	frames []rawFrame
	mapper *TypeMapper
	rMax   float64
}

// FromConfig loads the dataset named by the configuration. Required keys:
// dataset_file_name; the neighbor cutoff comes from r_max.
func FromConfig(cfg *config.Config) (*Dataset, error) {
	path := cfg.GetString("dataset_file_name", "")
	if path == "" {
		return nil, fmt.Errorf("config is missing dataset_file_name")
	}
	return Open(path, cfg.GetFloat("r_max", 4.0))
}

// Open reads a trajectory file and prepares a dataset over it.
func Open(path string, rMax float64) (*Dataset, error) {
	frames, err := readExtXYZ(path)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		frames: frames,
		mapper: newTypeMapper(frames),
		rMax:   rMax,
	}, nil
}

// Len returns the number of frames in the dataset.
func (d *Dataset) Len() int { return len(d.frames) }

// NumTypes returns the atom-type cardinality of the dataset.
func (d *Dataset) NumTypes() int { return d.mapper.NumTypes() }

// TypeMapper exposes the symbol-to-type mapping.
func (d *Dataset) TypeMapper() *TypeMapper { return d.mapper }

// Frame materializes frame i: positions, atom types, and the neighbor edge
// index at the dataset cutoff.
func (d *Dataset) Frame(i int) (Frame, error) {
	if i < 0 || i >= len(d.frames) {
		return nil, fmt.Errorf("frame index %d out of range [0, %d)", i, len(d.frames))
	}
	raw := d.frames[i]
	n := len(raw.symbols)

	pos := make([]float32, 3*n)
	for k, v := range raw.positions {
		pos[k] = float32(v)
	}

	types := make([]int64, n)
	for a, s := range raw.symbols {
		t, ok := d.mapper.Type(s)
		if !ok {
			return nil, fmt.Errorf("frame %d: unknown species %q", i, s)
		}
		types[a] = t
	}

	src, dst := neighborList(raw.positions, raw.cell, d.rMax)
	edges := make([]int64, 0, 2*len(src))
	edges = append(edges, src...)
	edges = append(edges, dst...)

	fr := Frame{
		KeyPositions: NewF32([]int{n, 3}, pos),
		KeyAtomTypes: NewI64([]int{n}, types),
		KeyEdgeIndex: NewI64([]int{2, len(src)}, edges),
	}
	if raw.cell != nil {
		cell := make([]float32, 9)
		for k, v := range raw.cell {
			cell[k] = float32(v)
		}
		fr[KeyCell] = NewF32([]int{3, 3}, cell)
	}
	return fr, nil
}
