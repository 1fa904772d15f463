package data

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// rawFrame is one parsed trajectory frame before tensor materialization.
type rawFrame struct {
	symbols   []string
	positions []float64 // flattened [n][3]
	cell      []float64 // flattened 3x3 row-major, nil if non-periodic
}

// readExtXYZ memory-maps an extended-XYZ trajectory file and parses every
// frame in it. The mapping lives only for the duration of the parse; frames
// own their data afterwards.
func readExtXYZ(path string) ([]rawFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dataset: %w", err)
	}
	defer m.Unmap()

	return parseExtXYZ(string(m))
}

func parseExtXYZ(text string) ([]rawFrame, error) {
	lines := strings.Split(text, "\n")
	var frames []rawFrame
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		nAtoms, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if err != nil || nAtoms <= 0 {
			return nil, fmt.Errorf("frame %d: bad atom count line %q", len(frames), lines[i])
		}
		if i+1 >= len(lines) {
			return nil, fmt.Errorf("frame %d: missing comment line", len(frames))
		}

		fr := rawFrame{
			symbols:   make([]string, 0, nAtoms),
			positions: make([]float64, 0, 3*nAtoms),
		}
		cell, err := parseLattice(lines[i+1])
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		fr.cell = cell

		for a := 0; a < nAtoms; a++ {
			idx := i + 2 + a
			if idx >= len(lines) {
				return nil, fmt.Errorf("frame %d: truncated at atom %d", len(frames), a)
			}
			fields := strings.Fields(lines[idx])
			if len(fields) < 4 {
				return nil, fmt.Errorf("frame %d atom %d: want symbol + xyz, got %q", len(frames), a, lines[idx])
			}
			fr.symbols = append(fr.symbols, fields[0])
			for c := 1; c <= 3; c++ {
				v, err := strconv.ParseFloat(fields[c], 64)
				if err != nil {
					return nil, fmt.Errorf("frame %d atom %d: bad coordinate %q", len(frames), a, fields[c])
				}
				fr.positions = append(fr.positions, v)
			}
		}
		frames = append(frames, fr)
		i += 2 + nAtoms
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames parsed")
	}
	return frames, nil
}

// parseLattice extracts the Lattice="..." entry from an extxyz comment line.
// Returns nil (non-periodic) when absent.
func parseLattice(comment string) ([]float64, error) {
	const key = `Lattice="`
	start := strings.Index(comment, key)
	if start < 0 {
		return nil, nil
	}
	rest := comment[start+len(key):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return nil, fmt.Errorf("unterminated Lattice entry")
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return nil, fmt.Errorf("Lattice wants 9 components, got %d", len(fields))
	}
	cell := make([]float64, 9)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad Lattice component %q", f)
		}
		cell[i] = v
	}
	return cell, nil
}
