package jit

import (
	"fmt"
	"os"

	"github.com/KuzmaKhrabrov/nequip/internal/model"
)

// roundTripHook, when set, observes each serialize/reload cycle. Test hook.
var roundTripHook func()

// PrepareForInference runs the full deployment chain on an eager model:
// compile, strip training state, serialize/reload, freeze, serialize/reload
// again. The two round trips bracketing the freeze are deliberate: freshly
// compiled graphs and frozen graphs have both historically behaved
// differently from ones that have been through a save/load cycle. Keep both.
func PrepareForInference(m *model.Model) (Callable, error) {
	prog, err := Compile(m)
	if err != nil {
		return nil, err
	}
	prog.Deploy()

	path, cleanup, err := tempProgramFile()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	prog, err = roundTrip(prog, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	prog.Freeze()
	prog, err = roundTrip(prog, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return prog, nil
}

// roundTrip serializes the program to path and reloads it.
func roundTrip(p *Program, path string) (*Program, error) {
	if err := Save(p, path); err != nil {
		return nil, err
	}
	loaded, err := Load(path, p.dev)
	if err != nil {
		return nil, err
	}
	if roundTripHook != nil {
		roundTripHook()
	}
	return loaded, nil
}

func tempProgramFile() (string, func(), error) {
	f, err := os.CreateTemp("", "nequip-program-*.bin")
	if err != nil {
		return "", nil, fmt.Errorf("temp program file: %w", err)
	}
	path := f.Name()
	f.Close()
	return path, func() { os.Remove(path) }, nil
}
