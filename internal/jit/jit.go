// Package jit turns the eager model into its deployed execution form:
// compile, strip training state, serialize round trips, and graph freezing.
package jit

import (
	"errors"
	"fmt"

	"github.com/KuzmaKhrabrov/nequip/internal/config"
	"github.com/KuzmaKhrabrov/nequip/internal/data"
	"github.com/KuzmaKhrabrov/nequip/internal/device"
	"github.com/KuzmaKhrabrov/nequip/internal/model"
)

// ErrCompile marks failures in the compilation chain. Compile failures are
// fatal: there is no fallback to the eager path.
var ErrCompile = errors.New("model compilation failed")

// ErrFrozen is returned when a frozen program is mutated.
var ErrFrozen = errors.New("program is frozen")

// Callable is the capability the execution driver depends on. Both the eager
// model and the compiled program satisfy it.
type Callable interface {
	Call(fr data.Frame) error
}

// Program is the compiled form of the potential: serialized, reloaded, and
// eventually frozen. Treated as immutable and non-introspectable by callers.
type Program struct {
	params     *model.Params
	optimState []float32
	deployed   bool
	frozen     bool
	dev        device.Device
}

// Compile converts an eager model into a program. The model itself is left
// untouched.
func Compile(m *model.Model) (*Program, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", ErrCompile)
	}
	p := m.Params()
	if p == nil || p.NumFeatures <= 0 || p.NumLayers <= 0 || len(p.Embedding) == 0 {
		return nil, fmt.Errorf("%w: model has no parameters", ErrCompile)
	}
	return &Program{
		params:     p.Copy(),
		optimState: append([]float32(nil), m.OptimState()...),
		dev:        m.Device(),
	}, nil
}

// Deploy strips training-only state from the program.
func (p *Program) Deploy() {
	p.optimState = nil
	p.deployed = true
}

// Freeze locks all weights as constants. A frozen program rejects mutation.
func (p *Program) Freeze() {
	p.frozen = true
}

// Frozen reports whether the program has been frozen.
func (p *Program) Frozen() bool { return p.frozen }

// Deployed reports whether training-only state has been stripped.
func (p *Program) Deployed() bool { return p.deployed }

// Device returns the device the program was loaded onto.
func (p *Program) Device() device.Device { return p.dev }

// Call executes the program on a frame.
func (p *Program) Call(fr data.Frame) error {
	return model.Forward(p.params, fr)
}

// SetReadoutBias adjusts the readout bias. Fails on frozen programs; the
// weights of a frozen graph are constants.
func (p *Program) SetReadoutBias(b float32) error {
	if p.frozen {
		return ErrFrozen
	}
	p.params.ReadoutB = b
	return nil
}

// WarmupCalls returns the number of warmup invocations needed before timings
// are meaningful: the execution engine's bailout depth plus a safety margin.
// The depth is a property of the engine configuration, never hardcoded.
func WarmupCalls(cfg *config.Config) int {
	const safetyMargin = 4
	return cfg.GetInt("jit_bailout_depth", 2) + safetyMargin
}
