package jit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KuzmaKhrabrov/nequip/internal/config"
	"github.com/KuzmaKhrabrov/nequip/internal/data"
	"github.com/KuzmaKhrabrov/nequip/internal/device"
	"github.com/KuzmaKhrabrov/nequip/internal/model"
)

const testTraj = `3
Lattice="10.0 0.0 0.0 0.0 10.0 0.0 0.0 0.0 10.0"
Si 0.0 0.0 0.0
Si 2.0 0.0 0.0
O  0.0 2.0 0.0
`

func buildModel(t *testing.T) (*model.Model, *data.Dataset) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traj.extxyz")
	if err := os.WriteFile(path, []byte(testTraj), 0o644); err != nil {
		t.Fatalf("write trajectory: %v", err)
	}
	ds, err := data.Open(path, 4.0)
	if err != nil {
		t.Fatalf("open dataset: %v", err)
	}
	m, err := model.FromConfig(config.Defaults(), ds)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m, ds
}

func totalEnergy(t *testing.T, c Callable, fr data.Frame) float32 {
	t.Helper()
	cp := fr.Copy()
	if err := c.Call(cp); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	return cp[data.KeyTotalEnergy].F32[0]
}

func TestCompileMatchesEager(t *testing.T) {
	m, ds := buildModel(t)
	fr, err := ds.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	prog, err := Compile(m)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got, want := totalEnergy(t, prog, fr), totalEnergy(t, m, fr); got != want {
		t.Errorf("compiled output %v differs from eager %v", got, want)
	}
}

func TestCompileNilModel(t *testing.T) {
	if _, err := Compile(nil); !errors.Is(err, ErrCompile) {
		t.Fatalf("expected ErrCompile, got %v", err)
	}
}

func TestCompileCopiesWeights(t *testing.T) {
	m, ds := buildModel(t)
	fr, _ := ds.Frame(0)
	prog, err := Compile(m)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	before := totalEnergy(t, prog, fr)
	m.Params().ReadoutB = 100
	if after := totalEnergy(t, prog, fr); after != before {
		t.Error("mutating the eager model changed the compiled program")
	}
}

func TestSaveLoadPreservesOutput(t *testing.T) {
	m, ds := buildModel(t)
	fr, _ := ds.Frame(0)
	prog, err := Compile(m)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	prog.Deploy()
	prog.Freeze()

	path := filepath.Join(t.TempDir(), "program.bin")
	if err := Save(prog, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path, device.Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Deployed() || !loaded.Frozen() {
		t.Error("deploy/freeze flags lost in the round trip")
	}
	if got, want := totalEnergy(t, loaded, fr), totalEnergy(t, prog, fr); got != want {
		t.Errorf("round-tripped output %v differs from original %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.bin"), device.Default()); err == nil {
		t.Fatal("expected error for missing program file")
	}
}

func TestFreezeRejectsMutation(t *testing.T) {
	m, _ := buildModel(t)
	prog, err := Compile(m)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if err := prog.SetReadoutBias(1.5); err != nil {
		t.Fatalf("mutation before freeze should work: %v", err)
	}
	prog.Freeze()
	if err := prog.SetReadoutBias(2.5); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestDeployStripsTrainingState(t *testing.T) {
	m, _ := buildModel(t)
	prog, err := Compile(m)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(prog.optimState) == 0 {
		t.Fatal("compiled program should carry training state before deploy")
	}
	prog.Deploy()
	if prog.optimState != nil {
		t.Error("Deploy left training state behind")
	}
}

func TestPrepareForInference(t *testing.T) {
	m, ds := buildModel(t)
	fr, _ := ds.Frame(0)
	eager := totalEnergy(t, m, fr)

	roundTrips := 0
	roundTripHook = func() { roundTrips++ }
	defer func() { roundTripHook = nil }()

	prepared, err := PrepareForInference(m)
	if err != nil {
		t.Fatalf("PrepareForInference failed: %v", err)
	}
	if roundTrips != 2 {
		t.Errorf("expected exactly 2 serialize/reload round trips, got %d", roundTrips)
	}
	prog, ok := prepared.(*Program)
	if !ok {
		t.Fatalf("prepared callable is %T, want *Program", prepared)
	}
	if !prog.Frozen() || !prog.Deployed() {
		t.Error("prepared program must be deployed and frozen")
	}
	if got := totalEnergy(t, prepared, fr); got != eager {
		t.Errorf("prepared output %v differs from eager %v", got, eager)
	}
}

func TestWarmupCalls(t *testing.T) {
	cfg := config.Defaults()
	if got := WarmupCalls(cfg); got != 6 {
		t.Errorf("WarmupCalls(defaults) = %d, want 6 (depth 2 + margin 4)", got)
	}
	cfg.Set("jit_bailout_depth", 11)
	if got := WarmupCalls(cfg); got != 15 {
		t.Errorf("WarmupCalls(depth 11) = %d, want 15", got)
	}
}
