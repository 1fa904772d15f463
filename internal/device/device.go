// Package device selects and describes the compute device a run targets.
package device

import (
	"fmt"
	"os"
	"strings"
)

// Kind distinguishes the general-purpose processor from an accelerator.
type Kind int

const (
	CPU Kind = iota
	CUDA
)

// Device identifies the compute target for a run. The harness executes on the
// CPU backend; the device abstraction keeps the driver device-agnostic and
// validates user requests up front.
type Device struct {
	kind Kind
	name string
}

func (d Device) Kind() Kind   { return d.kind }
func (d Device) Name() string { return d.name }

func (d Device) String() string { return d.name }

// IsAccelerator reports whether the device is a CUDA accelerator.
func (d Device) IsAccelerator() bool { return d.kind == CUDA }

// Parse resolves a device name from the command line. An empty name selects
// the default device. Unknown names and unavailable accelerators are
// configuration errors.
func Parse(name string) (Device, error) {
	if name == "" {
		return Default(), nil
	}
	lower := strings.ToLower(name)
	switch {
	case lower == "cpu":
		return Device{kind: CPU, name: "cpu"}, nil
	case lower == "cuda" || strings.HasPrefix(lower, "cuda:"):
		if !cudaAvailable() {
			return Device{}, fmt.Errorf("device %q requested but no CUDA accelerator is available", name)
		}
		return Device{kind: CUDA, name: lower}, nil
	}
	return Device{}, fmt.Errorf("unknown device %q", name)
}

// Default returns the accelerator if one is detected, else the CPU.
func Default() Device {
	if cudaAvailable() {
		return Device{kind: CUDA, name: "cuda"}
	}
	return Device{kind: CPU, name: "cpu"}
}

// cudaAvailable probes for an NVIDIA device node. Detection only; kernels
// still execute on the CPU backend.
func cudaAvailable() bool {
	for _, p := range []string{"/dev/nvidia0", "/dev/nvidiactl"} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}
