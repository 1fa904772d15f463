// Package harness wires the measurement pipeline: frame sampling, model
// preparation, warmup, and the tracing or timing phase.
package harness

import "errors"

// ErrConfig marks fail-fast configuration errors: unreadable config, bad
// device, sample counts out of range.
var ErrConfig = errors.New("invalid configuration")

// ErrUnsupportedInput marks inputs the harness permanently cannot handle,
// distinct from a generic crash. Variable atom counts across sampled frames
// break the per-atom normalization downstream.
var ErrUnsupportedInput = errors.New("unsupported variable-size input")
