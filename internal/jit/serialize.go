package jit

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/mmap"

	"github.com/KuzmaKhrabrov/nequip/internal/device"
	"github.com/KuzmaKhrabrov/nequip/internal/model"
)

// programFile is the on-disk representation of a program.
type programFile struct {
	Params     model.Params
	OptimState []float32
	Deployed   bool
	Frozen     bool
}

// Save serializes the program to path: gob encoded, zstd compressed.
func Save(p *Program, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create program file: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	pf := programFile{
		Params:     *p.params,
		OptimState: p.optimState,
		Deployed:   p.deployed,
		Frozen:     p.frozen,
	}
	if err := gob.NewEncoder(zw).Encode(&pf); err != nil {
		zw.Close()
		return fmt.Errorf("encode program: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush program: %w", err)
	}
	return f.Sync()
}

// Load deserializes a program from path onto the given device. The file is
// read through a memory mapping.
func Load(path string, dev device.Device) (*Program, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap program file: %w", err)
	}
	defer r.Close()

	zr, err := zstd.NewReader(io.NewSectionReader(r, 0, int64(r.Len())))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var pf programFile
	if err := gob.NewDecoder(zr).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return &Program{
		params:     &pf.Params,
		optimState: pf.OptimState,
		deployed:   pf.Deployed,
		frozen:     pf.Frozen,
		dev:        dev,
	}, nil
}
