package data

import (
	"os"
	"path/filepath"
	"testing"
)

const twoFrameTraj = `3
Lattice="10.0 0.0 0.0 0.0 10.0 0.0 0.0 0.0 10.0" Properties=species:S:1:pos:R:3
Si 0.0 0.0 0.0
Si 2.0 0.0 0.0
O  0.0 2.0 0.0
3
Lattice="10.0 0.0 0.0 0.0 10.0 0.0 0.0 0.0 10.0" Properties=species:S:1:pos:R:3
Si 0.5 0.0 0.0
Si 2.5 0.0 0.0
O  0.5 2.0 0.0
`

func writeTraj(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traj.extxyz")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write trajectory: %v", err)
	}
	return path
}

func TestParseExtXYZ(t *testing.T) {
	frames, err := parseExtXYZ(twoFrameTraj)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	fr := frames[0]
	if len(fr.symbols) != 3 {
		t.Fatalf("expected 3 atoms, got %d", len(fr.symbols))
	}
	if fr.symbols[2] != "O" {
		t.Errorf("expected third atom O, got %s", fr.symbols[2])
	}
	if fr.positions[3] != 2.0 {
		t.Errorf("expected atom 1 x=2.0, got %v", fr.positions[3])
	}
	if fr.cell == nil || fr.cell[0] != 10.0 || fr.cell[4] != 10.0 {
		t.Errorf("bad lattice: %v", fr.cell)
	}
}

func TestParseExtXYZNoLattice(t *testing.T) {
	frames, err := parseExtXYZ("2\nmolecule frame\nH 0 0 0\nH 0.74 0 0\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if frames[0].cell != nil {
		t.Errorf("expected non-periodic frame, got cell %v", frames[0].cell)
	}
}

func TestParseExtXYZErrors(t *testing.T) {
	cases := map[string]string{
		"bad count":       "x\ncomment\nH 0 0 0\n",
		"truncated atoms": "3\ncomment\nH 0 0 0\n",
		"bad coordinate":  "1\ncomment\nH 0 zero 0\n",
		"bad lattice":     "1\nLattice=\"1 2 3\"\nH 0 0 0\n",
		"empty":           "",
	}
	for name, content := range cases {
		if _, err := parseExtXYZ(content); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestReadExtXYZFromFile(t *testing.T) {
	path := writeTraj(t, twoFrameTraj)
	frames, err := readExtXYZ(path)
	if err != nil {
		t.Fatalf("readExtXYZ failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
}

func TestReadExtXYZMissingFile(t *testing.T) {
	if _, err := readExtXYZ(filepath.Join(t.TempDir(), "nope.extxyz")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
