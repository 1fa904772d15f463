package data

import "math"

// neighborList builds the directed edge list of all ordered atom pairs within
// cutoff. When a cell is present the minimum-image convention is applied,
// which is valid for cutoffs below half the shortest cell vector — the usual
// regime for interatomic potentials.
func neighborList(positions []float64, cell []float64, cutoff float64) (src, dst []int64) {
	n := len(positions) / 3
	cutoff2 := cutoff * cutoff
	var inv [9]float64
	periodic := cell != nil
	if periodic {
		inv = invert3(cell)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx := positions[3*j] - positions[3*i]
			dy := positions[3*j+1] - positions[3*i+1]
			dz := positions[3*j+2] - positions[3*i+2]
			if periodic {
				dx, dy, dz = minimumImage(dx, dy, dz, cell, inv)
			}
			if dx*dx+dy*dy+dz*dz <= cutoff2 {
				src = append(src, int64(i))
				dst = append(dst, int64(j))
			}
		}
	}
	return src, dst
}

// minimumImage wraps a displacement vector into the primary cell image.
func minimumImage(dx, dy, dz float64, cell []float64, inv [9]float64) (float64, float64, float64) {
	// Fractional coordinates of the displacement.
	fx := inv[0]*dx + inv[1]*dy + inv[2]*dz
	fy := inv[3]*dx + inv[4]*dy + inv[5]*dz
	fz := inv[6]*dx + inv[7]*dy + inv[8]*dz
	fx -= math.Round(fx)
	fy -= math.Round(fy)
	fz -= math.Round(fz)
	// Back to cartesian. Cell rows are the lattice vectors.
	x := fx*cell[0] + fy*cell[3] + fz*cell[6]
	y := fx*cell[1] + fy*cell[4] + fz*cell[7]
	z := fx*cell[2] + fy*cell[5] + fz*cell[8]
	return x, y, z
}

// invert3 inverts the transpose of a row-major 3x3 lattice matrix, giving the
// cartesian-to-fractional transform.
func invert3(cell []float64) [9]float64 {
	// Lattice vectors as columns of M.
	a, b, c := cell[0], cell[3], cell[6]
	d, e, f := cell[1], cell[4], cell[7]
	g, h, i := cell[2], cell[5], cell[8]
	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	s := 1.0 / det
	return [9]float64{
		s * (e*i - f*h), s * (c*h - b*i), s * (b*f - c*e),
		s * (f*g - d*i), s * (a*i - c*g), s * (c*d - a*f),
		s * (d*h - e*g), s * (b*g - a*h), s * (a*e - b*d),
	}
}
