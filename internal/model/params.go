// Package model builds the graph-neural-network interatomic potential from a
// run configuration and executes its forward pass.
package model

import (
	"fmt"
	"math"

	"github.com/KuzmaKhrabrov/nequip/internal/data"
)

// LayerParams holds the weights of one message-passing layer.
type LayerParams struct {
	SelfW   []float32 // [F*F] self-interaction
	MsgW    []float32 // [F*F] neighbor message projection
	RadialW []float32 // [B*F] radial-basis to per-feature edge weights
	Bias    []float32 // [F]
}

// Params is the complete weight set of the potential, shared between the
// eager model and its compiled form.
type Params struct {
	NumTypes    int
	NumFeatures int
	NumBasis    int
	NumLayers   int
	RMax        float64

	Embedding []float32 // [T*F] per-type feature embedding
	Layers    []LayerParams
	ReadoutW  []float32 // [F]
	ReadoutB  float32

	// Per-type energy scale/shift buffers. Not trainable.
	Scale []float32 // [T]
	Shift []float32 // [T]
}

// NumWeights counts every parameter, buffers included.
func (p *Params) NumWeights() int {
	n := len(p.Embedding) + len(p.ReadoutW) + 1 + len(p.Scale) + len(p.Shift)
	for _, l := range p.Layers {
		n += len(l.SelfW) + len(l.MsgW) + len(l.RadialW) + len(l.Bias)
	}
	return n
}

// NumTrainableWeights counts learnable parameters only, excluding the
// per-type scale/shift buffers.
func (p *Params) NumTrainableWeights() int {
	return p.NumWeights() - len(p.Scale) - len(p.Shift)
}

// Copy returns a deep copy of the parameter set.
func (p *Params) Copy() *Params {
	out := *p
	out.Embedding = append([]float32(nil), p.Embedding...)
	out.ReadoutW = append([]float32(nil), p.ReadoutW...)
	out.Scale = append([]float32(nil), p.Scale...)
	out.Shift = append([]float32(nil), p.Shift...)
	out.Layers = make([]LayerParams, len(p.Layers))
	for i, l := range p.Layers {
		out.Layers[i] = LayerParams{
			SelfW:   append([]float32(nil), l.SelfW...),
			MsgW:    append([]float32(nil), l.MsgW...),
			RadialW: append([]float32(nil), l.RadialW...),
			Bias:    append([]float32(nil), l.Bias...),
		}
	}
	return &out
}

// Forward runs the potential on a frame and writes per-atom and total
// energies back into the frame as scratch fields.
func Forward(p *Params, fr data.Frame) error {
	pos, ok := fr[data.KeyPositions]
	if !ok {
		return fmt.Errorf("frame is missing %s", data.KeyPositions)
	}
	types, ok := fr[data.KeyAtomTypes]
	if !ok {
		return fmt.Errorf("frame is missing %s", data.KeyAtomTypes)
	}
	edges, ok := fr[data.KeyEdgeIndex]
	if !ok {
		return fmt.Errorf("frame is missing %s", data.KeyEdgeIndex)
	}

	nAtoms := pos.Dim(0)
	nEdges := edges.Dim(1)
	F := p.NumFeatures
	B := p.NumBasis

	// Per-type embedding lookup.
	h := make([]float32, nAtoms*F)
	for a := 0; a < nAtoms; a++ {
		t := int(types.I64[a])
		if t < 0 || t >= p.NumTypes {
			return fmt.Errorf("atom %d: type %d out of range [0, %d)", a, t, p.NumTypes)
		}
		copy(h[a*F:(a+1)*F], p.Embedding[t*F:(t+1)*F])
	}

	// Radial basis per edge, computed once and reused by every layer.
	basis := make([]float32, nEdges*B)
	src := edges.I64[:nEdges]
	dst := edges.I64[nEdges : 2*nEdges]
	for e := 0; e < nEdges; e++ {
		i, j := int(src[e]), int(dst[e])
		dx := float64(pos.F32[3*j] - pos.F32[3*i])
		dy := float64(pos.F32[3*j+1] - pos.F32[3*i+1])
		dz := float64(pos.F32[3*j+2] - pos.F32[3*i+2])
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		radialBasis(r, p.RMax, basis[e*B:(e+1)*B])
	}

	msg := make([]float32, nAtoms*F)
	next := make([]float32, nAtoms*F)
	edgeW := make([]float32, F)
	for _, layer := range p.Layers {
		for k := range msg {
			msg[k] = 0
		}
		for e := 0; e < nEdges; e++ {
			i, j := int(src[e]), int(dst[e])
			// Per-feature edge weights from the radial basis.
			matVec(layer.RadialW, basis[e*B:(e+1)*B], edgeW, B, F)
			hj := h[j*F : (j+1)*F]
			mi := msg[i*F : (i+1)*F]
			for f := 0; f < F; f++ {
				var acc float32
				row := layer.MsgW[f*F : (f+1)*F]
				for g := 0; g < F; g++ {
					acc += row[g] * hj[g]
				}
				mi[f] += edgeW[f] * acc
			}
		}
		for a := 0; a < nAtoms; a++ {
			ha := h[a*F : (a+1)*F]
			ma := msg[a*F : (a+1)*F]
			na := next[a*F : (a+1)*F]
			for f := 0; f < F; f++ {
				var acc float32
				row := layer.SelfW[f*F : (f+1)*F]
				for g := 0; g < F; g++ {
					acc += row[g] * ha[g]
				}
				na[f] = silu(acc + ma[f] + layer.Bias[f])
			}
		}
		h, next = next, h
	}

	// Per-atom readout with per-type scale/shift, then total energy.
	atomic := make([]float32, nAtoms)
	var total float64
	for a := 0; a < nAtoms; a++ {
		ha := h[a*F : (a+1)*F]
		var e float32
		for f := 0; f < F; f++ {
			e += p.ReadoutW[f] * ha[f]
		}
		t := int(types.I64[a])
		e = e*p.Scale[t] + p.Shift[t] + p.ReadoutB
		atomic[a] = e
		total += float64(e)
	}
	fr[data.KeyAtomicEnergy] = data.NewF32([]int{nAtoms}, atomic)
	fr[data.KeyTotalEnergy] = data.NewF32([]int{1}, []float32{float32(total)})
	return nil
}

// radialBasis fills out with a Bessel-style basis of the edge length, damped
// by a smooth polynomial cutoff at rMax.
func radialBasis(r, rMax float64, out []float32) {
	if r < 1e-9 {
		r = 1e-9
	}
	x := r / rMax
	var env float64
	if x < 1 {
		// p=6 polynomial cutoff envelope.
		env = 1 - 28*math.Pow(x, 6) + 48*math.Pow(x, 7) - 21*math.Pow(x, 8)
	}
	for k := range out {
		out[k] = float32(env * math.Sin(float64(k+1)*math.Pi*x) / r)
	}
}

// matVec computes out = vec(in) * W for W of shape [rows, cols].
func matVec(w, in, out []float32, rows, cols int) {
	for c := 0; c < cols; c++ {
		out[c] = 0
	}
	for r := 0; r < rows; r++ {
		v := in[r]
		if v == 0 {
			continue
		}
		row := w[r*cols : (r+1)*cols]
		for c := 0; c < cols; c++ {
			out[c] += v * row[c]
		}
	}
}

func silu(x float32) float32 {
	return x / (1 + float32(math.Exp(-float64(x))))
}
