package data

// Well-known frame field names.
const (
	KeyPositions    = "pos"
	KeyEdgeIndex    = "edge_index"
	KeyAtomTypes    = "atom_types"
	KeyCell         = "cell"
	KeyAtomicEnergy = "atomic_energy"
	KeyTotalEnergy  = "total_energy"
)

// Frame is one input example: named numeric tensors describing an atomic
// structure. Models may write scratch fields into a frame during a call, so
// callers that reuse frames hand out copies.
type Frame map[string]*Tensor

// NumAtoms returns the number of atoms in the frame.
func (f Frame) NumAtoms() int {
	return f[KeyPositions].Dim(0)
}

// NumEdges returns the number of directed neighbor edges in the frame.
func (f Frame) NumEdges() int {
	return f[KeyEdgeIndex].Dim(1)
}

// Copy returns a deep copy of the frame. Mutations of the copy, including
// scratch fields written by a model, never affect the original.
func (f Frame) Copy() Frame {
	out := make(Frame, len(f))
	for k, t := range f {
		out[k] = t.Copy()
	}
	return out
}
