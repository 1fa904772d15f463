// Package data provides atomic-structure frames and the trajectory dataset
// they are read from.
package data

import "fmt"

// DType identifies the element type of a Tensor.
type DType int

const (
	DTypeF32 DType = iota
	DTypeI64
)

func (d DType) String() string {
	switch d {
	case DTypeF32:
		return "F32"
	case DTypeI64:
		return "I64"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// Tensor is a dense numeric array with a shape. Exactly one of the payload
// slices is populated, according to DType.
type Tensor struct {
	DType DType
	Shape []int
	F32   []float32
	I64   []int64
}

// NewF32 creates a float32 tensor taking ownership of data.
func NewF32(shape []int, data []float32) *Tensor {
	return &Tensor{DType: DTypeF32, Shape: shape, F32: data}
}

// NewI64 creates an int64 tensor taking ownership of data.
func NewI64(shape []int, data []int64) *Tensor {
	return &Tensor{DType: DTypeI64, Shape: shape, I64: data}
}

// NumElements returns the total number of elements implied by the shape.
func (t *Tensor) NumElements() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int { return t.Shape[i] }

// Copy returns a deep copy of the tensor.
func (t *Tensor) Copy() *Tensor {
	out := &Tensor{DType: t.DType, Shape: append([]int(nil), t.Shape...)}
	if t.F32 != nil {
		out.F32 = append([]float32(nil), t.F32...)
	}
	if t.I64 != nil {
		out.I64 = append([]int64(nil), t.I64...)
	}
	return out
}
