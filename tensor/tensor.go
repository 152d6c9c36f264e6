package tensor

import (
	"fmt"
)

// Tensor is a dense row-major float64 tensor whose leading axis indexes the
// environment instances of a batch. Managers treat every tensor they hand
// around as (numEnvs, ...) shaped.
type Tensor struct {
	dims []int
	data []float64
}

// Zeros allocates a zero-valued tensor with the given dimensions
func Zeros(dims ...int) *Tensor {
	size := 1
	for _, d := range dims {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d", d))
		}
		size *= d
	}
	t := &Tensor{
		dims: make([]int, len(dims)),
		data: make([]float64, size),
	}
	copy(t.dims, dims)
	return t
}

// Filled allocates a tensor with every element set to v
func Filled(v float64, dims ...int) *Tensor {
	t := Zeros(dims...)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// FromData wraps a flat slice with the given dimensions
// The slice is not copied
func FromData(data []float64, dims ...int) *Tensor {
	size := 1
	for _, d := range dims {
		size *= d
	}
	if size != len(data) {
		panic(fmt.Sprintf("tensor: data length %d does not match dims %v", len(data), dims))
	}
	t := &Tensor{
		dims: make([]int, len(dims)),
		data: data,
	}
	copy(t.dims, dims)
	return t
}

// Dims returns a copy of the tensor dimensions
func (t *Tensor) Dims() []int {
	out := make([]int, len(t.dims))
	copy(out, t.dims)
	return out
}

// Rank is the number of axes
func (t *Tensor) Rank() int {
	return len(t.dims)
}

// BatchSize is the size of the leading axis
func (t *Tensor) BatchSize() int {
	if len(t.dims) == 0 {
		return 0
	}
	return t.dims[0]
}

// RowLen is the number of elements per batch row (product of trailing axes)
func (t *Tensor) RowLen() int {
	if len(t.dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.dims[1:] {
		n *= d
	}
	return n
}

// Data exposes the underlying flat storage
func (t *Tensor) Data() []float64 {
	return t.data
}

// At reads element j of batch row i (flattened trailing axes)
func (t *Tensor) At(i, j int) float64 {
	return t.data[i*t.RowLen()+j]
}

// Set writes element j of batch row i
func (t *Tensor) Set(i, j int, v float64) {
	t.data[i*t.RowLen()+j] = v
}

// Row returns a mutable view of batch row i
func (t *Tensor) Row(i int) []float64 {
	w := t.RowLen()
	return t.data[i*w : (i+1)*w]
}

// Clone deep-copies the tensor
func (t *Tensor) Clone() *Tensor {
	c := Zeros(t.dims...)
	copy(c.data, t.data)
	return c
}

// Scale multiplies every element by f in place and returns the tensor
func (t *Tensor) Scale(f float64) *Tensor {
	for i := range t.data {
		t.data[i] *= f
	}
	return t
}

// Clamp limits every element into [lo, hi] in place
func (t *Tensor) Clamp(lo, hi float64) *Tensor {
	for i, v := range t.data {
		if v < lo {
			t.data[i] = lo
		} else if v > hi {
			t.data[i] = hi
		}
	}
	return t
}

// Map applies fn to every element in place
func (t *Tensor) Map(fn func(float64) float64) *Tensor {
	for i, v := range t.data {
		t.data[i] = fn(v)
	}
	return t
}

// Add accumulates o element-wise, panics on shape mismatch
func (t *Tensor) Add(o *Tensor) *Tensor {
	if len(t.data) != len(o.data) {
		panic(fmt.Sprintf("tensor: add shape mismatch %v vs %v", t.dims, o.dims))
	}
	for i := range t.data {
		t.data[i] += o.data[i]
	}
	return t
}

// ZeroRows clears the given batch rows
func (t *Tensor) ZeroRows(rows []int) {
	for _, r := range rows {
		row := t.Row(r)
		for i := range row {
			row[i] = 0
		}
	}
}

// CopyRow copies src into batch row i
func (t *Tensor) CopyRow(i int, src []float64) {
	copy(t.Row(i), src)
}

// SameDims reports whether both tensors have identical dimensions
func (t *Tensor) SameDims(o *Tensor) bool {
	if len(t.dims) != len(o.dims) {
		return false
	}
	for i := range t.dims {
		if t.dims[i] != o.dims[i] {
			return false
		}
	}
	return true
}

// ConcatCols concatenates rank-2 tensors along the trailing axis.
// All inputs must share the same batch size.
func ConcatCols(ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return Zeros(0, 0), nil
	}
	batch := ts[0].BatchSize()
	width := 0
	for _, t := range ts {
		if t.Rank() != 2 {
			return nil, fmt.Errorf("tensor: concat requires rank 2, got %v", t.dims)
		}
		if t.BatchSize() != batch {
			return nil, fmt.Errorf("tensor: concat batch mismatch %d vs %d", t.BatchSize(), batch)
		}
		width += t.dims[1]
	}
	out := Zeros(batch, width)
	for i := 0; i < batch; i++ {
		offset := 0
		row := out.Row(i)
		for _, t := range ts {
			copy(row[offset:], t.Row(i))
			offset += t.dims[1]
		}
	}
	return out, nil
}

// Mean over all elements, 0 for an empty tensor
func (t *Tensor) Mean() float64 {
	if len(t.data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range t.data {
		sum += v
	}
	return sum / float64(len(t.data))
}

// MeanRows returns the mean of the selected batch rows, 0 if none selected
func (t *Tensor) MeanRows(rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	n := 0
	for _, r := range rows {
		for _, v := range t.Row(r) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
