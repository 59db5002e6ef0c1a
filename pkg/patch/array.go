package patch

import "fmt"

// Payload is the value bound to a feature key inside a patch. The two
// implementations are *Array for raster and series types and
// *VectorCollection for geometry types.
//
// Payloads are owned by whichever patch currently binds them. Shallow
// operations (Copy, Duplicate and Move without the deep flag) bind two
// keys to the identical payload, so in-place mutation is visible through
// both; DeepCopy produces an independently owned value.
type Payload interface {
	// DeepCopy returns an independently owned copy of the payload.
	DeepCopy() Payload
	// EqualPayload reports deep value equality with another payload.
	EqualPayload(other Payload) bool
}

// Array is a dense n-dimensional float64 array in row-major order. It is
// the payload for all raster and scalar/label feature types.
type Array struct {
	shape []int
	data  []float64
}

// NewArray creates an array with the given shape backed by data. The data
// length must equal the product of the shape extents and every extent must
// be non-negative; otherwise ErrShapeMismatch is returned. The array takes
// ownership of both slices.
func NewArray(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, n := range shape {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative extent in shape %v", ErrShapeMismatch, shape)
		}
		size *= n
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: shape %v requires %d values, got %d", ErrShapeMismatch, shape, size, len(data))
	}
	return &Array{shape: shape, data: data}, nil
}

// Filled creates an array of the given shape with every element set to
// value. Panics on a negative extent; use NewArray when the shape comes
// from untrusted input.
func Filled(shape []int, value float64) *Array {
	size := 1
	for _, n := range shape {
		if n < 0 {
			panic(fmt.Sprintf("patch: negative extent in shape %v", shape))
		}
		size *= n
	}
	data := make([]float64, size)
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return &Array{shape: append([]int(nil), shape...), data: data}
}

// Zeros creates a zero-filled array of the given shape.
func Zeros(shape []int) *Array {
	return Filled(shape, 0)
}

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.shape) }

// Shape returns a copy of the axis extents.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Channels returns the extent of the last axis, or 0 for a rank-0 array.
func (a *Array) Channels() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[len(a.shape)-1]
}

// Data returns the backing buffer in row-major order. Mutating it mutates
// the array in place, and is visible through every patch key that shares
// this payload.
func (a *Array) Data() []float64 { return a.data }

// offset converts a multi-axis index to a buffer offset. Panics on a rank
// or bound violation.
func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("patch: index rank %d does not match array rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for axis, i := range idx {
		if i < 0 || i >= a.shape[axis] {
			panic(fmt.Sprintf("patch: index %d out of range for axis %d with extent %d", i, axis, a.shape[axis]))
		}
		off = off*a.shape[axis] + i
	}
	return off
}

// At returns the element at the given multi-axis index.
func (a *Array) At(idx ...int) float64 { return a.data[a.offset(idx)] }

// SetAt sets the element at the given multi-axis index.
func (a *Array) SetAt(value float64, idx ...int) { a.data[a.offset(idx)] = value }

// DeepCopy returns an independently owned copy of the array.
func (a *Array) DeepCopy() Payload {
	return &Array{
		shape: append([]int(nil), a.shape...),
		data:  append([]float64(nil), a.data...),
	}
}

// EqualPayload reports whether other is an array with the same shape and
// the same element values.
func (a *Array) EqualPayload(other Payload) bool {
	b, ok := other.(*Array)
	if !ok || len(a.shape) != len(b.shape) {
		return false
	}
	for i, n := range a.shape {
		if b.shape[i] != n {
			return false
		}
	}
	for i, v := range a.data {
		if b.data[i] != v {
			return false
		}
	}
	return true
}

// Apply returns a new array with fn applied to every element.
func (a *Array) Apply(fn func(float64) float64) *Array {
	out := a.DeepCopy().(*Array)
	for i, v := range out.data {
		out.data[i] = fn(v)
	}
	return out
}

// normalizeAxis resolves a possibly negative axis against rank.
func normalizeAxis(axis, rank int) (int, error) {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, fmt.Errorf("%w: axis %d out of range for rank %d", ErrInvalidArgument, axis, rank)
	}
	return axis, nil
}

// Concatenate joins arrays along the given axis, which may be negative to
// count from the last axis. All arrays must have the same rank and equal
// extents on every other axis; otherwise ErrShapeMismatch is returned.
func Concatenate(arrays []*Array, axis int) (*Array, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: no arrays to concatenate", ErrInvalidArgument)
	}
	rank := arrays[0].Rank()
	ax, err := normalizeAxis(axis, rank)
	if err != nil {
		return nil, err
	}

	outShape := arrays[0].Shape()
	for _, a := range arrays[1:] {
		if a.Rank() != rank {
			return nil, fmt.Errorf("%w: rank %d vs %d", ErrShapeMismatch, a.Rank(), rank)
		}
		for i, n := range a.shape {
			if i == ax {
				continue
			}
			if n != outShape[i] {
				return nil, fmt.Errorf("%w: axis %d extent %d vs %d", ErrShapeMismatch, i, n, outShape[i])
			}
		}
		outShape[ax] += a.shape[ax]
	}

	// Row-major copy: each source contributes contiguous runs of
	// inner*extent elements, interleaved across outer iterations.
	outer := 1
	for i := 0; i < ax; i++ {
		outer *= outShape[i]
	}
	inner := 1
	for i := ax + 1; i < rank; i++ {
		inner *= outShape[i]
	}

	out := Zeros(outShape)
	pos := 0
	for o := 0; o < outer; o++ {
		for _, a := range arrays {
			run := a.shape[ax] * inner
			copy(out.data[pos:pos+run], a.data[o*run:(o+1)*run])
			pos += run
		}
	}
	return out, nil
}

// SelectBands returns a new array holding the given channel indices of the
// last axis, in the given order, preserving all leading axes. The result
// is an independent copy. An index outside the channel count returns
// ErrIndexOutOfRange. An empty index list yields a zero-width array.
func (a *Array) SelectBands(indices []int) (*Array, error) {
	if a.Rank() == 0 {
		return nil, fmt.Errorf("%w: cannot select bands of a rank-0 array", ErrInvalidArgument)
	}
	channels := a.Channels()
	for _, idx := range indices {
		if idx < 0 || idx >= channels {
			return nil, fmt.Errorf("%w: band %d, feature has %d channels", ErrIndexOutOfRange, idx, channels)
		}
	}

	outShape := a.Shape()
	outShape[len(outShape)-1] = len(indices)
	out := Zeros(outShape)

	rows := a.Size() / max(channels, 1)
	if channels == 0 {
		rows = 0
	}
	for row := 0; row < rows; row++ {
		src := a.data[row*channels:]
		dst := out.data[row*len(indices):]
		for i, idx := range indices {
			dst[i] = src[idx]
		}
	}
	return out, nil
}
