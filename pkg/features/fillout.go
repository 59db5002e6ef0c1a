package features

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// Fill directions accepted by NewValueFilloutTask. The two-letter forms
// apply both passes in the written order.
const (
	FillForward         = "f"
	FillBackward        = "b"
	FillForwardBackward = "fb"
	FillBackwardForward = "bf"
)

// ValueFilloutTask overwrites occurrences of a sentinel value with their
// nearest non-sentinel neighbor along an axis, in forward or backward
// direction or both:
//
//	f:  nan nan 8 5 nan 1  ->  nan nan 8 5 5 1
//	b:  nan nan 8 5 nan 1  ->  8   8   8 5 1 1
//
// NaN is a valid sentinel and is matched with IsNaN rather than equality.
type ValueFilloutTask struct {
	feature    patch.FeatureRef
	operations string
	value      float64
	axis       int
}

// NewValueFilloutTask creates a fill-out task over one array feature. An
// operations string other than f, b, fb or bf fails with
// ErrInvalidArgument. The axis may be negative to count from the last
// axis.
func NewValueFilloutTask(feature patch.FeatureRef, operations string, value float64, axis int) (*ValueFilloutTask, error) {
	switch operations {
	case FillForward, FillBackward, FillForwardBackward, FillBackwardForward:
	default:
		return nil, fmt.Errorf("%w: fill operations must be one of f, b, fb, bf, got %q", patch.ErrInvalidArgument, operations)
	}
	return &ValueFilloutTask{feature: feature, operations: operations, value: value, axis: axis}, nil
}

// Execute fills in place and returns the same patch. A patch without any
// occurrence of the sentinel is returned unchanged.
func (t *ValueFilloutTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	arr, err := arrayFeature(p, t.feature)
	if err != nil {
		return nil, err
	}
	shape := arr.Shape()
	axis := t.axis
	if axis < 0 {
		axis += len(shape)
	}
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("%w: axis %d out of range for rank %d", patch.ErrInvalidArgument, t.axis, len(shape))
	}

	if !t.hasSentinel(arr.Data()) {
		return p, nil
	}

	out := arr.DeepCopy().(*patch.Array)
	stride := 1
	for _, n := range shape[axis+1:] {
		stride *= n
	}
	n := shape[axis]
	outer := 1
	for _, m := range shape[:axis] {
		outer *= m
	}

	for o := 0; o < outer; o++ {
		for i := 0; i < stride; i++ {
			base := o*n*stride + i
			for _, op := range t.operations {
				t.fillLane(out.Data(), base, n, stride, op == 'b')
			}
		}
	}

	if err := p.Set(t.feature.Type, t.feature.TargetName(), out); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *ValueFilloutTask) matches(v float64) bool {
	if math.IsNaN(t.value) {
		return math.IsNaN(v)
	}
	return v == t.value
}

func (t *ValueFilloutTask) hasSentinel(data []float64) bool {
	for _, v := range data {
		if t.matches(v) {
			return true
		}
	}
	return false
}

// fillLane fills one 1-dimensional lane of length n starting at base with
// elements stride apart, walking forward or backward.
func (t *ValueFilloutTask) fillLane(data []float64, base, n, stride int, backward bool) {
	prevValid := false
	var prev float64
	for k := 0; k < n; k++ {
		idx := base + k*stride
		if backward {
			idx = base + (n-1-k)*stride
		}
		if t.matches(data[idx]) {
			if prevValid {
				data[idx] = prev
			}
			continue
		}
		prev, prevValid = data[idx], true
	}
}
