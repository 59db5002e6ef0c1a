// Package features provides tasks deriving new features from existing
// ones: band arithmetic over the channel axis, pointwise rescaling,
// temporal frame filtering, and sentinel-value fill-out.
package features

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// EuclideanNormTask computes the per-cell euclidean norm over a feature's
// channel axis and binds it as a new single-channel feature of the same
// leading shape.
type EuclideanNormTask struct {
	src   patch.FeatureRef
	dst   patch.FeatureRef
	bands []int
}

// NewEuclideanNormTask creates a norm task. With a nil band list every
// channel of the source participates.
func NewEuclideanNormTask(src, dst patch.FeatureRef, bands []int) *EuclideanNormTask {
	return &EuclideanNormTask{src: src, dst: dst, bands: append([]int(nil), bands...)}
}

// Execute computes the norm in place and returns the same patch.
func (t *EuclideanNormTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	arr, err := arrayFeature(p, t.src)
	if err != nil {
		return nil, err
	}
	if len(t.bands) > 0 {
		arr, err = arr.SelectBands(t.bands)
		if err != nil {
			return nil, err
		}
	}

	channels := arr.Channels()
	outShape := arr.Shape()
	outShape[len(outShape)-1] = 1
	out := patch.Zeros(outShape)

	if channels > 0 {
		data := arr.Data()
		for row := range out.Data() {
			sum := 0.0
			for _, v := range data[row*channels : (row+1)*channels] {
				sum += v * v
			}
			out.Data()[row] = math.Sqrt(sum)
		}
	}

	if err := p.Set(t.dst.Type, t.dst.TargetName(), out); err != nil {
		return nil, err
	}
	return p, nil
}

// NormalizedDifferenceTask computes (A - B + c) / (A + B + c) between two
// channels of a feature, where c is a constant compensating for
// atmospheric correction artifacts. Cells where the result is not finite
// receive a caller-chosen substitute value.
type NormalizedDifferenceTask struct {
	src       patch.FeatureRef
	dst       patch.FeatureRef
	bandA     int
	bandB     int
	constant  float64
	undefined float64
}

// NewNormalizedDifferenceTask creates a normalized difference task over
// channels bandA and bandB of the source. constant is added to both the
// numerator and denominator; undefined replaces non-finite results.
func NewNormalizedDifferenceTask(src, dst patch.FeatureRef, bandA, bandB int, constant, undefined float64) *NormalizedDifferenceTask {
	return &NormalizedDifferenceTask{
		src: src, dst: dst,
		bandA: bandA, bandB: bandB,
		constant: constant, undefined: undefined,
	}
}

// Execute computes the index in place and returns the same patch. A band
// index outside the source's channel count fails with ErrIndexOutOfRange.
func (t *NormalizedDifferenceTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	arr, err := arrayFeature(p, t.src)
	if err != nil {
		return nil, err
	}
	channels := arr.Channels()
	for _, band := range []int{t.bandA, t.bandB} {
		if band < 0 || band >= channels {
			return nil, fmt.Errorf("%w: band %d, feature has %d channels", patch.ErrIndexOutOfRange, band, channels)
		}
	}

	outShape := arr.Shape()
	outShape[len(outShape)-1] = 1
	out := patch.Zeros(outShape)

	data := arr.Data()
	for row := range out.Data() {
		a := data[row*channels+t.bandA]
		b := data[row*channels+t.bandB]
		ndi := (a - b + t.constant) / (a + b + t.constant)
		if math.IsNaN(ndi) || math.IsInf(ndi, 0) {
			ndi = t.undefined
		}
		out.Data()[row] = ndi
	}

	if err := p.Set(t.dst.Type, t.dst.TargetName(), out); err != nil {
		return nil, err
	}
	return p, nil
}

// arrayFeature fetches (ref.Type, ref.Name) and asserts it is an array.
func arrayFeature(p *patch.Patch, ref patch.FeatureRef) (*patch.Array, error) {
	payload, err := p.Get(ref.Type, ref.Name)
	if err != nil {
		return nil, err
	}
	arr, ok := payload.(*patch.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds a geometry collection, not an array", patch.ErrInvalidArgument, ref)
	}
	return arr, nil
}
