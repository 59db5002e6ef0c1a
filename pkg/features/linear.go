package features

import (
	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// LinearFunctionTask rescales the selected array features pointwise as
// x -> x*slope + intercept. A reference without an output name overwrites
// its source; a renamed reference leaves the source untouched and binds
// the rescaled copy under the new name.
type LinearFunctionTask struct {
	features  patch.Selector
	slope     float64
	intercept float64
}

// NewLinearFunctionTask creates a rescaling task over the selected
// features.
func NewLinearFunctionTask(features patch.Selector, slope, intercept float64) *LinearFunctionTask {
	return &LinearFunctionTask{features: features, slope: slope, intercept: intercept}
}

// Execute rescales in place and returns the same patch.
func (t *LinearFunctionTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	refs, err := t.features.Resolve(p)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		arr, err := arrayFeature(p, ref)
		if err != nil {
			return nil, err
		}
		out := arr.Apply(func(x float64) float64 { return x*t.slope + t.intercept })
		if err := p.Set(ref.Type, ref.TargetName(), out); err != nil {
			return nil, err
		}
	}
	return p, nil
}
