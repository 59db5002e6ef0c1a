package tasks

import (
	"fmt"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// MergeFeatureTask concatenates the payloads of an ordered set of
// same-type source features along a caller-specified axis into one
// destination feature. The axis may be negative to count from the last
// axis.
type MergeFeatureTask struct {
	sources patch.Selector
	dst     patch.FeatureRef
	axis    int
}

// NewMergeFeatureTask creates a merge task.
func NewMergeFeatureTask(sources patch.Selector, dst patch.FeatureRef, axis int) *MergeFeatureTask {
	return &MergeFeatureTask{sources: sources, dst: dst, axis: axis}
}

// Execute merges in place and returns the same patch. Sources of mixed
// feature types fail with ErrInvalidArgument; incompatible non-axis
// extents fail with ErrShapeMismatch.
func (t *MergeFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	refs, err := t.sources.Resolve(p)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: merge requires at least one source feature", patch.ErrInvalidArgument)
	}

	arrays := make([]*patch.Array, len(refs))
	for i, ref := range refs {
		if ref.Type != refs[0].Type {
			return nil, fmt.Errorf("%w: merge sources must share one feature type, got %s and %s",
				patch.ErrInvalidArgument, refs[0].Type, ref.Type)
		}
		arr, err := arrayPayload(p, ref)
		if err != nil {
			return nil, err
		}
		arrays[i] = arr
	}

	merged, err := patch.Concatenate(arrays, t.axis)
	if err != nil {
		return nil, err
	}
	if err := p.Set(t.dst.Type, t.dst.TargetName(), merged); err != nil {
		return nil, err
	}
	return p, nil
}
