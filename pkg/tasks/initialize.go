package tasks

import (
	"fmt"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// InitializeFeatureTask creates one or more new features of constant
// value. The shape is either a literal []int or a patch.FeatureRef naming
// an existing array feature whose shape is taken at execution time.
type InitializeFeatureTask struct {
	targets   []patch.FeatureRef
	shape     []int
	shapeFrom *patch.FeatureRef
	value     float64
}

// NewInitializeFeatureTask creates an initialization task for the
// selected target keys. shape must be a []int literal or a
// patch.FeatureRef; any other type fails with ErrInvalidArgument. A
// literal whose rank disagrees with a target's feature type fails with
// ErrShapeMismatch.
func NewInitializeFeatureTask(targets patch.Selector, shape any, value float64) (*InitializeFeatureTask, error) {
	if targets.IsAll() {
		return nil, fmt.Errorf("%w: initialize requires explicit target names", patch.ErrInvalidArgument)
	}
	refs := targets.Refs()
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: initialize requires at least one target", patch.ErrInvalidArgument)
	}
	for _, ref := range refs {
		if ref.Type.IsSingleton() || ref.Name == patch.AllNames {
			return nil, fmt.Errorf("%w: invalid initialize target %s", patch.ErrInvalidArgument, ref)
		}
	}

	task := &InitializeFeatureTask{targets: refs, value: value}
	switch s := shape.(type) {
	case []int:
		for _, ref := range refs {
			if len(s) != ref.Type.RequiredRank() {
				return nil, fmt.Errorf("%w: shape %v has rank %d, %s requires rank %d",
					patch.ErrShapeMismatch, s, len(s), ref.Type, ref.Type.RequiredRank())
			}
		}
		task.shape = append([]int(nil), s...)
	case patch.FeatureRef:
		task.shapeFrom = &s
	default:
		return nil, fmt.Errorf("%w: shape must be []int or patch.FeatureRef, got %T", patch.ErrInvalidArgument, shape)
	}
	return task, nil
}

// Execute creates the target features in place and returns the same
// patch. With a feature-ref shape source, the referenced feature must be
// present and its rank must match each target's feature type.
func (t *InitializeFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	shape := t.shape
	if t.shapeFrom != nil {
		arr, err := arrayPayload(p, *t.shapeFrom)
		if err != nil {
			return nil, err
		}
		shape = arr.Shape()
	}

	for _, ref := range t.targets {
		if len(shape) != ref.Type.RequiredRank() {
			return nil, fmt.Errorf("%w: shape %v has rank %d, %s requires rank %d",
				patch.ErrShapeMismatch, shape, len(shape), ref.Type, ref.Type.RequiredRank())
		}
		if err := p.Set(ref.Type, ref.TargetName(), patch.Filled(shape, t.value)); err != nil {
			return nil, err
		}
	}
	return p, nil
}
