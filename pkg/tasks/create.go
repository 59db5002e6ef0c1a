package tasks

import "github.com/mesh-intelligence/terrapatch/pkg/patch"

// CreatePatchTask builds a new patch from slots seeded at construction,
// enforcing the container's dimensionality and consistency invariants.
// The input patch of Execute is ignored and may be nil, which makes the
// task usable as a pipeline source.
type CreatePatchTask struct {
	opts []patch.Option
}

// NewCreatePatchTask creates a construction task from patch options.
func NewCreatePatchTask(opts ...patch.Option) *CreatePatchTask {
	return &CreatePatchTask{opts: opts}
}

// Execute returns the newly constructed patch.
func (t *CreatePatchTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	return patch.Create(t.opts...)
}
