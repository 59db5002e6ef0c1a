package tasks

import "github.com/mesh-intelligence/terrapatch/pkg/patch"

// CopyTask builds a new patch containing the selected slots of the input.
// The new patch is a fresh outer container, but payload references are
// shared with the source: in-place mutation of a copied array is visible
// in both patches, while rebinding a key in one is not. The source patch
// is never modified.
type CopyTask struct {
	features patch.Selector
	deep     bool
}

// NewCopyTask creates a shallow copy task over the union of the given
// selectors. With no selector, or an empty one, everything is selected,
// including the singleton slots.
func NewCopyTask(features ...patch.Selector) *CopyTask {
	return &CopyTask{features: unionSelector(features)}
}

// NewDeepCopyTask creates a copy task whose payloads are independently
// owned copies; mutating the result leaves the source unchanged.
func NewDeepCopyTask(features ...patch.Selector) *CopyTask {
	return &CopyTask{features: unionSelector(features), deep: true}
}

func unionSelector(selectors []patch.Selector) patch.Selector {
	var sel patch.Selector
	for _, s := range selectors {
		sel = sel.And(s)
	}
	return sel
}

// Execute returns the new patch. Selecting a feature absent from the
// input fails with ErrMissingFeature.
func (t *CopyTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	sel := t.features
	if sel.IsEmpty() {
		sel = patch.SelectAll()
	}
	refs, err := sel.Resolve(p)
	if err != nil {
		return nil, err
	}

	out := patch.New()
	for _, ref := range refs {
		if err := copySlot(out, p, ref, t.deep); err != nil {
			return nil, err
		}
	}
	return out, nil
}
