package tasks

import (
	"fmt"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// SaveTask writes the selected slots of the input patch to a Store. The
// patch itself is returned unmodified, so the task can sit in the middle
// of a pipeline.
type SaveTask struct {
	store patch.Store
	id    string
	sel   patch.Selector
}

// NewSaveTask creates a save task. With an empty id the store generates
// one on first execution and the task reuses it afterwards. An empty
// selector saves everything.
func NewSaveTask(store patch.Store, id string, sel patch.Selector) *SaveTask {
	return &SaveTask{store: store, id: id, sel: sel}
}

// ID returns the stored patch ID, which is set by the first Execute when
// the task was created without one.
func (t *SaveTask) ID() string { return t.id }

// Execute saves and returns the input patch. A selector resolving to
// nothing makes the save a no-op that creates no storage.
func (t *SaveTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	sel := t.sel
	if sel.IsEmpty() {
		sel = patch.SelectAll()
	}
	id, err := t.store.Save(t.id, p, sel)
	if err != nil {
		return nil, fmt.Errorf("save patch: %w", err)
	}
	t.id = id
	return p, nil
}

// LoadTask reads the selected slots of a stored patch. Executed with a
// nil input it returns the loaded patch; executed with an existing patch
// it adds the loaded slots to it, replacing on collision.
type LoadTask struct {
	store patch.Store
	id    string
	sel   patch.Selector
}

// NewLoadTask creates a load task. An empty selector loads everything; an
// unknown id yields an empty patch rather than an error.
func NewLoadTask(store patch.Store, id string, sel patch.Selector) *LoadTask {
	return &LoadTask{store: store, id: id, sel: sel}
}

// Execute loads and returns the result.
func (t *LoadTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	sel := t.sel
	if sel.IsEmpty() {
		sel = patch.SelectAll()
	}
	loaded, err := t.store.Load(t.id, sel)
	if err != nil {
		return nil, fmt.Errorf("load patch: %w", err)
	}
	if p == nil {
		return loaded, nil
	}
	for _, ref := range patch.SelectAll().ResolvePresent(loaded) {
		if err := copySlot(p, loaded, ref, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}
