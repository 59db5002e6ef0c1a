package tasks

import (
	"fmt"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// AddFeatureTask binds a payload, supplied as the single extra argument of
// Execute, under a fixed key. An existing binding is silently replaced.
type AddFeatureTask struct {
	ref patch.FeatureRef
}

// NewAddFeatureTask creates a task adding a payload under (t, name).
func NewAddFeatureTask(t patch.FeatureType, name string) *AddFeatureTask {
	return &AddFeatureTask{ref: patch.Ref(t, name)}
}

// Execute binds extra[0] under the task's key and returns the same patch.
func (t *AddFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	if len(extra) != 1 {
		return nil, fmt.Errorf("%w: AddFeature expects exactly one payload argument, got %d", patch.ErrInvalidArgument, len(extra))
	}
	payload, ok := extra[0].(patch.Payload)
	if !ok {
		return nil, fmt.Errorf("%w: AddFeature payload has type %T", patch.ErrInvalidArgument, extra[0])
	}
	if err := p.Set(t.ref.Type, t.ref.Name, payload); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveFeatureTask deletes the selected keys in place. Absent keys are
// skipped; a wildcard over a type deletes every entry of that type,
// leaving an empty mapping. Selecting a singleton slot clears it.
type RemoveFeatureTask struct {
	features patch.Selector
}

// NewRemoveFeatureTask creates a task removing the selected features.
func NewRemoveFeatureTask(features patch.Selector) *RemoveFeatureTask {
	return &RemoveFeatureTask{features: features}
}

// Execute removes the resolved keys and returns the same patch. The
// selector is resolved to a concrete list before any deletion, so a
// remove-all never observes its own deletions.
func (t *RemoveFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	for _, ref := range t.features.ResolvePresent(p) {
		switch ref.Type {
		case patch.BBox:
			p.SetBBox(nil)
		case patch.Timestamps:
			if err := p.SetTimestamps(nil); err != nil {
				return nil, err
			}
		case patch.Meta:
			p.ClearMeta()
		default:
			p.Delete(ref.Type, ref.Name)
		}
	}
	return p, nil
}

// RenameFeatureTask rebinds payloads under new names in place. Each
// resolved (type, old, new) triple binds the payload under new and
// deletes old; a collision with an existing key is an error, never a
// silent overwrite.
type RenameFeatureTask struct {
	features patch.Selector
}

// NewRenameFeatureTask creates a task renaming the selected features.
func NewRenameFeatureTask(features patch.Selector) *RenameFeatureTask {
	return &RenameFeatureTask{features: features}
}

// Execute renames the resolved keys and returns the same patch. Returns
// ErrMissingFeature for an absent source and ErrDuplicateFeature when a
// new name is already bound.
func (t *RenameFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	refs, err := t.features.Resolve(p)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if ref.TargetName() == ref.Name {
			continue
		}
		if p.Has(ref.Type, ref.TargetName()) {
			return nil, fmt.Errorf("%w: cannot rename %s/%s to %s", patch.ErrDuplicateFeature, ref.Type, ref.Name, ref.TargetName())
		}
		payload, err := p.Get(ref.Type, ref.Name)
		if err != nil {
			return nil, err
		}
		if err := p.Set(ref.Type, ref.TargetName(), payload); err != nil {
			return nil, err
		}
		p.Delete(ref.Type, ref.Name)
	}
	return p, nil
}

// DuplicateFeatureTask binds each resolved (type, src, dst) triple's
// payload under dst as well. By default dst aliases the identical payload
// object; with the deep flag it owns an independent copy.
type DuplicateFeatureTask struct {
	features patch.Selector
	deep     bool
}

// NewDuplicateFeatureTask creates a duplication task. With deep true the
// destinations own independent copies instead of aliasing the source
// payloads.
func NewDuplicateFeatureTask(features patch.Selector, deep bool) *DuplicateFeatureTask {
	return &DuplicateFeatureTask{features: features, deep: deep}
}

// Execute duplicates in place and returns the same patch. An already
// existing destination at call time fails with ErrDuplicateFeature, so
// duplicating twice into the same destination fails the second time.
func (t *DuplicateFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	refs, err := t.features.Resolve(p)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if p.Has(ref.Type, ref.TargetName()) {
			return nil, fmt.Errorf("%w: cannot duplicate %s/%s to %s", patch.ErrDuplicateFeature, ref.Type, ref.Name, ref.TargetName())
		}
		payload, err := p.Get(ref.Type, ref.Name)
		if err != nil {
			return nil, err
		}
		if t.deep {
			payload = payload.DeepCopy()
		}
		if err := p.Set(ref.Type, ref.TargetName(), payload); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MoveFeatureTask copies the selected features of a source patch into a
// destination patch, passed as the single extra argument of Execute. The
// source patch's own keys are left untouched. Destination payloads alias
// the source payloads unless the deep flag is set, exactly as with
// DuplicateFeatureTask; existing destination keys are replaced.
type MoveFeatureTask struct {
	features patch.Selector
	deep     bool
}

// NewMoveFeatureTask creates a task moving the selected features between
// two patches.
func NewMoveFeatureTask(features patch.Selector, deep bool) *MoveFeatureTask {
	return &MoveFeatureTask{features: features, deep: deep}
}

// Execute resolves the selector against the source patch p, copies into
// the destination given as extra[0], and returns the destination.
func (t *MoveFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	if len(extra) != 1 {
		return nil, fmt.Errorf("%w: MoveFeature expects the destination patch as its only extra argument", patch.ErrInvalidArgument)
	}
	dst, ok := extra[0].(*patch.Patch)
	if !ok {
		return nil, fmt.Errorf("%w: MoveFeature destination has type %T", patch.ErrInvalidArgument, extra[0])
	}

	refs, err := t.features.Resolve(p)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if err := copySlot(dst, p, ref, t.deep); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
