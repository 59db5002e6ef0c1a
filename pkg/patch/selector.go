package patch

import "fmt"

// AllNames is the reserved wildcard name denoting every name currently
// present under a feature type. It is expanded against patch state at
// resolution time, never stored.
const AllNames = "..."

// FeatureRef identifies one feature slot, optionally with a distinct
// output name for renaming operations. For singleton types the names are
// ignored.
type FeatureRef struct {
	Type    FeatureType
	Name    string
	NewName string
}

// Ref is shorthand for FeatureRef{Type: t, Name: name}.
func Ref(t FeatureType, name string) FeatureRef {
	return FeatureRef{Type: t, Name: name}
}

// RenamedRef is shorthand for a reference carrying an output name.
func RenamedRef(t FeatureType, name, newName string) FeatureRef {
	return FeatureRef{Type: t, Name: name, NewName: newName}
}

// TargetName returns the output name of the reference: NewName when set,
// Name otherwise.
func (r FeatureRef) TargetName() string {
	if r.NewName != "" {
		return r.NewName
	}
	return r.Name
}

// String returns "type/name" or "type/name->new".
func (r FeatureRef) String() string {
	if r.Type.IsSingleton() {
		return r.Type.String()
	}
	if r.NewName != "" && r.NewName != r.Name {
		return fmt.Sprintf("%s/%s->%s", r.Type, r.Name, r.NewName)
	}
	return fmt.Sprintf("%s/%s", r.Type, r.Name)
}

// Selector denotes a set of feature slots to resolve against a concrete
// patch. Selectors are values; the zero value selects nothing.
type Selector struct {
	refs []FeatureRef
	all  bool
}

// Select selects the single key (t, name).
func Select(t FeatureType, name string) Selector {
	return Selector{refs: []FeatureRef{{Type: t, Name: name}}}
}

// SelectRenamed selects (t, name) with an explicit output name.
func SelectRenamed(t FeatureType, name, newName string) Selector {
	return Selector{refs: []FeatureRef{{Type: t, Name: name, NewName: newName}}}
}

// SelectNames selects the given names under one type, in the given order.
func SelectNames(t FeatureType, names ...string) Selector {
	refs := make([]FeatureRef, len(names))
	for i, name := range names {
		refs[i] = FeatureRef{Type: t, Name: name}
	}
	return Selector{refs: refs}
}

// SelectAllOf selects every name currently present under t, or the
// singleton slot itself when t is a singleton type.
func SelectAllOf(t FeatureType) Selector {
	return Selector{refs: []FeatureRef{{Type: t, Name: AllNames}}}
}

// SelectRefs selects an explicit ordered reference list, used as-is.
func SelectRefs(refs ...FeatureRef) Selector {
	return Selector{refs: append([]FeatureRef(nil), refs...)}
}

// SelectAll selects every feature of every type, including the non-empty
// singleton slots.
func SelectAll() Selector {
	return Selector{all: true}
}

// And returns a selector denoting this selector's slots followed by
// other's, preserving order.
func (s Selector) And(other Selector) Selector {
	if s.all || other.all {
		return Selector{all: true}
	}
	return Selector{refs: append(append([]FeatureRef(nil), s.refs...), other.refs...)}
}

// Refs returns a copy of the selector's unresolved reference list. An
// all-selector has no reference list.
func (s Selector) Refs() []FeatureRef {
	return append([]FeatureRef(nil), s.refs...)
}

// IsAll reports whether the selector denotes everything.
func (s Selector) IsAll() bool { return s.all }

// IsEmpty reports whether the selector denotes nothing.
func (s Selector) IsEmpty() bool { return !s.all && len(s.refs) == 0 }

// Resolve expands the selector against a patch into a concrete ordered
// reference list. Wildcards expand to the names present at call time, in
// insertion order; a wildcard over an empty type contributes nothing. An
// exact name absent from the patch fails with ErrMissingFeature.
//
// Duplicate (type, target-name) keys are collapsed destination-keyed: the
// first occurrence keeps its position, the last occurrence supplies the
// source.
func (s Selector) Resolve(p *Patch) ([]FeatureRef, error) {
	return s.resolve(p, true)
}

// ResolvePresent is Resolve with absent exact names silently dropped. It
// backs the operations for which absence is a no-op rather than an error:
// Remove, Save, and Load.
func (s Selector) ResolvePresent(p *Patch) []FeatureRef {
	refs, _ := s.resolve(p, false)
	return refs
}

func (s Selector) resolve(p *Patch, strict bool) ([]FeatureRef, error) {
	var expanded []FeatureRef

	appendType := func(t FeatureType) {
		if t.IsSingleton() {
			expanded = append(expanded, FeatureRef{Type: t})
			return
		}
		for _, name := range p.Names(t) {
			expanded = append(expanded, FeatureRef{Type: t, Name: name})
		}
	}

	if s.all {
		for _, t := range NamedTypes() {
			appendType(t)
		}
		if p.BBox() != nil {
			expanded = append(expanded, FeatureRef{Type: BBox})
		}
		if len(p.Timestamps()) > 0 {
			expanded = append(expanded, FeatureRef{Type: Timestamps})
		}
		if len(p.Meta()) > 0 {
			expanded = append(expanded, FeatureRef{Type: Meta})
		}
	} else {
		for _, ref := range s.refs {
			switch {
			case ref.Type.IsSingleton():
				expanded = append(expanded, FeatureRef{Type: ref.Type})
			case ref.Name == AllNames:
				appendType(ref.Type)
			default:
				if !p.Has(ref.Type, ref.Name) {
					if strict {
						return nil, fmt.Errorf("%w: %s", ErrMissingFeature, ref)
					}
					continue
				}
				expanded = append(expanded, ref)
			}
		}
	}

	// Destination-keyed dedup, last write wins.
	type key struct {
		t    FeatureType
		name string
	}
	out := make([]FeatureRef, 0, len(expanded))
	seen := make(map[key]int, len(expanded))
	for _, ref := range expanded {
		k := key{ref.Type, ref.TargetName()}
		if i, ok := seen[k]; ok {
			out[i] = ref
			continue
		}
		seen[k] = len(out)
		out = append(out, ref)
	}
	return out, nil
}
