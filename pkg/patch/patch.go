package patch

import (
	"fmt"
	"reflect"
	"time"
)

// featureMap is an insertion-order-preserving name -> payload mapping for
// one feature type.
type featureMap struct {
	names  []string
	values map[string]Payload
}

func newFeatureMap() *featureMap {
	return &featureMap{values: make(map[string]Payload)}
}

func (m *featureMap) get(name string) (Payload, bool) {
	p, ok := m.values[name]
	return p, ok
}

// set binds name to payload. An existing name keeps its position; a new
// name is appended.
func (m *featureMap) set(name string, payload Payload) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = payload
}

func (m *featureMap) delete(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

// Patch is the mutable spatio-temporal data container. It owns one
// insertion-order-preserving name -> payload mapping per non-singleton
// FeatureType, plus the three singleton slots: footprint, timestamp
// sequence, and metadata bag.
//
// A patch provides no internal locking; two goroutines must not mutate the
// same patch concurrently without external serialization.
type Patch struct {
	features [numFeatureTypes]*featureMap

	bbox       *BoundingBox
	timestamps []time.Time
	meta       map[string]any
}

// New creates an empty patch.
func New() *Patch {
	p := &Patch{meta: make(map[string]any)}
	for _, t := range NamedTypes() {
		p.features[t] = newFeatureMap()
	}
	return p
}

// Option seeds a slot during Create.
type Option func(*Patch) error

// WithFeature binds a payload under (t, name), subject to the same
// invariants as Patch.Set.
func WithFeature(t FeatureType, name string, payload Payload) Option {
	return func(p *Patch) error { return p.Set(t, name, payload) }
}

// WithBBox sets the footprint slot.
func WithBBox(b *BoundingBox) Option {
	return func(p *Patch) error {
		p.SetBBox(b)
		return nil
	}
}

// WithTimestamps sets the timestamp sequence slot.
func WithTimestamps(ts []time.Time) Option {
	return func(p *Patch) error { return p.SetTimestamps(ts) }
}

// WithMeta sets one metadata key.
func WithMeta(key string, value any) Option {
	return func(p *Patch) error {
		p.meta[key] = value
		return nil
	}
}

// Create builds a new patch from seeded slots, enforcing dimensionality
// and consistency invariants as each option is applied. A timestamp and
// temporal-feature mismatch is caught regardless of option order, since
// whichever slot arrives second is validated against the first.
func Create(opts ...Option) (*Patch, error) {
	p := New()
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Set binds payload under (t, name), replacing any existing binding for
// that key without copying. It returns ErrInvalidArgument when t is a
// singleton type, the name is empty or reserved, or the payload kind does
// not match the feature type; it returns ErrShapeMismatch when an array
// payload's rank disagrees with the type or its leading axis disagrees
// with the timestamp count.
func (p *Patch) Set(t FeatureType, name string, payload Payload) error {
	if t.IsSingleton() {
		return fmt.Errorf("%w: %s is a singleton slot, not a named feature type", ErrInvalidArgument, t)
	}
	if name == "" || name == AllNames {
		return fmt.Errorf("%w: invalid feature name %q", ErrInvalidArgument, name)
	}
	if payload == nil {
		return fmt.Errorf("%w: nil payload for %s/%s", ErrInvalidArgument, t, name)
	}

	switch v := payload.(type) {
	case *Array:
		if !t.IsRaster() {
			return fmt.Errorf("%w: %s features hold geometry collections, not arrays", ErrInvalidArgument, t)
		}
		if v.Rank() != t.RequiredRank() {
			return fmt.Errorf("%w: %s requires rank %d, payload has rank %d", ErrShapeMismatch, t, t.RequiredRank(), v.Rank())
		}
		if t.IsTemporal() && len(p.timestamps) > 0 && v.Shape()[0] != len(p.timestamps) {
			return fmt.Errorf("%w: %s/%s has %d frames, patch has %d timestamps",
				ErrShapeMismatch, t, name, v.Shape()[0], len(p.timestamps))
		}
	case *VectorCollection:
		if !t.IsVector() {
			return fmt.Errorf("%w: %s features hold arrays, not geometry collections", ErrInvalidArgument, t)
		}
	default:
		return fmt.Errorf("%w: unsupported payload type %T", ErrInvalidArgument, payload)
	}

	p.features[t].set(name, payload)
	return nil
}

// Get returns the payload bound under (t, name). Returns ErrMissingFeature
// if the key is absent and ErrInvalidArgument for singleton types.
func (p *Patch) Get(t FeatureType, name string) (Payload, error) {
	if t.IsSingleton() {
		return nil, fmt.Errorf("%w: %s is a singleton slot", ErrInvalidArgument, t)
	}
	payload, ok := p.features[t].get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingFeature, t, name)
	}
	return payload, nil
}

// Has reports whether (t, name) is bound.
func (p *Patch) Has(t FeatureType, name string) bool {
	if t.IsSingleton() {
		return false
	}
	_, ok := p.features[t].get(name)
	return ok
}

// Delete removes the binding for (t, name). Deleting an absent key is a
// no-op.
func (p *Patch) Delete(t FeatureType, name string) {
	if t.IsSingleton() {
		return
	}
	p.features[t].delete(name)
}

// DeleteAll removes every binding of the given type, leaving an empty (not
// absent) mapping.
func (p *Patch) DeleteAll(t FeatureType) {
	if t.IsSingleton() {
		return
	}
	p.features[t] = newFeatureMap()
}

// Names returns the names bound under t, in insertion order.
func (p *Patch) Names(t FeatureType) []string {
	if t.IsSingleton() {
		return nil
	}
	return append([]string(nil), p.features[t].names...)
}

// Len returns the number of bindings under t.
func (p *Patch) Len(t FeatureType) int {
	if t.IsSingleton() {
		return 0
	}
	return len(p.features[t].names)
}

// List returns a reference for every named feature in the patch, iterating
// types in declaration order and names in insertion order.
func (p *Patch) List() []FeatureRef {
	var refs []FeatureRef
	for _, t := range NamedTypes() {
		for _, name := range p.features[t].names {
			refs = append(refs, FeatureRef{Type: t, Name: name})
		}
	}
	return refs
}

// BBox returns the footprint slot, which may be nil.
func (p *Patch) BBox() *BoundingBox { return p.bbox }

// SetBBox replaces the footprint slot. The footprint is bound by
// reference; callers wanting isolation should pass a Clone.
func (p *Patch) SetBBox(b *BoundingBox) { p.bbox = b }

// Timestamps returns the timestamp sequence slot. The returned slice is
// the bound value, not a copy.
func (p *Patch) Timestamps() []time.Time { return p.timestamps }

// SetTimestamps replaces the timestamp sequence. When temporal raster
// features are present their leading axis must match the new count;
// otherwise ErrShapeMismatch is returned. Clearing the sequence is
// therefore only possible while no temporal frames remain.
func (p *Patch) SetTimestamps(ts []time.Time) error {
	for _, t := range NamedTypes() {
		if !t.IsTemporal() || !t.IsRaster() {
			continue
		}
		for _, name := range p.features[t].names {
			arr := p.features[t].values[name].(*Array)
			if arr.Shape()[0] != len(ts) {
				return fmt.Errorf("%w: %s/%s has %d frames, sequence has %d timestamps",
					ErrShapeMismatch, t, name, arr.Shape()[0], len(ts))
			}
		}
	}
	p.timestamps = ts
	return nil
}

// Meta returns the metadata bag. The returned map is the bound value;
// mutating it mutates the patch.
func (p *Patch) Meta() map[string]any { return p.meta }

// SetMetaValue sets one metadata key.
func (p *Patch) SetMetaValue(key string, value any) {
	p.meta[key] = value
}

// ClearMeta empties the metadata bag.
func (p *Patch) ClearMeta() {
	p.meta = make(map[string]any)
}

// Equal reports deep value equality of two patches: every named slot and
// every singleton slot must compare equal. Name insertion order does not
// participate in equality.
func (p *Patch) Equal(other *Patch) bool {
	if other == nil {
		return false
	}
	for _, t := range NamedTypes() {
		a, b := p.features[t], other.features[t]
		if len(a.names) != len(b.names) {
			return false
		}
		for name, payload := range a.values {
			otherPayload, ok := b.values[name]
			if !ok || !payload.EqualPayload(otherPayload) {
				return false
			}
		}
	}
	if !p.bbox.Equal(other.bbox) {
		return false
	}
	if len(p.timestamps) != len(other.timestamps) {
		return false
	}
	for i, ts := range p.timestamps {
		if !ts.Equal(other.timestamps[i]) {
			return false
		}
	}
	return metaEqual(p.meta, other.meta)
}

func metaEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok {
			return false
		}
		if pa, isPayload := v.(Payload); isPayload {
			pb, okPayload := w.(Payload)
			if !okPayload || !pa.EqualPayload(pb) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}
