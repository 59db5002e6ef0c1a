package patch

import (
	"reflect"
	"time"

	"github.com/paulmach/orb"
)

// VectorFeature is one geometry record in a vector payload. Timestamp is
// meaningful only under the time-dependent Vector type; timeless records
// leave it zero.
type VectorFeature struct {
	Geometry   orb.Geometry
	Timestamp  time.Time
	Properties map[string]any
}

// VectorCollection is the payload for Vector and VectorTimeless features:
// an ordered collection of geometry records.
type VectorCollection struct {
	Features []VectorFeature
}

// NewVectorCollection creates a collection owning the given records.
func NewVectorCollection(features ...VectorFeature) *VectorCollection {
	return &VectorCollection{Features: features}
}

// Len returns the number of records.
func (v *VectorCollection) Len() int { return len(v.Features) }

// DeepCopy returns an independently owned copy, cloning geometries and
// property maps.
func (v *VectorCollection) DeepCopy() Payload {
	out := &VectorCollection{Features: make([]VectorFeature, len(v.Features))}
	for i, f := range v.Features {
		clone := VectorFeature{Timestamp: f.Timestamp}
		if f.Geometry != nil {
			clone.Geometry = orb.Clone(f.Geometry)
		}
		if f.Properties != nil {
			clone.Properties = make(map[string]any, len(f.Properties))
			for k, val := range f.Properties {
				clone.Properties[k] = val
			}
		}
		out.Features[i] = clone
	}
	return out
}

// EqualPayload reports whether other is a vector collection with equal
// records in the same order.
func (v *VectorCollection) EqualPayload(other Payload) bool {
	w, ok := other.(*VectorCollection)
	if !ok || len(v.Features) != len(w.Features) {
		return false
	}
	for i, f := range v.Features {
		g := w.Features[i]
		if !f.Timestamp.Equal(g.Timestamp) {
			return false
		}
		if !reflect.DeepEqual(f.Geometry, g.Geometry) {
			return false
		}
		if !reflect.DeepEqual(f.Properties, g.Properties) {
			return false
		}
	}
	return true
}

// FilterByTime returns a new collection holding only the records whose
// timestamp equals one of keep. Geometries and property maps are shared
// with the source.
func (v *VectorCollection) FilterByTime(keep []time.Time) *VectorCollection {
	out := &VectorCollection{}
	for _, f := range v.Features {
		for _, ts := range keep {
			if f.Timestamp.Equal(ts) {
				out.Features = append(out.Features, f)
				break
			}
		}
	}
	return out
}
