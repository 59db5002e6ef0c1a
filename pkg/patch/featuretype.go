// Package patch defines the Patch spatio-temporal data container, the
// FeatureType classification, payload types, feature selectors, the Store
// interface, and standard errors for the Terrapatch library.
package patch

import "fmt"

// FeatureType classifies a named slot in a patch by temporal/spatial shape
// and data kind. The set is closed; every slot in a patch belongs to
// exactly one type.
type FeatureType int

const (
	// Data is a time-dependent raster with axes (time, y, x, channel).
	Data FeatureType = iota
	// Mask is a time-dependent raster mask with axes (time, y, x, channel).
	Mask
	// Scalar is a time-dependent value series with axes (time, channel).
	Scalar
	// Label is a time-dependent label series with axes (time, channel).
	Label
	// Vector is a time-dependent geometry collection.
	Vector
	// DataTimeless is a timeless raster with axes (y, x, channel).
	DataTimeless
	// MaskTimeless is a timeless raster mask with axes (y, x, channel).
	MaskTimeless
	// ScalarTimeless is a timeless value series with axis (channel).
	ScalarTimeless
	// LabelTimeless is a timeless label series with axis (channel).
	LabelTimeless
	// VectorTimeless is a timeless geometry collection.
	VectorTimeless
	// Meta is the singleton free-form metadata bag.
	Meta
	// BBox is the singleton spatial footprint.
	BBox
	// Timestamps is the singleton ordered timestamp sequence.
	Timestamps

	numFeatureTypes = iota
)

// featureTypeNames maps each type to its stable string form, used by the
// Store and the CLI.
var featureTypeNames = [numFeatureTypes]string{
	Data:           "data",
	Mask:           "mask",
	Scalar:         "scalar",
	Label:          "label",
	Vector:         "vector",
	DataTimeless:   "data_timeless",
	MaskTimeless:   "mask_timeless",
	ScalarTimeless: "scalar_timeless",
	LabelTimeless:  "label_timeless",
	VectorTimeless: "vector_timeless",
	Meta:           "meta_info",
	BBox:           "bbox",
	Timestamps:     "timestamps",
}

// Types returns every feature type in declaration order, singletons last.
func Types() []FeatureType {
	types := make([]FeatureType, numFeatureTypes)
	for i := range types {
		types[i] = FeatureType(i)
	}
	return types
}

// NamedTypes returns the non-singleton feature types, i.e. the types whose
// slots are keyed by name.
func NamedTypes() []FeatureType {
	var types []FeatureType
	for _, t := range Types() {
		if !t.IsSingleton() {
			types = append(types, t)
		}
	}
	return types
}

// String returns the stable name of the feature type.
func (t FeatureType) String() string {
	if t < 0 || t >= numFeatureTypes {
		return fmt.Sprintf("FeatureType(%d)", int(t))
	}
	return featureTypeNames[t]
}

// ParseFeatureType returns the feature type with the given stable name.
// Returns ErrInvalidArgument if the name is not recognized.
func ParseFeatureType(name string) (FeatureType, error) {
	for i, n := range featureTypeNames {
		if n == name {
			return FeatureType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown feature type %q", ErrInvalidArgument, name)
}

// IsTemporal reports whether payloads of this type carry a per-timestamp
// leading axis (or, for the Timestamps singleton, are the timestamps).
func (t FeatureType) IsTemporal() bool {
	switch t {
	case Data, Mask, Scalar, Label, Vector, Timestamps:
		return true
	default:
		return false
	}
}

// IsVector reports whether payloads of this type are geometry collections.
func (t FeatureType) IsVector() bool {
	return t == Vector || t == VectorTimeless
}

// IsRaster reports whether payloads of this type are dense arrays.
func (t FeatureType) IsRaster() bool {
	switch t {
	case Data, Mask, Scalar, Label, DataTimeless, MaskTimeless, ScalarTimeless, LabelTimeless:
		return true
	default:
		return false
	}
}

// IsSpatial reports whether payloads of this type carry (y, x) axes.
func (t FeatureType) IsSpatial() bool {
	switch t {
	case Data, Mask, DataTimeless, MaskTimeless:
		return true
	default:
		return false
	}
}

// IsSingleton reports whether the type denotes one of the three reserved
// slots that are not keyed by name.
func (t FeatureType) IsSingleton() bool {
	return t == Meta || t == BBox || t == Timestamps
}

// RequiredRank returns the number of axes a raster payload of this type
// must have: 4 for time-dependent rasters, 3 for timeless rasters, 2 for
// time-dependent series, 1 for timeless series. Returns 0 for vector and
// singleton types, which carry no rank constraint.
func (t FeatureType) RequiredRank() int {
	switch t {
	case Data, Mask:
		return 4
	case DataTimeless, MaskTimeless:
		return 3
	case Scalar, Label:
		return 2
	case ScalarTimeless, LabelTimeless:
		return 1
	default:
		return 0
	}
}
