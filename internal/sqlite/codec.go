// Payload encoding between patch payloads and SQLite rows. Arrays become
// little-endian float64 blobs with a JSON shape column; geometry
// collections become GeoJSON-based JSON blobs.
package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// Payload kinds stored in the features.payload_kind column.
const (
	kindArray  = "array"
	kindVector = "vector"
)

// timeFormat is the column format for timestamps, chosen to sort
// lexicographically.
const timeFormat = time.RFC3339Nano

// encodeArray serializes an array's buffer as little-endian float64 and
// its shape as JSON.
func encodeArray(arr *patch.Array) (shape string, payload []byte, err error) {
	shapeJSON, err := json.Marshal(arr.Shape())
	if err != nil {
		return "", nil, fmt.Errorf("encoding shape: %w", err)
	}
	data := arr.Data()
	payload = make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(payload[8*i:], math.Float64bits(v))
	}
	return string(shapeJSON), payload, nil
}

// decodeArray rebuilds an array from its shape column and payload blob.
func decodeArray(shape string, payload []byte) (*patch.Array, error) {
	var dims []int
	if err := json.Unmarshal([]byte(shape), &dims); err != nil {
		return nil, fmt.Errorf("decoding shape %q: %w", shape, err)
	}
	if len(payload)%8 != 0 {
		return nil, fmt.Errorf("array payload has %d bytes, not a multiple of 8", len(payload))
	}
	data := make([]float64, len(payload)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[8*i:]))
	}
	return patch.NewArray(dims, data)
}

// vectorRecord is the JSON form of one geometry record.
type vectorRecord struct {
	Geometry   *geojson.Geometry `json:"geometry"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Properties map[string]any    `json:"properties,omitempty"`
}

// encodeVector serializes a geometry collection as a JSON list of GeoJSON
// records.
func encodeVector(vc *patch.VectorCollection) ([]byte, error) {
	records := make([]vectorRecord, len(vc.Features))
	for i, f := range vc.Features {
		rec := vectorRecord{Properties: f.Properties}
		if f.Geometry != nil {
			rec.Geometry = geojson.NewGeometry(f.Geometry)
		}
		if !f.Timestamp.IsZero() {
			ts := f.Timestamp
			rec.Timestamp = &ts
		}
		records[i] = rec
	}
	return json.Marshal(records)
}

// decodeVector rebuilds a geometry collection from its JSON payload.
func decodeVector(payload []byte) (*patch.VectorCollection, error) {
	var records []vectorRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decoding vector payload: %w", err)
	}
	vc := &patch.VectorCollection{Features: make([]patch.VectorFeature, len(records))}
	for i, rec := range records {
		f := patch.VectorFeature{Properties: rec.Properties}
		if rec.Geometry != nil {
			f.Geometry = rec.Geometry.Geometry()
		}
		if rec.Timestamp != nil {
			f.Timestamp = *rec.Timestamp
		}
		vc.Features[i] = f
	}
	return vc, nil
}

// encodePayload dispatches on the payload's concrete type.
func encodePayload(payload patch.Payload) (kind, shape string, blob []byte, err error) {
	switch v := payload.(type) {
	case *patch.Array:
		shape, blob, err = encodeArray(v)
		return kindArray, shape, blob, err
	case *patch.VectorCollection:
		blob, err = encodeVector(v)
		return kindVector, "", blob, err
	default:
		return "", "", nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

// decodePayload dispatches on the stored payload kind.
func decodePayload(kind, shape string, blob []byte) (patch.Payload, error) {
	switch kind {
	case kindArray:
		return decodeArray(shape, blob)
	case kindVector:
		return decodeVector(blob)
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

// encodeMetaValue serializes one metadata value as JSON.
func encodeMetaValue(value any) (string, error) {
	out, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding metadata value: %w", err)
	}
	return string(out), nil
}

// decodeMetaValue deserializes one metadata value.
func decodeMetaValue(value string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("decoding metadata value %q: %w", value, err)
	}
	return out, nil
}
