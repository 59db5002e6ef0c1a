package patch

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBox(t *testing.T) {
	b := NewBoundingBox(955.4, 546.45, 324.54, 63.43, 3857)
	assert.Equal(t, 324.54, b.Bound.Min[0], "corner order is normalized")
	assert.Equal(t, 546.45, b.Bound.Max[1])
	assert.InDelta(t, 630.86, b.Width(), 1e-9)
	assert.InDelta(t, 483.02, b.Height(), 1e-9)

	clone := b.Clone()
	assert.True(t, b.Equal(clone))
	clone.CRS = 4326
	assert.False(t, b.Equal(clone))

	var none *BoundingBox
	assert.True(t, none.Equal(nil))
	assert.False(t, none.Equal(b))
	assert.Nil(t, none.Clone())
}

func TestVectorCollectionDeepCopy(t *testing.T) {
	ts := time.Date(2017, 3, 2, 10, 0, 20, 0, time.UTC)
	src := NewVectorCollection(
		VectorFeature{
			Geometry:   orb.Point{5.6, 52.6},
			Timestamp:  ts,
			Properties: map[string]any{"kind": "field"},
		},
		VectorFeature{
			Geometry: orb.LineString{{0, 0}, {1, 1}},
		},
	)

	dup := src.DeepCopy().(*VectorCollection)
	require.True(t, src.EqualPayload(dup))

	dup.Features[0].Properties["kind"] = "road"
	assert.Equal(t, "field", src.Features[0].Properties["kind"], "property maps are independent")

	line := dup.Features[1].Geometry.(orb.LineString)
	line[0][0] = 99
	assert.Equal(t, 0.0, src.Features[1].Geometry.(orb.LineString)[0][0], "geometries are cloned")
}

func TestVectorCollectionEquality(t *testing.T) {
	a := NewVectorCollection(VectorFeature{Geometry: orb.Point{1, 2}})
	b := NewVectorCollection(VectorFeature{Geometry: orb.Point{1, 2}})
	c := NewVectorCollection(VectorFeature{Geometry: orb.Point{1, 3}})

	assert.True(t, a.EqualPayload(b))
	assert.False(t, a.EqualPayload(c))
	assert.False(t, a.EqualPayload(NewVectorCollection()))
	assert.False(t, a.EqualPayload(sequence(1)), "different payload kind")
}

func TestVectorFilterByTime(t *testing.T) {
	times := testTimestamps(3)
	src := NewVectorCollection(
		VectorFeature{Geometry: orb.Point{0, 0}, Timestamp: times[0]},
		VectorFeature{Geometry: orb.Point{1, 1}, Timestamp: times[1]},
		VectorFeature{Geometry: orb.Point{2, 2}, Timestamp: times[2]},
	)

	kept := src.FilterByTime([]time.Time{times[0], times[2]})
	require.Equal(t, 2, kept.Len())
	assert.Equal(t, orb.Point{0, 0}, kept.Features[0].Geometry)
	assert.Equal(t, orb.Point{2, 2}, kept.Features[1].Geometry)
	assert.Equal(t, 3, src.Len(), "source untouched")
}
