package patch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimestamps(n int) []time.Time {
	base := time.Date(2017, 1, 1, 10, 4, 7, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, 3*i)
	}
	return out
}

// fixturePatch mirrors the canonical test patch: a temporal raster, a
// timeless mask, a scalar series, timestamps, a footprint, and metadata.
func fixturePatch(t *testing.T) *Patch {
	t.Helper()
	p := New()
	require.NoError(t, p.SetTimestamps(testTimestamps(10)))
	require.NoError(t, p.Set(Data, "bands", sequence(10, 3, 3, 2)))
	require.NoError(t, p.Set(MaskTimeless, "mask", sequence(3, 3, 2)))
	require.NoError(t, p.Set(Scalar, "values", sequence(10, 5)))
	p.SetBBox(NewBoundingBox(324.54, 63.43, 955.4, 546.45, 3857))
	p.SetMetaValue("something", "auxiliary")
	return p
}

func TestSetValidation(t *testing.T) {
	ts := testTimestamps(5)

	tests := []struct {
		name    string
		ftype   FeatureType
		key     string
		payload Payload
		wantErr error
	}{
		{name: "temporal raster rank 4", ftype: Data, key: "d", payload: sequence(5, 2, 2, 3)},
		{name: "timeless raster rank 3", ftype: DataTimeless, key: "d", payload: sequence(2, 2, 3)},
		{name: "scalar rank 2", ftype: Scalar, key: "s", payload: sequence(5, 4)},
		{name: "timeless label rank 1", ftype: LabelTimeless, key: "l", payload: sequence(4)},
		{name: "vector payload", ftype: VectorTimeless, key: "v", payload: NewVectorCollection()},
		{name: "wrong rank for temporal", ftype: Mask, key: "m", payload: sequence(2, 2, 3), wantErr: ErrShapeMismatch},
		{name: "wrong rank for timeless", ftype: MaskTimeless, key: "m", payload: sequence(5, 2, 2, 3), wantErr: ErrShapeMismatch},
		{name: "frame count vs timestamps", ftype: Data, key: "d", payload: sequence(4, 2, 2, 3), wantErr: ErrShapeMismatch},
		{name: "array under vector type", ftype: Vector, key: "v", payload: sequence(5, 4), wantErr: ErrInvalidArgument},
		{name: "vector under raster type", ftype: Data, key: "d", payload: NewVectorCollection(), wantErr: ErrInvalidArgument},
		{name: "empty name", ftype: Data, key: "", payload: sequence(5, 2, 2, 3), wantErr: ErrInvalidArgument},
		{name: "reserved wildcard name", ftype: Data, key: AllNames, payload: sequence(5, 2, 2, 3), wantErr: ErrInvalidArgument},
		{name: "nil payload", ftype: Data, key: "d", payload: nil, wantErr: ErrInvalidArgument},
		{name: "singleton type", ftype: BBox, key: "b", payload: sequence(1), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			require.NoError(t, p.SetTimestamps(ts))

			err := p.Set(tt.ftype, tt.key, tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := p.Get(tt.ftype, tt.key)
			require.NoError(t, err)
			assert.Same(t, tt.payload, got, "assignment binds the payload reference, no copy")
		})
	}
}

func TestSetReplacesSilently(t *testing.T) {
	p := New()
	first := sequence(2, 2, 2, 1)
	second := Filled([]int{2, 2, 2, 1}, 9)

	require.NoError(t, p.Set(Data, "d", first))
	require.NoError(t, p.Set(Data, "d", second))

	got, err := p.Get(Data, "d")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"d"}, p.Names(Data), "replacement keeps a single binding")
}

func TestGetMissing(t *testing.T) {
	p := New()
	_, err := p.Get(Data, "absent")
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestDeleteIsLenient(t *testing.T) {
	p := fixturePatch(t)

	p.Delete(Data, "bands")
	assert.False(t, p.Has(Data, "bands"))

	// Deleting an absent key is a no-op.
	p.Delete(Data, "bands")
	p.Delete(Mask, "never-existed")
}

func TestDeleteAllLeavesEmptyMapping(t *testing.T) {
	p := fixturePatch(t)
	require.NoError(t, p.Set(MaskTimeless, "mask2", sequence(3, 3, 1)))
	require.Equal(t, 2, p.Len(MaskTimeless))

	p.DeleteAll(MaskTimeless)

	assert.Equal(t, 0, p.Len(MaskTimeless))
	assert.Empty(t, p.Names(MaskTimeless))
	assert.Equal(t, 1, p.Len(Data), "other types untouched")
}

func TestNamesPreserveInsertionOrder(t *testing.T) {
	p := New()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, p.Set(DataTimeless, name, sequence(2, 2, 1)))
	}
	assert.Equal(t, []string{"c", "a", "b"}, p.Names(DataTimeless))
}

func TestSetTimestampsValidatesExistingFeatures(t *testing.T) {
	p := New()
	require.NoError(t, p.Set(Data, "d", sequence(10, 2, 2, 1)))

	assert.ErrorIs(t, p.SetTimestamps(testTimestamps(4)), ErrShapeMismatch)
	assert.NoError(t, p.SetTimestamps(testTimestamps(10)))
	assert.ErrorIs(t, p.SetTimestamps(nil), ErrShapeMismatch, "cannot clear while temporal frames remain")

	p.Delete(Data, "d")
	assert.NoError(t, p.SetTimestamps(nil))
}

func TestEquality(t *testing.T) {
	a := fixturePatch(t)
	b := fixturePatch(t)
	assert.True(t, a.Equal(b), "deep value equality, not identity")

	payload, err := b.Get(Data, "bands")
	require.NoError(t, err)
	payload.(*Array).Data()[0] += 1
	assert.False(t, a.Equal(b), "payload mutation breaks equality")
}

func TestEqualityIgnoresInsertionOrder(t *testing.T) {
	a := New()
	require.NoError(t, a.Set(DataTimeless, "x", sequence(2, 2, 1)))
	require.NoError(t, a.Set(DataTimeless, "y", sequence(2, 2, 1)))

	b := New()
	require.NoError(t, b.Set(DataTimeless, "y", sequence(2, 2, 1)))
	require.NoError(t, b.Set(DataTimeless, "x", sequence(2, 2, 1)))

	assert.True(t, a.Equal(b))
}

func TestEqualitySingletons(t *testing.T) {
	a := fixturePatch(t)

	b := fixturePatch(t)
	b.SetBBox(NewBoundingBox(0, 0, 1, 1, 4326))
	assert.False(t, a.Equal(b))

	c := fixturePatch(t)
	c.SetMetaValue("extra", 1)
	assert.False(t, a.Equal(c))

	d := fixturePatch(t)
	require.NoError(t, d.Set(Label, "ignore", sequence(10, 1)))
	d.Delete(Label, "ignore")
	assert.True(t, a.Equal(d))
}

func TestCreate(t *testing.T) {
	bbox := NewBoundingBox(5.60, 52.63, 5.75, 52.68, 4326)
	data := sequence(2, 3, 3, 2)

	p, err := Create(
		WithBBox(bbox),
		WithTimestamps(testTimestamps(2)),
		WithFeature(Data, "bands", data),
		WithMeta("source", "unit-test"),
	)
	require.NoError(t, err)

	got, err := p.Get(Data, "bands")
	require.NoError(t, err)
	assert.Same(t, data, got)
	assert.True(t, bbox.Equal(p.BBox()))
	assert.Len(t, p.Timestamps(), 2)
	assert.Equal(t, "unit-test", p.Meta()["source"])
}

func TestCreateEnforcesInvariants(t *testing.T) {
	_, err := Create(
		WithTimestamps(testTimestamps(3)),
		WithFeature(Data, "bands", sequence(2, 3, 3, 2)),
	)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// Same violation with the option order flipped.
	_, err = Create(
		WithFeature(Data, "bands", sequence(2, 3, 3, 2)),
		WithTimestamps(testTimestamps(3)),
	)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestList(t *testing.T) {
	p := fixturePatch(t)
	refs := p.List()
	assert.Equal(t, []FeatureRef{
		{Type: Data, Name: "bands"},
		{Type: Scalar, Name: "values"},
		{Type: MaskTimeless, Name: "mask"},
	}, refs)
}
