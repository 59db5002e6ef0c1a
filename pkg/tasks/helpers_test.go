package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// ramp returns an array of the given shape filled with 0..n-1.
func ramp(t *testing.T, shape ...int) *patch.Array {
	t.Helper()
	size := 1
	for _, n := range shape {
		size *= n
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = float64(i)
	}
	arr, err := patch.NewArray(shape, data)
	require.NoError(t, err)
	return arr
}

func timestamps(n int) []time.Time {
	base := time.Date(2017, 1, 1, 10, 4, 7, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, 3*i)
	}
	return out
}

// fixturePatch builds the canonical test patch: a temporal raster, a
// timeless mask, a scalar series, ten timestamps, a footprint, and one
// metadata entry.
func fixturePatch(t *testing.T) *patch.Patch {
	t.Helper()
	p := patch.New()
	require.NoError(t, p.SetTimestamps(timestamps(10)))
	require.NoError(t, p.Set(patch.Data, "bands", ramp(t, 10, 3, 3, 2)))
	require.NoError(t, p.Set(patch.MaskTimeless, "mask", ramp(t, 3, 3, 2)))
	require.NoError(t, p.Set(patch.Scalar, "values", ramp(t, 10, 5)))
	p.SetBBox(patch.NewBoundingBox(324.54, 63.43, 955.4, 546.45, 3857))
	p.SetMetaValue("something", "auxiliary")
	return p
}

func getArray(t *testing.T, p *patch.Patch, ftype patch.FeatureType, name string) *patch.Array {
	t.Helper()
	payload, err := p.Get(ftype, name)
	require.NoError(t, err)
	arr, ok := payload.(*patch.Array)
	require.True(t, ok, "%s/%s is not an array", ftype, name)
	return arr
}
