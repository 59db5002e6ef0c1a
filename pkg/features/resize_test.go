package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

func TestSpatialResizeTaskNearest(t *testing.T) {
	p := patch.New()
	arr, err := patch.NewArray([]int{2, 2, 1}, []float64{
		1, 2,
		3, 4,
	})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "dem", arr))

	task, err := NewSpatialResizeTask(
		patch.Select(patch.DataTimeless, "dem"),
		ResizeNewSize, ResizeNearest, 4, 4)
	require.NoError(t, err)
	out, err := task.Execute(p)
	require.NoError(t, err)
	assert.Same(t, p, out)

	got, err := p.Get(patch.DataTimeless, "dem")
	require.NoError(t, err)
	resized := got.(*patch.Array)
	assert.Equal(t, []int{4, 4, 1}, resized.Shape())
	assert.Equal(t, []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, resized.Data())
}

func TestSpatialResizeTaskLinear(t *testing.T) {
	p := patch.New()
	arr, err := patch.NewArray([]int{1, 2, 1}, []float64{0, 2})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "ramp", arr))

	task, err := NewSpatialResizeTask(
		patch.Select(patch.DataTimeless, "ramp"),
		ResizeNewSize, ResizeLinear, 4, 1)
	require.NoError(t, err)
	_, err = task.Execute(p)
	require.NoError(t, err)

	got, err := p.Get(patch.DataTimeless, "ramp")
	require.NoError(t, err)
	resized := got.(*patch.Array)
	assert.Equal(t, []int{1, 4, 1}, resized.Shape())
	assert.InDeltaSlice(t, []float64{0, 0.5, 1.5, 2}, resized.Data(), 1e-12)
}

func TestSpatialResizeTaskScaleFactor(t *testing.T) {
	p := patch.New()
	arr, err := patch.NewArray([]int{2, 1, 2, 1}, []float64{
		1, 2,
		3, 4,
	})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.Data, "bands", arr))

	task, err := NewSpatialResizeTask(
		patch.Select(patch.Data, "bands"),
		ResizeScaleFactor, ResizeNearest, 2, 2)
	require.NoError(t, err)
	_, err = task.Execute(p)
	require.NoError(t, err)

	got, err := p.Get(patch.Data, "bands")
	require.NoError(t, err)
	resized := got.(*patch.Array)
	assert.Equal(t, []int{2, 2, 4, 1}, resized.Shape())
	// Each frame doubles independently along both spatial axes.
	assert.Equal(t, []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, resized.Data())
}

func TestSpatialResizeTaskResolution(t *testing.T) {
	p := patch.New()
	p.SetBBox(patch.NewBoundingBox(0, 0, 4, 2, 4326))
	arr, err := patch.NewArray([]int{1, 2, 1}, []float64{10, 20})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "dem", arr))

	task, err := NewSpatialResizeTask(
		patch.Select(patch.DataTimeless, "dem"),
		ResizeResolution, ResizeNearest, 1, 1)
	require.NoError(t, err)
	_, err = task.Execute(p)
	require.NoError(t, err)

	got, err := p.Get(patch.DataTimeless, "dem")
	require.NoError(t, err)
	resized := got.(*patch.Array)
	assert.Equal(t, []int{2, 4, 1}, resized.Shape())
	assert.Equal(t, []float64{
		10, 10, 20, 20,
		10, 10, 20, 20,
	}, resized.Data())
}

func TestSpatialResizeTaskResolutionNeedsBBox(t *testing.T) {
	p := patch.New()
	arr, err := patch.NewArray([]int{1, 1, 1}, []float64{1})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "dem", arr))

	task, err := NewSpatialResizeTask(
		patch.Select(patch.DataTimeless, "dem"),
		ResizeResolution, ResizeNearest, 1, 1)
	require.NoError(t, err)
	_, err = task.Execute(p)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)
}

func TestSpatialResizeTaskSkipsNonSpatial(t *testing.T) {
	p := patch.New()
	dem, err := patch.NewArray([]int{1, 1, 1}, []float64{7})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "dem", dem))
	scalar, err := patch.NewArray([]int{1, 2}, []float64{5, 6})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.ScalarTimeless, "values", scalar))

	task, err := NewSpatialResizeTask(patch.Selector{}, ResizeNewSize, ResizeNearest, 2, 2)
	require.NoError(t, err)
	_, err = task.Execute(p)
	require.NoError(t, err)

	got, err := p.Get(patch.DataTimeless, "dem")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, got.(*patch.Array).Shape())

	kept, err := p.Get(patch.ScalarTimeless, "values")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, kept.(*patch.Array).Shape())
	assert.Equal(t, []float64{5, 6}, kept.(*patch.Array).Data())
}

func TestSpatialResizeTaskRename(t *testing.T) {
	p := patch.New()
	arr, err := patch.NewArray([]int{1, 1, 1}, []float64{3})
	require.NoError(t, err)
	require.NoError(t, p.Set(patch.DataTimeless, "dem", arr))

	task, err := NewSpatialResizeTask(
		patch.SelectRenamed(patch.DataTimeless, "dem", "dem_small"),
		ResizeNewSize, ResizeNearest, 2, 2)
	require.NoError(t, err)
	_, err = task.Execute(p)
	require.NoError(t, err)

	source, err := p.Get(patch.DataTimeless, "dem")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, source.(*patch.Array).Shape())

	resized, err := p.Get(patch.DataTimeless, "dem_small")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, resized.(*patch.Array).Shape())
}

func TestNewSpatialResizeTaskValidation(t *testing.T) {
	sel := patch.Select(patch.DataTimeless, "dem")

	_, err := NewSpatialResizeTask(sel, ResizeMode("stretch"), ResizeNearest, 1, 1)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)

	_, err = NewSpatialResizeTask(sel, ResizeNewSize, ResizeMethod("cubic"), 1, 1)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)

	_, err = NewSpatialResizeTask(sel, ResizeNewSize, ResizeNearest, 0, 4)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)
}
