package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

func TestAddFeatureTask(t *testing.T) {
	p := fixturePatch(t)
	arr := ramp(t, 10, 3, 3, 5)

	out, err := NewAddFeatureTask(patch.Data, "bands2").Execute(p, arr)
	require.NoError(t, err)
	assert.Same(t, p, out)

	got := getArray(t, p, patch.Data, "bands2")
	assert.Same(t, arr, got)
}

func TestAddFeatureTaskReplaces(t *testing.T) {
	p := fixturePatch(t)
	arr := ramp(t, 10, 3, 3, 1)

	_, err := NewAddFeatureTask(patch.Data, "bands").Execute(p, arr)
	require.NoError(t, err)
	assert.Same(t, arr, getArray(t, p, patch.Data, "bands"))
}

func TestAddFeatureTaskValidates(t *testing.T) {
	p := fixturePatch(t)

	// Wrong leading axis for a temporal raster.
	_, err := NewAddFeatureTask(patch.Data, "bad").Execute(p, ramp(t, 4, 3, 3, 2))
	assert.ErrorIs(t, err, patch.ErrShapeMismatch)

	// Missing payload argument.
	_, err = NewAddFeatureTask(patch.Data, "bad").Execute(p)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)
}

func TestRemoveFeatureTask(t *testing.T) {
	p := fixturePatch(t)

	task := NewRemoveFeatureTask(patch.Select(patch.Data, "bands").And(patch.SelectAllOf(patch.Meta)))
	out, err := task.Execute(p)
	require.NoError(t, err)
	assert.Same(t, p, out)

	assert.False(t, p.Has(patch.Data, "bands"))
	assert.Empty(t, p.Meta())
	assert.True(t, p.Has(patch.Scalar, "values"))
	assert.NotNil(t, p.BBox())
}

func TestRemoveFeatureTaskAbsentIsNoop(t *testing.T) {
	p := fixturePatch(t)

	_, err := NewRemoveFeatureTask(patch.Select(patch.Data, "no_such")).Execute(p)
	require.NoError(t, err)
	assert.True(t, p.Has(patch.Data, "bands"))
}

func TestRemoveFeatureTaskSingletons(t *testing.T) {
	p := fixturePatch(t)

	task := NewRemoveFeatureTask(patch.SelectAllOf(patch.BBox).And(patch.SelectAllOf(patch.Timestamps)))
	_, err := task.Execute(p)
	// Temporal rasters remain, so timestamps cannot be dropped to zero.
	assert.ErrorIs(t, err, patch.ErrShapeMismatch)

	p.Delete(patch.Data, "bands")
	p.Delete(patch.Scalar, "values")
	_, err = task.Execute(p)
	require.NoError(t, err)
	assert.Nil(t, p.BBox())
	assert.Empty(t, p.Timestamps())
}

func TestRenameFeatureTask(t *testing.T) {
	p := fixturePatch(t)
	orig := getArray(t, p, patch.Data, "bands")

	out, err := NewRenameFeatureTask(patch.SelectRenamed(patch.Data, "bands", "new_bands")).Execute(p)
	require.NoError(t, err)
	assert.Same(t, p, out)

	assert.False(t, p.Has(patch.Data, "bands"))
	assert.Same(t, orig, getArray(t, p, patch.Data, "new_bands"))
}

func TestRenameFeatureTaskCollision(t *testing.T) {
	p := fixturePatch(t)
	require.NoError(t, p.Set(patch.Data, "other", ramp(t, 10, 3, 3, 2)))

	_, err := NewRenameFeatureTask(patch.SelectRenamed(patch.Data, "bands", "other")).Execute(p)
	assert.ErrorIs(t, err, patch.ErrDuplicateFeature)
}

func TestDuplicateFeatureTask(t *testing.T) {
	p := fixturePatch(t)

	task := NewDuplicateFeatureTask(patch.SelectRenamed(patch.Data, "bands", "bands2"), false)
	out, err := task.Execute(p)
	require.NoError(t, err)
	assert.Same(t, p, out)

	// Shallow duplicate aliases the payload.
	assert.Same(t, getArray(t, p, patch.Data, "bands"), getArray(t, p, patch.Data, "bands2"))

	// Duplicating onto an existing name fails.
	_, err = task.Execute(p)
	assert.ErrorIs(t, err, patch.ErrDuplicateFeature)
}

func TestDuplicateFeatureTaskDeep(t *testing.T) {
	p := fixturePatch(t)

	task := NewDuplicateFeatureTask(patch.SelectRenamed(patch.MaskTimeless, "mask", "mask2"), true)
	_, err := task.Execute(p)
	require.NoError(t, err)

	dup := getArray(t, p, patch.MaskTimeless, "mask2")
	dup.SetAt(99.0, 0, 0, 0)
	got := getArray(t, p, patch.MaskTimeless, "mask").At(0, 0, 0)
	assert.Equal(t, 0.0, got)
}

func TestMoveFeatureTask(t *testing.T) {
	src := fixturePatch(t)
	dst := patch.New()
	require.NoError(t, dst.SetTimestamps(timestamps(10)))

	task := NewMoveFeatureTask(patch.SelectAllOf(patch.Data).And(patch.Select(patch.MaskTimeless, "mask")), false)
	out, err := task.Execute(src, dst)
	require.NoError(t, err)
	assert.Same(t, dst, out)

	// Shallow move aliases the source payloads.
	assert.Same(t, getArray(t, src, patch.Data, "bands"), getArray(t, dst, patch.Data, "bands"))
	assert.Same(t, getArray(t, src, patch.MaskTimeless, "mask"), getArray(t, dst, patch.MaskTimeless, "mask"))
	assert.False(t, dst.Has(patch.Scalar, "values"))
}

func TestMoveFeatureTaskDeep(t *testing.T) {
	src := fixturePatch(t)
	dst := patch.New()
	require.NoError(t, dst.SetTimestamps(timestamps(10)))

	task := NewMoveFeatureTask(patch.Select(patch.Data, "bands"), true)
	_, err := task.Execute(src, dst)
	require.NoError(t, err)

	moved := getArray(t, dst, patch.Data, "bands")
	moved.SetAt(7.0, 0, 0, 0, 0)
	got := getArray(t, src, patch.Data, "bands").At(0, 0, 0, 0)
	assert.Equal(t, 0.0, got)
}

func TestMoveFeatureTaskRequiresDestination(t *testing.T) {
	src := fixturePatch(t)

	_, err := NewMoveFeatureTask(patch.Select(patch.Data, "bands"), false).Execute(src)
	assert.ErrorIs(t, err, patch.ErrInvalidArgument)
}
