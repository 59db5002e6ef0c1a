package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectorPatch(t *testing.T) *Patch {
	t.Helper()
	p := New()
	require.NoError(t, p.Set(Data, "D1", sequence(2, 2, 2, 1)))
	require.NoError(t, p.Set(Data, "D2", sequence(2, 2, 2, 1)))
	require.NoError(t, p.Set(MaskTimeless, "M1", sequence(2, 2, 1)))
	return p
}

func TestResolveSingleKey(t *testing.T) {
	p := selectorPatch(t)

	refs, err := Select(Data, "D1").Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []FeatureRef{{Type: Data, Name: "D1"}}, refs)

	_, err = Select(Data, "absent").Resolve(p)
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestResolveRename(t *testing.T) {
	p := selectorPatch(t)

	refs, err := SelectRenamed(Data, "D1", "RENAMED").Resolve(p)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "RENAMED", refs[0].TargetName())
	assert.Equal(t, "D1", refs[0].Name)
}

func TestResolveWildcard(t *testing.T) {
	p := selectorPatch(t)

	refs, err := SelectAllOf(Data).Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []FeatureRef{
		{Type: Data, Name: "D1"},
		{Type: Data, Name: "D2"},
	}, refs, "wildcard expands in insertion order at call time")

	// A wildcard over an empty type resolves to nothing, not an error.
	refs, err = SelectAllOf(Label).Resolve(p)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestResolveGroupsPreserveOrder(t *testing.T) {
	p := selectorPatch(t)

	sel := SelectNames(MaskTimeless, "M1").And(SelectNames(Data, "D2", "D1"))
	refs, err := sel.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []FeatureRef{
		{Type: MaskTimeless, Name: "M1"},
		{Type: Data, Name: "D2"},
		{Type: Data, Name: "D1"},
	}, refs)
}

func TestResolveAllIncludesSingletons(t *testing.T) {
	p := selectorPatch(t)
	p.SetBBox(NewBoundingBox(0, 0, 1, 1, 4326))
	require.NoError(t, p.SetTimestamps(testTimestamps(2)))

	refs, err := SelectAll().Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []FeatureRef{
		{Type: Data, Name: "D1"},
		{Type: Data, Name: "D2"},
		{Type: MaskTimeless, Name: "M1"},
		{Type: BBox},
		{Type: Timestamps},
	}, refs)

	// Empty singletons are not selected by ALL.
	empty := New()
	refs, err = SelectAll().Resolve(empty)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestResolveDestinationKeyedLastWins(t *testing.T) {
	p := selectorPatch(t)

	// Same source duplicated to distinct destinations: all survive.
	sel := SelectRefs(
		RenamedRef(Data, "D1", "A"),
		RenamedRef(Data, "D1", "B"),
		RenamedRef(Data, "D1", "C"),
	)
	refs, err := sel.Resolve(p)
	require.NoError(t, err)
	assert.Len(t, refs, 3)

	// Repeated destination: first position, last source.
	sel = SelectRefs(
		RenamedRef(Data, "D1", "OUT"),
		Ref(MaskTimeless, "M1"),
		RenamedRef(Data, "D2", "OUT"),
	)
	refs, err = sel.Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []FeatureRef{
		{Type: Data, Name: "D2", NewName: "OUT"},
		{Type: MaskTimeless, Name: "M1"},
	}, refs)
}

func TestResolvePresentDropsAbsent(t *testing.T) {
	p := selectorPatch(t)

	sel := SelectNames(Data, "D1", "GONE").And(SelectNames(Mask, "ALSO-GONE"))
	refs := sel.ResolvePresent(p)
	assert.Equal(t, []FeatureRef{{Type: Data, Name: "D1"}}, refs)
}

func TestSelectorZeroValue(t *testing.T) {
	assert.True(t, Selector{}.IsEmpty())
	assert.False(t, SelectAll().IsEmpty())
	assert.True(t, SelectAll().IsAll())

	refs, err := Selector{}.Resolve(selectorPatch(t))
	require.NoError(t, err)
	assert.Empty(t, refs)
}
