package tasks

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// memStore is a minimal in-memory Store for exercising the save and load
// tasks without a backend.
type memStore struct {
	patches map[string]*patch.Patch
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{patches: map[string]*patch.Patch{}}
}

func (s *memStore) Attach(config patch.Config) error { return nil }
func (s *memStore) Detach() error                    { return nil }

func (s *memStore) Save(id string, p *patch.Patch, sel patch.Selector) (string, error) {
	refs := sel.ResolvePresent(p)
	if len(refs) == 0 {
		return id, nil
	}
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("patch-%04d", s.nextID)
	}
	stored := patch.New()
	for _, ref := range refs {
		if err := copySlot(stored, p, ref, true); err != nil {
			return "", err
		}
	}
	s.patches[id] = stored
	return id, nil
}

func (s *memStore) Load(id string, sel patch.Selector) (*patch.Patch, error) {
	stored, ok := s.patches[id]
	if !ok {
		return patch.New(), nil
	}
	out := patch.New()
	for _, ref := range sel.ResolvePresent(stored) {
		if err := copySlot(out, stored, ref, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *memStore) List() ([]string, error) {
	ids := make([]string, 0, len(s.patches))
	for id := range s.patches {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStore) Delete(id string) error {
	if _, ok := s.patches[id]; !ok {
		return patch.ErrPatchNotFound
	}
	delete(s.patches, id)
	return nil
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := newMemStore()
	src := fixturePatch(t)

	save := NewSaveTask(store, "", patch.Selector{})
	out, err := save.Execute(src)
	require.NoError(t, err)
	assert.Same(t, src, out)
	require.NotEmpty(t, save.ID())

	loaded, err := NewLoadTask(store, save.ID(), patch.Selector{}).Execute(nil)
	require.NoError(t, err)
	assert.True(t, src.Equal(loaded))
}

func TestSaveTaskReusesID(t *testing.T) {
	store := newMemStore()
	src := fixturePatch(t)

	save := NewSaveTask(store, "", patch.Selector{})
	_, err := save.Execute(src)
	require.NoError(t, err)
	first := save.ID()

	_, err = save.Execute(src)
	require.NoError(t, err)
	assert.Equal(t, first, save.ID())

	ids, err := store.List()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSaveTaskEmptyResolutionIsNoop(t *testing.T) {
	store := newMemStore()
	src := fixturePatch(t)

	save := NewSaveTask(store, "", patch.Select(patch.Data, "no_such"))
	_, err := save.Execute(src)
	require.NoError(t, err)
	assert.Empty(t, save.ID())

	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoadTaskPartial(t *testing.T) {
	store := newMemStore()
	src := fixturePatch(t)

	save := NewSaveTask(store, "", patch.Selector{})
	_, err := save.Execute(src)
	require.NoError(t, err)

	task := NewLoadTask(store, save.ID(), patch.Select(patch.MaskTimeless, "mask"))
	loaded, err := task.Execute(nil)
	require.NoError(t, err)
	assert.True(t, loaded.Has(patch.MaskTimeless, "mask"))
	assert.False(t, loaded.Has(patch.Data, "bands"))
	assert.Nil(t, loaded.BBox())
}

func TestLoadTaskUnknownID(t *testing.T) {
	store := newMemStore()

	loaded, err := NewLoadTask(store, "missing", patch.Selector{}).Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len(patch.Data))
	assert.Nil(t, loaded.BBox())
}

func TestLoadTaskIntoExistingPatch(t *testing.T) {
	store := newMemStore()
	src := fixturePatch(t)

	save := NewSaveTask(store, "", patch.Selector{})
	_, err := save.Execute(src)
	require.NoError(t, err)

	dst := patch.New()
	require.NoError(t, dst.SetTimestamps(timestamps(10)))
	require.NoError(t, dst.Set(patch.DataTimeless, "dem", ramp(t, 3, 3, 1)))

	out, err := NewLoadTask(store, save.ID(), patch.Select(patch.Data, "bands")).Execute(dst)
	require.NoError(t, err)
	assert.Same(t, dst, out)
	assert.True(t, dst.Has(patch.Data, "bands"))
	assert.True(t, dst.Has(patch.DataTimeless, "dem"))
}
