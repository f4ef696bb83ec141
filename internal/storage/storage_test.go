package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubedeck/internal/domain"
)

func TestBoltKVRoundTrip(t *testing.T) {
	kv, err := OpenBolt(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put("feed:UC1", []byte("a")))
	require.NoError(t, kv.Put("feed:UC2", []byte("b")))
	require.NoError(t, kv.Put("state", []byte("c")))

	data, ok, err := kv.Get("feed:UC1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), data)

	keys, err := kv.Keys("feed:")
	require.NoError(t, err)
	assert.Equal(t, []string{"feed:UC1", "feed:UC2"}, keys)

	require.NoError(t, kv.Delete("feed:UC1"))
	_, ok, err = kv.Get("feed:UC1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltKVReopenKeepsData(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenBolt(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Put("state", []byte("persisted")))
	require.NoError(t, kv.Close())

	kv, err = OpenBolt(dir)
	require.NoError(t, err)
	defer kv.Close()

	data, ok, err := kv.Get("state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("persisted"), data)
}

func TestStateStoreEmptyOnFirstLoad(t *testing.T) {
	states := NewStateStore(NewMemoryKV())

	st, err := states.Load()
	require.NoError(t, err)
	assert.NotNil(t, st.Categories)
	assert.NotNil(t, st.Channels)
	assert.NotNil(t, st.VideoCache)
	assert.Empty(t, st.Categories)
}

func TestStateStoreUpdatePersists(t *testing.T) {
	states := NewStateStore(NewMemoryKV())

	err := states.Update(func(st *domain.State) error {
		st.Categories["c1"] = &domain.Category{ID: "c1", Name: "Tech", ChannelIDs: []string{}}
		return nil
	})
	require.NoError(t, err)

	st, err := states.Load()
	require.NoError(t, err)
	require.Contains(t, st.Categories, "c1")
	assert.Equal(t, "Tech", st.Categories["c1"].Name)
}

func TestStateStoreUpdateAbortsOnError(t *testing.T) {
	states := NewStateStore(NewMemoryKV())

	boom := errors.New("boom")
	err := states.Update(func(st *domain.State) error {
		st.Categories["c1"] = &domain.Category{ID: "c1", Name: "Tech"}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Categories, "failed update must write nothing")
}

func TestStateStoreLoadCorruptState(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(StateKey, []byte("{not json")))

	states := NewStateStore(kv)
	_, err := states.Load()
	assert.Error(t, err)
}

func TestStateStoreReplace(t *testing.T) {
	states := NewStateStore(NewMemoryKV())

	require.NoError(t, states.Update(func(st *domain.State) error {
		st.Categories["old"] = &domain.Category{ID: "old", Name: "Old"}
		return nil
	}))

	next := domain.EmptyState()
	next.Categories["new"] = &domain.Category{ID: "new", Name: "New", ChannelIDs: []string{}}
	require.NoError(t, states.Replace(next))

	st, err := states.Load()
	require.NoError(t, err)
	assert.NotContains(t, st.Categories, "old")
	assert.Contains(t, st.Categories, "new")
}
