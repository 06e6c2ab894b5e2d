package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

func TestLayer_Get(t *testing.T) {
	layer := NewLayer()

	layer.store["A"] = item{value: []byte{1}}
	layer.parent = NewLayer()
	layer.parent.store["B"] = item{value: []byte{2}}
	layer.parent.store["D"] = item{value: []byte{3}}

	value, err := layer.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	value, err = layer.Get([]byte("B"))
	require.NoError(t, err)
	require.Equal(t, []byte{2}, value)

	value, err = layer.Get([]byte("C"))
	require.NoError(t, err)
	require.Nil(t, value)

	layer.store["D"] = item{deleted: true}
	value, err = layer.Get([]byte("D"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestLayer_Set(t *testing.T) {
	layer := NewLayer()

	value := []byte{1}
	require.NoError(t, layer.Set([]byte("A"), value))
	require.Equal(t, item{value: []byte{1}}, layer.store["A"])

	// The layer keeps its own copy.
	value[0] = 2
	require.Equal(t, item{value: []byte{1}}, layer.store["A"])
}

func TestLayer_Delete(t *testing.T) {
	layer := NewLayer()
	layer.store["A"] = item{value: []byte{1}}

	require.NoError(t, layer.Delete([]byte("A")))
	require.Equal(t, item{deleted: true}, layer.store["A"])

	require.NoError(t, layer.Delete([]byte("B")))
	require.Equal(t, item{deleted: true}, layer.store["B"])
}

func TestLayer_Len(t *testing.T) {
	layer := NewLayer()
	layer.store["A"] = item{value: []byte{1}}
	layer.store["B"] = item{value: []byte{1}}

	child := layer.makeChild()
	child.store["A"] = item{deleted: true}
	child.store["C"] = item{value: []byte{1}}

	require.Equal(t, 2, layer.Len())
	require.Equal(t, 2, child.Len())
}

func TestStore_Update(t *testing.T) {
	db := NewStore()

	err := db.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("ping"), []byte("pong"))
	})
	require.NoError(t, err)

	err = db.View(func(r store.Readable) error {
		value, err := r.Get([]byte("ping"))
		require.NoError(t, err)
		require.Equal(t, []byte("pong"), value)

		return nil
	})
	require.NoError(t, err)

	err = db.Update(func(snap store.Snapshot) error {
		return snap.Delete([]byte("ping"))
	})
	require.NoError(t, err)
	require.Equal(t, 0, db.root.Len())
	require.Len(t, db.root.store, 0)
}

func TestStore_UpdateRollback(t *testing.T) {
	db := NewStore()

	require.NoError(t, db.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	}))

	err := db.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("B"), []byte{2}))
		require.NoError(t, snap.Delete([]byte("A")))

		// Writes are visible inside the update.
		value, err := snap.Get([]byte("B"))
		require.NoError(t, err)
		require.Equal(t, []byte{2}, value)

		return xerrors.New("oops")
	})
	require.EqualError(t, err, "oops")

	require.NoError(t, db.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		value, err = r.Get([]byte("B"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	}))

	require.NoError(t, db.Close())
}
