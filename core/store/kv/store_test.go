package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

func TestStore_ViewMissingBucket(t *testing.T) {
	s := NewStore(newDB(t), []byte("state"))

	err := s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_Update(t *testing.T) {
	s := NewStore(newDB(t), []byte("state"))

	err := s.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("B"), []byte{2}))
		require.NoError(t, snap.Delete([]byte("A")))

		return xerrors.New("oops")
	})
	require.EqualError(t, err, "oops")

	err = s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		value, err = r.Get([]byte("B"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_BadBucket(t *testing.T) {
	s := NewStore(newDB(t), nil)

	err := s.Update(func(store.Snapshot) error { return nil })
	require.EqualError(t, err,
		"failed to open bucket: failed to create bucket: bucket name required")
}

func TestSnapshot_ReadOnly(t *testing.T) {
	snap := snapshot{}

	value, err := snap.Get([]byte("A"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.EqualError(t, snap.Set([]byte("A"), nil), "read-only snapshot")
	require.EqualError(t, snap.Delete([]byte("A")), "read-only snapshot")
}
