package kv

import (
	"fmt"
	"os"
	"path/filepath"

	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

func ExampleStore_Update() {
	dir, err := os.MkdirTemp(os.TempDir(), "example")
	if err != nil {
		panic("failed to create folder: " + err.Error())
	}

	defer os.RemoveAll(dir)

	db, err := New(filepath.Join(dir, "example.db"))
	if err != nil {
		panic("failed to open db: " + err.Error())
	}

	s := NewStore(db, []byte("zktally"))
	defer s.Close()

	err = s.Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("voted:alice"), []byte{1})
	})
	if err != nil {
		panic("update failed: " + err.Error())
	}

	// The second vote is discarded with the update that fails.
	err = s.Update(func(snap store.Snapshot) error {
		err := snap.Set([]byte("voted:bob"), []byte{1})
		if err != nil {
			return err
		}

		return xerrors.New("ballot rejected")
	})
	fmt.Println(err)

	err = s.View(func(r store.Readable) error {
		for _, voter := range []string{"alice", "bob"} {
			value, err := r.Get([]byte("voted:" + voter))
			if err != nil {
				return err
			}

			fmt.Printf("%s: %t\n", voter, value != nil)
		}

		return nil
	})
	if err != nil {
		panic("view failed: " + err.Error())
	}

	// Output: ballot rejected
	// alice: true
	// bob: false
}
