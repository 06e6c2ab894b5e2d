// Package crypto defines the hash primitives shared by the contracts and the
// cryptographic schemes.
package crypto

import (
	"encoding/binary"
	"hash"
)

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}

// Digest computes the hash of the segments. Each segment is prefixed by its
// length so that two different lists of segments never share an input.
func Digest(f HashFactory, segments ...[]byte) []byte {
	h := f.New()

	length := make([]byte, 4)

	for _, seg := range segments {
		binary.BigEndian.PutUint32(length, uint32(len(seg)))

		h.Write(length)
		h.Write(seg)
	}

	return h.Sum(nil)
}
