package homomorphic

import (
	"encoding/binary"

	"go.dedis.ch/zktally/crypto"
	"golang.org/x/xerrors"
)

// HashChain is the deterministic placeholder of a homomorphic scheme. The
// accumulator of a candidate is the hash chain of its successive counts, and
// accumulators are combined with a XOR which is commutative and associative.
// The XOR of every candidate is hashed once when sealed.
//
// - implements homomorphic.Scheme
type HashChain struct {
	hashFac crypto.HashFactory
	size    int
}

// NewHashChain returns the scheme using SHA-256.
func NewHashChain() HashChain {
	fac := crypto.NewSha256Factory()

	return HashChain{
		hashFac: fac,
		size:    fac.New().Size(),
	}
}

// Empty implements homomorphic.Scheme. It returns a zero accumulator.
func (s HashChain) Empty() []byte {
	return make([]byte, s.size)
}

// Fold implements homomorphic.Scheme. The new accumulator is the hash of the
// candidate, the total and the previous accumulator.
func (s HashChain) Fold(prev []byte, candidate uint32, count, total uint64) ([]byte, error) {
	if len(prev) != s.size {
		return nil, xerrors.Errorf("got %d bytes: %w", len(prev), ErrLengthMismatch)
	}

	buffer := make([]byte, 12)
	binary.BigEndian.PutUint32(buffer, candidate)
	binary.BigEndian.PutUint64(buffer[4:], total)

	h := s.hashFac.New()
	h.Write(buffer)
	h.Write(prev)

	return h.Sum(nil), nil
}

// Combine implements homomorphic.Scheme.
func (s HashChain) Combine(a, b []byte) ([]byte, error) {
	if len(a) != s.size || len(b) != s.size {
		return nil, xerrors.Errorf("got %d and %d bytes: %w", len(a), len(b), ErrLengthMismatch)
	}

	res := make([]byte, s.size)
	for i := range res {
		res[i] = a[i] ^ b[i]
	}

	return res, nil
}

// Seal implements homomorphic.Scheme. It hashes the combined value.
func (s HashChain) Seal(acc []byte) ([]byte, error) {
	if len(acc) != s.size {
		return nil, xerrors.Errorf("got %d bytes: %w", len(acc), ErrLengthMismatch)
	}

	h := s.hashFac.New()
	h.Write(acc)

	return h.Sum(nil), nil
}
