package crypto

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"
)

// HashAlgorithm is the identifier of a supported hash function.
type HashAlgorithm int

const (
	// Sha256 is the SHA-256 hash function.
	Sha256 HashAlgorithm = iota
	// Sha3_224 is the SHA3-224 hash function.
	Sha3_224
)

var algorithmNames = map[HashAlgorithm]string{
	Sha256:   "sha256",
	Sha3_224: "sha3-224",
}

// ParseHashAlgorithm returns the algorithm of the name, as it is written in
// the configuration.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	for algo, n := range algorithmNames {
		if n == name {
			return algo, nil
		}
	}

	return 0, xerrors.Errorf("unknown hash algorithm '%s'", name)
}

// String implements fmt.Stringer.
func (a HashAlgorithm) String() string {
	name, found := algorithmNames[a]
	if !found {
		return "unknown"
	}

	return name
}

// digestFactory creates the hash instances of an algorithm.
//
// - implements crypto.HashFactory
type digestFactory struct {
	algo HashAlgorithm
}

// NewSha256Factory returns the factory of SHA-256, which is the hash of the
// fingerprints and of the namespaces unless configured otherwise.
func NewSha256Factory() HashFactory {
	return digestFactory{algo: Sha256}
}

// NewHashFactory returns the factory of the algorithm.
func NewHashFactory(a HashAlgorithm) HashFactory {
	return digestFactory{algo: a}
}

// New implements crypto.HashFactory. It panics for an unknown algorithm as
// ParseHashAlgorithm is the only way to get one from the outside.
func (f digestFactory) New() hash.Hash {
	switch f.algo {
	case Sha256:
		return sha256.New()
	case Sha3_224:
		return sha3.New224()
	default:
		panic("unknown hash type")
	}
}
