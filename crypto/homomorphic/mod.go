// Package homomorphic defines the accumulators of the tally and their
// implementations.
//
// Each candidate of an election owns an accumulator that absorbs the verified
// counts. The accumulators of all the candidates are combined when the tally
// is published, and the combination must not depend on the order of the
// candidates.
package homomorphic

import "golang.org/x/xerrors"

// ErrLengthMismatch is returned when an accumulator does not have the length
// expected by the scheme.
var ErrLengthMismatch = xerrors.New("accumulator length mismatch")

// Scheme is the interface of an accumulator scheme.
type Scheme interface {
	// Empty returns the accumulator of a candidate without any vote. It is
	// also the neutral element of Combine.
	Empty() []byte

	// Fold absorbs a batch of count proofs into the accumulator of the
	// candidate. Total is the number of proofs after the batch.
	Fold(prev []byte, candidate uint32, count, total uint64) ([]byte, error)

	// Combine merges two accumulators. It must be commutative and
	// associative.
	Combine(a, b []byte) ([]byte, error)

	// Seal finalizes the combination of every accumulator.
	Seal(acc []byte) ([]byte, error)
}
