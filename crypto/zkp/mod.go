// Package zkp defines the verifier of the vote proofs and its
// implementations.
//
// A vote proof convinces the verifier that a ballot is well formed for the
// claimed candidate without revealing anything else. The engines only rely on
// the Verifier interface so that the proof system can be replaced without
// touching them.
package zkp

// Verifier is the primitive that checks a proof against its public input,
// which is the claimed candidate.
type Verifier interface {
	Verify(proof []byte, candidate uint32) bool
}

// Prover is the counterpart of a verifier that produces proofs. It is used by
// the tests and the command line to build valid inputs.
type Prover interface {
	Prove(candidate uint32) ([]byte, error)
}
