package zkp

import (
	"encoding/binary"
	"math/big"

	"go.dedis.ch/zktally/crypto"
	"golang.org/x/xerrors"
)

// digestModulus is the modulus applied to the digest of a proof.
const digestModulus = 100

// maxDigestAttempts bounds the search of a digest proof.
const maxDigestAttempts = 1 << 20

// DigestVerifier is the deterministic placeholder of a proof system. A proof
// is accepted when the digest of the proof bytes and the candidate, read as a
// big-endian integer, is equal to the candidate modulo 100.
//
// - implements zkp.Verifier
type DigestVerifier struct {
	hashFac crypto.HashFactory
}

// NewDigestVerifier returns a verifier using SHA-256.
func NewDigestVerifier() DigestVerifier {
	return DigestVerifier{
		hashFac: crypto.NewSha256Factory(),
	}
}

// Verify implements zkp.Verifier.
func (v DigestVerifier) Verify(proof []byte, candidate uint32) bool {
	return v.residue(proof, candidate) == uint64(candidate)
}

func (v DigestVerifier) residue(proof []byte, candidate uint32) uint64 {
	h := v.hashFac.New()
	h.Write(proof)

	input := make([]byte, 4)
	binary.BigEndian.PutUint32(input, candidate)
	h.Write(input)

	digest := new(big.Int).SetBytes(h.Sum(nil))

	return digest.Mod(digest, big.NewInt(digestModulus)).Uint64()
}

// DigestProver searches proof bytes accepted by the digest verifier. The
// search is deterministic for a given seed.
//
// - implements zkp.Prover
type DigestProver struct {
	verifier DigestVerifier
	seed     []byte
}

// NewDigestProver returns a prover that derives the proofs from the seed.
func NewDigestProver(seed []byte) DigestProver {
	return DigestProver{
		verifier: NewDigestVerifier(),
		seed:     seed,
	}
}

// Prove implements zkp.Prover. Only candidates below the modulus can be
// proven.
func (p DigestProver) Prove(candidate uint32) ([]byte, error) {
	if candidate >= digestModulus {
		return nil, xerrors.Errorf("candidate %d out of range", candidate)
	}

	proof := make([]byte, len(p.seed)+8)
	copy(proof, p.seed)

	for i := uint64(0); i < maxDigestAttempts; i++ {
		binary.BigEndian.PutUint64(proof[len(p.seed):], i)

		if p.verifier.Verify(proof, candidate) {
			return proof, nil
		}
	}

	return nil, xerrors.Errorf("no proof found for candidate %d", candidate)
}
