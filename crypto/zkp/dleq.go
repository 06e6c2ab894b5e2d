package zkp

import (
	"encoding/binary"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/proof/dleq"
	"golang.org/x/xerrors"
)

const candidateDomain = "zktally/candidate"

// DLEQ is a proof system where the prover shows the knowledge of a secret x
// such that X = xG and Y = xH, H being a generator bound to the candidate. A
// proof produced for a candidate does not verify for any other one.
//
// The proof bytes are the concatenation X || Y || VG || VH || C || R.
//
// - implements zkp.Verifier
type DLEQ struct {
	suite dleq.Suite
}

// NewDLEQ returns the proof system over the Ed25519 curve.
func NewDLEQ() DLEQ {
	return DLEQ{
		suite: edwards25519.NewBlakeSHA256Ed25519(),
	}
}

// Generator returns the generator bound to the candidate.
func (d DLEQ) Generator(candidate uint32) kyber.Point {
	seed := make([]byte, len(candidateDomain)+4)
	copy(seed, candidateDomain)
	binary.BigEndian.PutUint32(seed[len(candidateDomain):], candidate)

	return d.suite.Point().Pick(d.suite.XOF(seed))
}

// Prove returns the proof for the secret and the candidate.
func (d DLEQ) Prove(secret kyber.Scalar, candidate uint32) ([]byte, error) {
	G := d.suite.Point().Base()
	H := d.Generator(candidate)

	proof, xG, xH, err := dleq.NewDLEQProof(d.suite, G, H, secret)
	if err != nil {
		return nil, xerrors.Errorf("failed to create proof: %v", err)
	}

	buffer := make([]byte, 0, d.size())

	for _, m := range []kyber.Marshaling{xG, xH, proof.VG, proof.VH, proof.C, proof.R} {
		data, err := m.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("failed to marshal proof: %v", err)
		}

		buffer = append(buffer, data...)
	}

	return buffer, nil
}

// Verify implements zkp.Verifier.
func (d DLEQ) Verify(proof []byte, candidate uint32) bool {
	if len(proof) != d.size() {
		return false
	}

	points := make([]kyber.Point, 4)
	offset := 0

	for i := range points {
		points[i] = d.suite.Point()

		end := offset + d.suite.PointLen()
		if points[i].UnmarshalBinary(proof[offset:end]) != nil {
			return false
		}

		offset = end
	}

	scalars := make([]kyber.Scalar, 2)

	for i := range scalars {
		scalars[i] = d.suite.Scalar()

		end := offset + d.suite.ScalarLen()
		if scalars[i].UnmarshalBinary(proof[offset:end]) != nil {
			return false
		}

		offset = end
	}

	p := dleq.Proof{
		VG: points[2],
		VH: points[3],
		C:  scalars[0],
		R:  scalars[1],
	}

	G := d.suite.Point().Base()
	H := d.Generator(candidate)

	return p.Verify(d.suite, G, H, points[0], points[1]) == nil
}

func (d DLEQ) size() int {
	return 4*d.suite.PointLen() + 2*d.suite.ScalarLen()
}

// DLEQProver produces DLEQ proofs for a fixed secret.
//
// - implements zkp.Prover
type DLEQProver struct {
	system DLEQ
	secret kyber.Scalar
}

// NewDLEQProver returns a prover with a random secret.
func NewDLEQProver() DLEQProver {
	system := NewDLEQ()

	return DLEQProver{
		system: system,
		secret: system.suite.Scalar().Pick(system.suite.RandomStream()),
	}
}

// Prove implements zkp.Prover.
func (p DLEQProver) Prove(candidate uint32) ([]byte, error) {
	return p.system.Prove(p.secret, candidate)
}
