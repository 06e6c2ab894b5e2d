package homomorphic

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"golang.org/x/xerrors"
)

var suite = edwards25519.NewBlakeSHA256Ed25519()

// ElGamal is an additively homomorphic scheme based on the exponential
// ElGamal encryption over Ed25519. The accumulator of a candidate is the
// encryption of its count and accumulators are combined by adding the
// ciphertexts, so the published value is the encryption of the total.
//
// The accumulator bytes are K || C.
//
// - implements homomorphic.Scheme
type ElGamal struct {
	pubkey kyber.Point
}

// NewElGamal returns the scheme encrypting for the public key.
func NewElGamal(pubkey kyber.Point) ElGamal {
	return ElGamal{
		pubkey: pubkey,
	}
}

// NewElGamalFromBytes returns the scheme for the marshaled public key.
func NewElGamalFromBytes(data []byte) (ElGamal, error) {
	pubkey := suite.Point()

	err := pubkey.UnmarshalBinary(data)
	if err != nil {
		return ElGamal{}, xerrors.Errorf("failed to unmarshal public key: %v", err)
	}

	return NewElGamal(pubkey), nil
}

// GenerateKey returns a new random key pair for the scheme.
func GenerateKey() (kyber.Scalar, kyber.Point) {
	secret := suite.Scalar().Pick(suite.RandomStream())
	pubkey := suite.Point().Mul(secret, nil)

	return secret, pubkey
}

// Empty implements homomorphic.Scheme. It returns the neutral ciphertext.
func (s ElGamal) Empty() []byte {
	data, err := s.marshal(suite.Point().Null(), suite.Point().Null())
	if err != nil {
		panic("null point cannot be marshaled: " + err.Error())
	}

	return data
}

// Fold implements homomorphic.Scheme. It adds a fresh encryption of the count
// to the previous accumulator.
func (s ElGamal) Fold(prev []byte, candidate uint32, count, total uint64) ([]byte, error) {
	K, C, err := s.unmarshal(prev)
	if err != nil {
		return nil, err
	}

	k := suite.Scalar().Pick(suite.RandomStream())
	m := suite.Point().Mul(suite.Scalar().SetInt64(int64(count)), nil)

	K.Add(K, suite.Point().Mul(k, nil))
	C.Add(C, suite.Point().Add(suite.Point().Mul(k, s.pubkey), m))

	return s.marshal(K, C)
}

// Combine implements homomorphic.Scheme. It adds the ciphertexts.
func (s ElGamal) Combine(a, b []byte) ([]byte, error) {
	K1, C1, err := s.unmarshal(a)
	if err != nil {
		return nil, err
	}

	K2, C2, err := s.unmarshal(b)
	if err != nil {
		return nil, err
	}

	return s.marshal(K1.Add(K1, K2), C1.Add(C1, C2))
}

// Seal implements homomorphic.Scheme. The combined ciphertext is already the
// final value.
func (s ElGamal) Seal(acc []byte) ([]byte, error) {
	_, _, err := s.unmarshal(acc)
	if err != nil {
		return nil, err
	}

	return append([]byte{}, acc...), nil
}

// Decrypt returns the count encrypted in the accumulator. The discrete
// logarithm is searched up to max.
func Decrypt(secret kyber.Scalar, acc []byte, max uint64) (uint64, error) {
	K, C, err := ElGamal{}.unmarshal(acc)
	if err != nil {
		return 0, err
	}

	M := suite.Point().Sub(C, suite.Point().Mul(secret, K))

	guess := suite.Point().Null()
	base := suite.Point().Base()

	for m := uint64(0); m <= max; m++ {
		if guess.Equal(M) {
			return m, nil
		}

		guess.Add(guess, base)
	}

	return 0, xerrors.Errorf("count is above %d", max)
}

func (s ElGamal) marshal(K, C kyber.Point) ([]byte, error) {
	kbuf, err := K.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal K: %v", err)
	}

	cbuf, err := C.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal C: %v", err)
	}

	return append(kbuf, cbuf...), nil
}

func (s ElGamal) unmarshal(data []byte) (kyber.Point, kyber.Point, error) {
	size := suite.PointLen()

	if len(data) != 2*size {
		return nil, nil, xerrors.Errorf("got %d bytes: %w", len(data), ErrLengthMismatch)
	}

	K := suite.Point()
	err := K.UnmarshalBinary(data[:size])
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to unmarshal K: %v", err)
	}

	C := suite.Point()
	err = C.UnmarshalBinary(data[size:])
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to unmarshal C: %v", err)
	}

	return K, C, nil
}
