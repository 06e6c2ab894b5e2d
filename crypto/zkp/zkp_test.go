package zkp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestVerifier_Verify(t *testing.T) {
	prover := NewDigestProver([]byte("seed"))
	verifier := NewDigestVerifier()

	for c := uint32(1); c <= 10; c++ {
		proof, err := prover.Prove(c)
		require.NoError(t, err)

		require.True(t, verifier.Verify(proof, c))
		require.Equal(t, uint64(c), verifier.residue(proof, c))
	}

	proof, err := prover.Prove(3)
	require.NoError(t, err)

	// The digest covers the candidate.
	require.Equal(t, verifier.residue(proof, 4) == 4, verifier.Verify(proof, 4))
}

func TestDigestProver_Deterministic(t *testing.T) {
	a, err := NewDigestProver([]byte("seed")).Prove(7)
	require.NoError(t, err)

	b, err := NewDigestProver([]byte("seed")).Prove(7)
	require.NoError(t, err)

	require.Equal(t, a, b)

	_, err = NewDigestProver(nil).Prove(100)
	require.EqualError(t, err, "candidate 100 out of range")
}

func TestDLEQ_Verify(t *testing.T) {
	prover := NewDLEQProver()
	verifier := NewDLEQ()

	proof, err := prover.Prove(2)
	require.NoError(t, err)
	require.Len(t, proof, verifier.size())

	require.True(t, verifier.Verify(proof, 2))
	require.False(t, verifier.Verify(proof, 3))
	require.False(t, verifier.Verify(proof[:10], 2))

	tampered := append([]byte{}, proof...)
	tampered[len(tampered)-1] ^= 0x01
	require.False(t, verifier.Verify(tampered, 2))

	garbage := make([]byte, verifier.size())
	for i := range garbage {
		garbage[i] = 0xff
	}
	require.False(t, verifier.Verify(garbage, 2))
}

func TestDLEQ_Generator(t *testing.T) {
	d := NewDLEQ()

	require.True(t, d.Generator(1).Equal(d.Generator(1)))
	require.False(t, d.Generator(1).Equal(d.Generator(2)))
}
