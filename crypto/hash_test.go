package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSha256Factory_New(t *testing.T) {
	factory := NewSha256Factory()
	require.NotNil(t, factory.New())
	require.Equal(t, 32, factory.New().Size())
}

func TestHashFactory_New(t *testing.T) {
	factory := NewHashFactory(Sha3_224)
	require.Equal(t, 28, factory.New().Size())

	defer func() {
		require.Equal(t, "unknown hash type", recover())
	}()

	NewHashFactory(HashAlgorithm(42)).New()
}

func TestParseHashAlgorithm(t *testing.T) {
	for _, algo := range []HashAlgorithm{Sha256, Sha3_224} {
		parsed, err := ParseHashAlgorithm(algo.String())
		require.NoError(t, err)
		require.Equal(t, algo, parsed)
	}

	_, err := ParseHashAlgorithm("md5")
	require.EqualError(t, err, "unknown hash algorithm 'md5'")

	require.Equal(t, "unknown", HashAlgorithm(42).String())
}

func TestDigest(t *testing.T) {
	f := NewSha256Factory()

	a := Digest(f, []byte("ab"), []byte("c"))
	b := Digest(f, []byte("a"), []byte("bc"))

	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
	require.Equal(t, a, Digest(f, []byte("ab"), []byte("c")))
}
