package prefixed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/core/store/mem"
)

func TestSnapshot_Isolation(t *testing.T) {
	layer := mem.NewLayer()

	a := NewSnapshot("a", layer)
	b := NewSnapshot("b", layer)

	require.NoError(t, a.Set([]byte("key"), []byte{1}))
	require.NoError(t, b.Set([]byte("key"), []byte{2}))

	value, err := a.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	value, err = NewReadable("b", layer).Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte{2}, value)

	require.NoError(t, a.Delete([]byte("key")))

	value, err = a.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.Equal(t, 1, layer.Len())
}

func TestKey(t *testing.T) {
	k1 := Key("ab", []byte("c"))
	k2 := Key("a", []byte("bc"))

	require.Len(t, k1, 32)
	require.NotEqual(t, k1, k2)
	require.Equal(t, k1, Key("ab", []byte("c")))
}

func TestSnapshot_Nested(t *testing.T) {
	layer := mem.NewLayer()

	inner := NewSnapshot("inner", NewSnapshot("outer", layer))
	require.NoError(t, inner.Set([]byte("key"), []byte{3}))

	value, err := layer.Get(Key("outer", Key("inner", []byte("key"))))
	require.NoError(t, err)
	require.Equal(t, []byte{3}, value)
}
