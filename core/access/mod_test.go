package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Compile(t *testing.T) {
	str := Compile("a", "b", "c")
	require.Equal(t, str, "a:b:c")
}

func TestIdentity_MarshalText(t *testing.T) {
	id := Identity("alice")

	data, err := id.MarshalText()
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), data)
	require.Equal(t, "alice", id.String())
}
