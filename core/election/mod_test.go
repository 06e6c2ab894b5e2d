package election

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID_String(t *testing.T) {
	require.Equal(t, "42", ID(42).String())
}
