package static

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/clock"
)

func TestRegistry_IsActive(t *testing.T) {
	c := clock.NewManual(0)

	r := NewRegistry(c,
		Election{ID: 1, Start: 2, End: 4},
		Election{ID: 2},
	)

	require.True(t, r.Exists(1))
	require.False(t, r.Exists(3))

	require.False(t, r.IsActive(1))
	require.True(t, r.IsActive(2))
	require.False(t, r.IsActive(3))

	c.Advance(2)
	require.True(t, r.IsActive(1))

	c.Advance(2)
	require.True(t, r.IsActive(1))

	c.Advance(1)
	require.False(t, r.IsActive(1))
	require.True(t, r.IsActive(2))
}

func TestRegistry_IsEligible(t *testing.T) {
	r := NewRegistry(clock.NewManual(0),
		Election{ID: 1, Voters: []access.Identity{"alice"}},
		Election{ID: 2},
	)

	require.True(t, r.IsEligible("alice", 1))
	require.False(t, r.IsEligible("bob", 1))
	require.True(t, r.IsEligible("bob", 2))
	require.False(t, r.IsEligible("alice", 3))
}
