package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/config"
	"go.dedis.ch/zktally/core/store/mem"
	"go.dedis.ch/zktally/internal/testing/fake"
)

func TestNode_Advance(t *testing.T) {
	db := mem.NewStore()

	n, err := newNode(config.Default(), db)
	require.NoError(t, err)
	require.Equal(t, uint64(0), n.clock.GetHeight())

	height, err := n.advance(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), height)

	height, err = n.advance(4)
	require.NoError(t, err)
	require.Equal(t, uint64(7), height)

	n, err = newNode(config.Default(), db)
	require.NoError(t, err)
	require.Equal(t, uint64(7), n.clock.GetHeight())
}

func TestNode_BadStore(t *testing.T) {
	_, err := newNode(config.Default(), fake.NewBadDB())
	require.EqualError(t, err, fake.Err("failed to read height"))

	n, err := newNode(config.Default(), mem.NewStore())
	require.NoError(t, err)

	n.db = fake.NewBadDB()

	_, err = n.advance(1)
	require.EqualError(t, err, fake.Err("failed to store height"))
	require.Equal(t, uint64(0), n.clock.GetHeight())
}

func TestNode_BadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Verifier = "unknown"

	_, err := newNode(cfg, mem.NewStore())
	require.EqualError(t, err, "failed to create verifier: unknown verifier 'unknown'")

	cfg = config.Default()
	cfg.Scheme.Name = config.SchemeElGamal
	cfg.Scheme.PublicKey = "zz"

	_, err = newNode(cfg, mem.NewStore())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create scheme: failed to decode public key")
}
