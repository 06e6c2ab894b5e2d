package latch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/internal/testing/fake"
	"golang.org/x/xerrors"
)

func TestService_Grant(t *testing.T) {
	srvc := NewService()
	snap := fake.NewSnapshot()
	creds := access.NewRoleCreds("contract", "admin")

	err := srvc.Grant(snap, creds)
	require.EqualError(t, err, "expected exactly one identity, got []")

	err = srvc.Grant(snap, creds, "")
	require.EqualError(t, err, "expected exactly one identity, got []")

	err = srvc.Grant(snap, creds, "alice")
	require.NoError(t, err)

	err = srvc.Grant(snap, creds, "bob")
	require.True(t, xerrors.Is(err, ErrAlreadyConfigured))

	id, found, err := srvc.Get(snap, creds)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, access.Identity("alice"), id)

	err = srvc.Grant(fake.NewBadSnapshot(), creds, "alice")
	require.EqualError(t, err, fake.Err("failed to read credential"))

	bad := fake.NewSnapshot()
	bad.ErrWrite = fake.GetError()
	err = srvc.Grant(bad, creds, "alice")
	require.EqualError(t, err, fake.Err("failed to store credential"))
}

func TestService_Match(t *testing.T) {
	srvc := NewService()
	snap := fake.NewSnapshot()
	creds := access.NewRoleCreds("contract", "admin")

	err := srvc.Match(snap, creds, "alice")
	require.True(t, xerrors.Is(err, ErrUnset))

	require.NoError(t, srvc.Grant(snap, creds, "alice"))

	require.NoError(t, srvc.Match(snap, creds, "bob", "alice"))

	err = srvc.Match(snap, creds, "bob")
	require.True(t, xerrors.Is(err, ErrUnauthorized))

	// Another credential is not configured by the grant.
	other := access.NewRoleCreds("contract", "other")
	err = srvc.Match(snap, other, "alice")
	require.True(t, xerrors.Is(err, ErrUnset))

	err = srvc.Match(fake.NewBadSnapshot(), creds, "alice")
	require.EqualError(t, err, fake.Err("failed to read credential"))
}
