// Package latch implements an access service where a credential can be granted
// to a single identity, once. A credential is either unconfigured or
// configured with an identity, and nothing moves it back.
package latch

import (
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

var (
	// ErrUnset is returned when a credential has not been granted yet.
	ErrUnset = xerrors.New("credential not configured")

	// ErrUnauthorized is returned when the identity does not match the
	// configured one.
	ErrUnauthorized = xerrors.New("unauthorized identity")

	// ErrAlreadyConfigured is returned when a credential is granted a second
	// time.
	ErrAlreadyConfigured = xerrors.New("already configured")
)

// Service is the one-shot access service.
//
// - implements access.Service
type Service struct{}

// NewService returns a new one-shot access service.
func NewService() Service {
	return Service{}
}

// Get returns the identity configured for the credential, if any.
func (Service) Get(r store.Readable, creds access.Credential) (access.Identity, bool, error) {
	value, err := r.Get(key(creds))
	if err != nil {
		return "", false, xerrors.Errorf("failed to read credential: %v", err)
	}

	if len(value) == 0 {
		return "", false, nil
	}

	return access.Identity(value), true, nil
}

// Match implements access.Service. It returns nil if one of the identities is
// the configured one.
func (s Service) Match(r store.Readable, creds access.Credential, idents ...access.Identity) error {
	id, found, err := s.Get(r, creds)
	if err != nil {
		return err
	}

	if !found {
		return xerrors.Errorf("%s: %w", creds.GetRule(), ErrUnset)
	}

	for _, ident := range idents {
		if ident == id {
			return nil
		}
	}

	return xerrors.Errorf("%v: %w", idents, ErrUnauthorized)
}

// Grant implements access.Service. It configures the credential with exactly
// one identity and fails if it is already configured.
func (s Service) Grant(snap store.Snapshot, creds access.Credential, idents ...access.Identity) error {
	if len(idents) != 1 || idents[0] == "" {
		return xerrors.Errorf("expected exactly one identity, got %v", idents)
	}

	_, found, err := s.Get(snap, creds)
	if err != nil {
		return err
	}

	if found {
		return xerrors.Errorf("%s: %w", creds.GetRule(), ErrAlreadyConfigured)
	}

	err = snap.Set(key(creds), []byte(idents[0]))
	if err != nil {
		return xerrors.Errorf("failed to store credential: %v", err)
	}

	return nil
}

func key(creds access.Credential) []byte {
	return []byte(access.Compile("latch", string(creds.GetID()), creds.GetRule()))
}
