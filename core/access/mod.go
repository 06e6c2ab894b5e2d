// Package access defines the interfaces for the Access Rights Control of the
// contracts.
package access

import (
	"strings"

	"go.dedis.ch/zktally/core/store"
)

// Identity uniquely identifies a caller of the contracts, being a voter, an
// authority or an auditor.
type Identity string

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return string(id)
}

// Credential is the interface of the scope of an access.
type Credential interface {
	// GetID returns the identifier of the credential.
	GetID() []byte

	// GetRule returns the rule of the credential.
	GetRule() string
}

// Service is the interface of an access control service that stores its
// grants in the store of the contracts.
type Service interface {
	// Match returns nil if one of the identities is allowed by the credential,
	// otherwise it returns an error.
	Match(store store.Readable, creds Credential, idents ...Identity) error

	// Grant allows the identities for the credential.
	Grant(store store.Snapshot, creds Credential, idents ...Identity) error
}

// Compile returns a compacted rule from the string segments.
func Compile(segments ...string) string {
	return strings.Join(segments, ":")
}
