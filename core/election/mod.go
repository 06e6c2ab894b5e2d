// Package election defines the identifiers shared by the contracts and the
// ports to the election services that live outside of the core.
package election

import (
	"strconv"

	"go.dedis.ch/zktally/core/access"
)

// ID is the identifier of an election.
type ID uint64

// String implements fmt.Stringer.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Candidate is the identifier of a candidate inside an election.
type Candidate uint32

// Source gives access to the lifecycle of the elections.
type Source interface {
	// IsActive returns true if the election accepts votes at the current
	// height.
	IsActive(id ID) bool

	// Exists returns true if the election is known.
	Exists(id ID) bool
}

// Eligibility tells if a voter can take part in an election.
type Eligibility interface {
	IsEligible(voter access.Identity, id ID) bool
}
