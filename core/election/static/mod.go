// Package static implements the election ports from a fixed description of the
// elections, typically loaded from the configuration file.
package static

import (
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
)

// Election describes the activity window and the voters of an election.
type Election struct {
	ID election.ID

	// Start is the first height where the election is active.
	Start uint64

	// End is the last height where the election is active. Zero means the
	// election never ends.
	End uint64

	// Voters is the list of eligible voters. An empty list means that every
	// voter is eligible.
	Voters []access.Identity
}

// Registry is the fixed list of elections.
//
// - implements election.Source
// - implements election.Eligibility
type Registry struct {
	clock     clock.Clock
	elections map[election.ID]entry
}

type entry struct {
	Election
	voters map[access.Identity]struct{}
}

// NewRegistry creates a registry of the elections evaluated against the clock.
func NewRegistry(c clock.Clock, elections ...Election) Registry {
	r := Registry{
		clock:     c,
		elections: make(map[election.ID]entry),
	}

	for _, e := range elections {
		voters := make(map[access.Identity]struct{}, len(e.Voters))
		for _, v := range e.Voters {
			voters[v] = struct{}{}
		}

		r.elections[e.ID] = entry{Election: e, voters: voters}
	}

	return r
}

// Exists implements election.Source.
func (r Registry) Exists(id election.ID) bool {
	_, found := r.elections[id]
	return found
}

// IsActive implements election.Source. The election is active when the
// current height is inside the window.
func (r Registry) IsActive(id election.ID) bool {
	e, found := r.elections[id]
	if !found {
		return false
	}

	height := r.clock.GetHeight()

	if height < e.Start {
		return false
	}

	return e.End == 0 || height <= e.End
}

// IsEligible implements election.Eligibility.
func (r Registry) IsEligible(voter access.Identity, id election.ID) bool {
	e, found := r.elections[id]
	if !found {
		return false
	}

	if len(e.voters) == 0 {
		return true
	}

	_, found = e.voters[voter]
	return found
}
