package tally

import (
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/store"
)

// MaxCount is the highest number of proofs an aggregate can hold.
const MaxCount uint64 = 1_000_000

// ElectionTally is the tally of an election. It is created by the
// initialization and becomes read-only once published.
type ElectionTally struct {
	Election   election.ID          `json:"election"`
	Candidates []election.Candidate `json:"candidates"`

	// Accumulators is the snapshot of the accumulator of each candidate,
	// updated with every aggregation.
	Accumulators map[election.Candidate][]byte `json:"accumulators"`

	Published  bool   `json:"published"`
	Result     []byte `json:"result,omitempty"`
	LastUpdate uint64 `json:"lastUpdate"`
}

// Aggregate is the aggregation of the proofs of a candidate.
type Aggregate struct {
	Candidate   election.Candidate `json:"candidate"`
	Count       uint64             `json:"count"`
	Accumulator []byte             `json:"accumulator"`
	Verified    bool               `json:"verified"`
	LastUpdate  uint64             `json:"lastUpdate"`
}

// Integrity is the report of the integrity check of a tally.
type Integrity struct {
	Total     uint64
	Threshold uint64
	Passed    bool
}

// Config is the configuration of the contract.
type Config struct {
	// MaxCandidates is the maximum number of candidates of an election.
	MaxCandidates uint64 `json:"maxCandidates" yaml:"maxCandidates"`

	// PrecisionThreshold is the minimum number of proofs of an aggregation.
	PrecisionThreshold uint64 `json:"precisionThreshold" yaml:"precisionThreshold"`
}

// DefaultConfig returns the configuration used until the admin changes it.
func DefaultConfig() Config {
	return Config{
		MaxCandidates:      10,
		PrecisionThreshold: 1,
	}
}

// AggregateVerifier is the oracle that confirms an aggregation is backed by
// verified proofs.
type AggregateVerifier interface {
	VerifyAggregate(r store.Readable, id election.ID, cand election.Candidate) (bool, error)
}
