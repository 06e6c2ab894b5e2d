package proofs

import (
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/election"
)

// Proof is a vote proof: the claimed candidate is its public input and the
// bytes are checked by the verifier.
type Proof struct {
	Candidate election.Candidate `json:"candidate"`
	Bytes     []byte             `json:"bytes"`

	// IssuedAt is the height at which the proof was produced. Zero means the
	// height is unknown and the proof never expires.
	IssuedAt uint64 `json:"issuedAt,omitempty"`
}

// Record is the verified proof of a voter, stored when the proof is accepted.
// A record is never updated.
type Record struct {
	Voter       access.Identity    `json:"voter"`
	Commitment  []byte             `json:"commitment"`
	Election    election.ID        `json:"election"`
	Verified    bool               `json:"verified"`
	Height      uint64             `json:"height"`
	Candidate   election.Candidate `json:"candidate"`
	Proof       []byte             `json:"proof"`
	Fingerprint []byte             `json:"fingerprint"`
}

// Receipt is the outcome of a proof verification.
type Receipt struct {
	Accepted    bool
	Height      uint64
	Candidate   election.Candidate
	Fingerprint []byte
}

// Entry is an element of a batch of verifications.
type Entry struct {
	Voter      access.Identity
	Election   election.ID
	Proof      Proof
	Commitment []byte
}

// BatchResult is the outcome of a batch of verifications. Verified is the
// number of entries accepted before the batch stopped.
type BatchResult struct {
	Verified int
	Receipts []Receipt
}

// Tally is the number of accepted proofs per candidate of an election.
type Tally struct {
	Election election.ID
	Counts   map[election.Candidate]uint64
	Total    uint64
}

// Config is the configuration of the contract.
type Config struct {
	// BatchLimit is the maximum number of entries in a batch.
	BatchLimit uint64 `json:"batchLimit" yaml:"batchLimit"`

	// ProofExpiry is the number of blocks after its issuance during which a
	// proof is accepted.
	ProofExpiry uint64 `json:"proofExpiry" yaml:"proofExpiry"`
}

// DefaultConfig returns the configuration used until the authority changes
// it.
func DefaultConfig() Config {
	return Config{
		BatchLimit:  10,
		ProofExpiry: 100,
	}
}
