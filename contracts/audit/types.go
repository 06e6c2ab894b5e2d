package audit

import (
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/store"
)

// Limits of the inputs of the engine.
const (
	MaxFingerprints = 50
	MaxReasonLength = 50
	EvidenceSize    = 32
	MaxResults      = 10

	// MinMatchRate is the lowest percentage of replayed fingerprints for an
	// audit to pass.
	MinMatchRate = 95
)

// A dispute is accepted only when the sum of the final results is inside
// the plausibility band.
const (
	AnomalyLow  = 50
	AnomalyHigh = 150
)

// Record is the audit record of an election. It is created by the first
// successful audit.
type Record struct {
	Election     election.ID `json:"election"`
	Audited      bool        `json:"audited"`
	Disputes     uint64      `json:"disputes"`
	FinalResults []uint64    `json:"finalResults"`
	Timestamp    uint64      `json:"timestamp"`
	Submitted    int         `json:"submitted"`
	Replayed     int         `json:"replayed"`
	MatchRate    uint64      `json:"matchRate"`
}

// Status is the status of a dispute.
type Status string

const (
	// StatusPending is the status of a new dispute.
	StatusPending Status = "pending"

	// StatusAccepted is the terminal status of a resolved dispute.
	StatusAccepted Status = "accepted"
)

// Dispute is a challenge of the audited results of an election.
type Dispute struct {
	ID        uint64          `json:"id"`
	Election  election.ID     `json:"election"`
	Disputer  access.Identity `json:"disputer"`
	Reason    string          `json:"reason"`
	Evidence  []byte          `json:"evidence"`
	Status    Status          `json:"status"`
	Timestamp uint64          `json:"timestamp"`

	// Slot is the slot of the log entry of the dispute.
	Slot uint64 `json:"slot"`
}

// Config is the configuration of the contract.
type Config struct {
	// TimeoutWindow is the number of blocks after the audit during which the
	// voters can check their eligibility.
	TimeoutWindow uint64 `json:"timeoutWindow" yaml:"timeoutWindow"`
}

// DefaultConfig returns the configuration used until the admin changes it.
func DefaultConfig() Config {
	return Config{
		TimeoutWindow: 100,
	}
}

// TallySource is the read access to the published tallies.
type TallySource interface {
	IsPublished(r store.Readable, id election.ID) (bool, error)

	// Results returns the count of each candidate of the published tally.
	Results(r store.Readable, id election.ID) ([]uint64, error)
}

// ProofLookup replays the verification of a proof from its fingerprint.
type ProofLookup interface {
	Replay(r store.Readable, id election.ID, fingerprint []byte) (bool, error)
}
