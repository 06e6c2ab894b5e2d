package proofs

import (
	"go.dedis.ch/zktally/core/access/latch"
	"golang.org/x/xerrors"
)

// Authorization errors.
var (
	// ErrAuthorityUnset is returned when an operation runs before the
	// authority is configured.
	ErrAuthorityUnset = latch.ErrUnset

	// ErrUnauthorized is returned when the caller is not the authority.
	ErrUnauthorized = latch.ErrUnauthorized

	// ErrAlreadyConfigured is returned when the authority is configured
	// twice.
	ErrAlreadyConfigured = latch.ErrAlreadyConfigured
)

// Validation errors.
var (
	// ErrInvalidConfig is returned for a non-positive configuration value.
	ErrInvalidConfig = xerrors.New("invalid configuration value")

	// ErrBadPublicInput is returned when the claimed candidate is out of the
	// candidate range.
	ErrBadPublicInput = xerrors.New("bad public input")

	// ErrBadCommitment is returned when the commitment does not have the
	// expected length.
	ErrBadCommitment = xerrors.New("bad commitment")
)

// State errors.
var (
	// ErrElectionEnded is returned when the election is not active.
	ErrElectionEnded = xerrors.New("election not active")

	// ErrNotEligible is returned when the voter is not eligible.
	ErrNotEligible = xerrors.New("voter not eligible")
)

// Consistency errors.
var (
	// ErrAlreadyVoted is returned when the voter already has an accepted proof
	// in the election.
	ErrAlreadyVoted = xerrors.New("voter already voted")

	// ErrAlreadyVerified is returned when a record already exists for the
	// voter, the commitment and the election.
	ErrAlreadyVerified = xerrors.New("proof already verified")
)

// Capacity errors.
var (
	// ErrBatchTooLarge is returned when a batch exceeds the limit.
	ErrBatchTooLarge = xerrors.New("batch too large")
)

// Cryptographic errors.
var (
	// ErrInvalidProof is returned when the verifier rejects the proof.
	ErrInvalidProof = xerrors.New("invalid proof")
)

// Timing errors.
var (
	// ErrProofExpired is returned when the proof was issued too long ago.
	ErrProofExpired = xerrors.New("proof expired")

	// ErrFutureProof is returned when the proof claims to be issued after the
	// current height.
	ErrFutureProof = xerrors.New("proof issued in the future")
)
