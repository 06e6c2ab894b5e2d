package tally

import (
	"go.dedis.ch/zktally/core/access/latch"
	"golang.org/x/xerrors"
)

// Authorization errors.
var (
	ErrAdminUnset        = latch.ErrUnset
	ErrUnauthorized      = latch.ErrUnauthorized
	ErrAlreadyConfigured = latch.ErrAlreadyConfigured
)

// State errors.
var (
	// ErrElectionInactive is returned when the election is not active.
	ErrElectionInactive = xerrors.New("election not active")

	// ErrNotInitialized is returned when the tally of the election does not
	// exist.
	ErrNotInitialized = xerrors.New("tally not initialized")

	// ErrNotPublished is returned when the results of a tally are requested
	// before its publication.
	ErrNotPublished = xerrors.New("tally not published")

	// ErrUnknownCandidate is returned when the candidate is not part of the
	// tally.
	ErrUnknownCandidate = xerrors.New("unknown candidate")
)

// Validation errors.
var (
	ErrInvalidConfig     = xerrors.New("invalid configuration value")
	ErrInvalidCandidates = xerrors.New("invalid candidate list")
)

// Capacity errors.
var (
	// ErrOverflow is returned when an aggregate would hold more than MaxCount
	// proofs.
	ErrOverflow = xerrors.New("aggregate overflow")

	// ErrInsufficientProofs is returned when an aggregation is below the
	// precision threshold, or when a candidate has no proof at publication.
	ErrInsufficientProofs = xerrors.New("insufficient proofs")
)

// Consistency errors.
var (
	ErrAlreadyPublished   = xerrors.New("tally already published")
	ErrAlreadyInitialized = xerrors.New("tally already initialized")

	// ErrAggregateRejected is returned when the oracle does not confirm the
	// aggregation.
	ErrAggregateRejected = xerrors.New("aggregate rejected")
)

// Cryptographic errors.
var (
	ErrHomomorphicFailure = xerrors.New("homomorphic failure")
)
