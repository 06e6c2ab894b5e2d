package audit

import (
	"go.dedis.ch/zktally/core/access/latch"
	"go.dedis.ch/zktally/core/journal"
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
	// ErrNotPublished is returned when the tally of the election is not
	// published yet.
	ErrNotPublished = xerrors.New("tally not published")

	// ErrNotAudited is returned when the election has no audit record.
	ErrNotAudited = xerrors.New("election not audited")

	ErrDisputeNotFound = xerrors.New("dispute not found")
)

// Validation errors.
var (
	ErrInvalidConfig     = xerrors.New("invalid configuration value")
	ErrInvalidReason     = xerrors.New("invalid reason")
	ErrBadEvidence       = xerrors.New("bad evidence")
	ErrInvalidResolution = xerrors.New("invalid resolution")
)

// Capacity errors.
var (
	ErrBatchTooLarge  = xerrors.New("too many fingerprints")
	ErrTooManyResults = xerrors.New("too many results")
	ErrLogFull        = journal.ErrFull
)

// Consistency errors.
var (
	ErrAlreadyAudited  = xerrors.New("election already audited")
	ErrAlreadyResolved = xerrors.New("dispute already resolved")

	// ErrVerificationMismatch is returned when too few fingerprints are
	// replayed.
	ErrVerificationMismatch = xerrors.New("verification mismatch")
)

// Timing errors.
var (
	ErrFutureTimestamp   = xerrors.New("timestamp not in the past")
	ErrAnomalous         = xerrors.New("anomalous results")
	ErrAuditWindowClosed = xerrors.New("audit window closed")
)
