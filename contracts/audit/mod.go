// Package audit implements the audit engine of the published tallies.
//
// The admin audits a published tally once by replaying the verification of a
// sample of proofs. The audited results can then be disputed by anyone, and
// the admin resolves the disputes and releases the final results. Every action
// is written in a bounded log where entries are never reclaimed.
package audit

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/access/latch"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/execution"
	"go.dedis.ch/zktally/core/journal"
	"go.dedis.ch/zktally/core/store"
	"go.dedis.ch/zktally/core/store/prefixed"
	"golang.org/x/xerrors"
)

// ContractName is the name of the contract, which is also the namespace of its
// keys in the store.
const ContractName = "audit"

// DefaultLogCapacity is the number of entries of the audit log of an
// election.
const DefaultLogCapacity = 100

// Actions of the audit log.
const (
	ActionAudit   = "AUDIT"
	ActionDispute = "DISPUTE"
	ActionResolve = "RESOLVE"
	ActionRelease = "RELEASE"
)

const (
	configKey  = "config"
	recordKey  = "record:%d"
	disputeKey = "dispute:%d:%d"
)

// Contract is the audit engine.
type Contract struct {
	exec        execution.Executor
	access      latch.Service
	admin       access.Credential
	clock       clock.Clock
	eligibility election.Eligibility
	tally       TallySource
	proofs      ProofLookup
	log         journal.Journal
}

// Option is the type of option to create a contract.
type Option func(*Contract)

// WithLogCapacity sets the capacity of the audit log of each election.
func WithLogCapacity(n uint64) Option {
	return func(c *Contract) {
		c.log = journal.New("log", n)
	}
}

// NewContract creates a new audit engine on top of the database.
func NewContract(db store.DB, c clock.Clock, eligibility election.Eligibility,
	tally TallySource, proofs ProofLookup, opts ...Option) Contract {

	contract := Contract{
		exec:        execution.NewExecutor(db, ContractName),
		access:      latch.NewService(),
		admin:       access.NewRoleCreds(ContractName, "admin"),
		clock:       c,
		eligibility: eligibility,
		tally:       tally,
		proofs:      proofs,
		log:         journal.New("log", DefaultLogCapacity),
	}

	for _, opt := range opts {
		opt(&contract)
	}

	return contract
}

// SetAdmin sets the admin of the engine. It can be done only once.
func (c Contract) SetAdmin(caller access.Identity, id access.Identity) error {
	return c.exec.Update("setAdmin", func(snap store.Snapshot) error {
		err := c.access.Grant(c.namespace(snap), c.admin, id)
		if err != nil {
			return xerrors.Errorf("failed to set admin: %w", err)
		}

		c.exec.Logger().Info().
			Stringer("caller", caller).
			Stringer("admin", id).
			Msg("admin configured")

		return nil
	})
}

// SetTimeoutWindow sets the number of blocks after the audit during which the
// eligibility can be checked.
func (c Contract) SetTimeoutWindow(caller access.Identity, blocks uint64) error {
	return c.exec.Update("setTimeoutWindow", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("timeout window: %w", err)
		}

		if blocks == 0 {
			return xerrors.Errorf("timeout window: %w", ErrInvalidConfig)
		}

		cfg, err := readConfig(snap)
		if err != nil {
			return err
		}

		cfg.TimeoutWindow = blocks

		return writeJSON(snap, configKey, cfg)
	})
}

// PerformAudit replays the fingerprints and records the audit of the election
// when enough of them are verified again. An election is audited once.
func (c Contract) PerformAudit(caller access.Identity, id election.ID, fingerprints [][]byte) (Record, error) {
	var rec Record

	err := c.exec.Update("performAudit", func(raw store.Snapshot) error {
		snap := c.namespace(raw)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("audit: %w", err)
		}

		if len(fingerprints) > MaxFingerprints {
			return xerrors.Errorf("%d fingerprints: %w", len(fingerprints), ErrBatchTooLarge)
		}

		published, err := c.tally.IsPublished(raw, id)
		if err != nil {
			return xerrors.Errorf("failed to read tally: %v", err)
		}

		if !published {
			return xerrors.Errorf("election %v: %w", id, ErrNotPublished)
		}

		_, found, err := readRecord(snap, id)
		if err != nil {
			return err
		}

		if found {
			return xerrors.Errorf("election %v: %w", id, ErrAlreadyAudited)
		}

		replayed := 0

		for _, fp := range fingerprints {
			ok, err := c.proofs.Replay(raw, id, fp)
			if err != nil {
				return xerrors.Errorf("failed to replay %x: %v", fp, err)
			}

			if ok {
				replayed++
			}
		}

		submitted := len(fingerprints)
		if submitted == 0 {
			submitted = 1
		}

		rate := uint64(replayed) * 100 / uint64(submitted)
		if rate < MinMatchRate {
			return xerrors.Errorf("%d%% replayed: %w", rate, ErrVerificationMismatch)
		}

		results, err := c.tally.Results(raw, id)
		if err != nil {
			return xerrors.Errorf("failed to read results: %v", err)
		}

		height := c.clock.GetHeight()

		rec = Record{
			Election:     id,
			Audited:      true,
			FinalResults: results,
			Timestamp:    height,
			Submitted:    len(fingerprints),
			Replayed:     replayed,
			MatchRate:    rate,
		}

		err = writeJSON(snap, fmt.Sprintf(recordKey, id), rec)
		if err != nil {
			return err
		}

		_, err = c.appendLog(snap, id, ActionAudit, []byte(fmt.Sprintf("%d%%", rate)), height)
		if err != nil {
			return err
		}

		c.exec.Logger().Info().
			Stringer("election", id).
			Uint64("rate", rate).
			Msg("election audited")

		return nil
	})

	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// RaiseDispute opens a dispute against the audited results of the election
// and returns its identifier. Identifiers start at 1.
func (c Contract) RaiseDispute(caller access.Identity, id election.ID, reason string,
	evidence []byte, timestamp uint64) (uint64, error) {

	var disputeID uint64

	err := c.exec.Update("raiseDispute", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		n := utf8.RuneCountInString(reason)
		if n == 0 || n > MaxReasonLength {
			return xerrors.Errorf("reason of %d characters: %w", n, ErrInvalidReason)
		}

		if len(evidence) != EvidenceSize {
			return xerrors.Errorf("evidence of %d bytes: %w", len(evidence), ErrBadEvidence)
		}

		rec, err := c.getRecord(snap, id)
		if err != nil {
			return err
		}

		height := c.clock.GetHeight()

		if timestamp >= height {
			return xerrors.Errorf("timestamp %d at height %d: %w", timestamp, height, ErrFutureTimestamp)
		}

		sum := uint64(0)
		for _, count := range rec.FinalResults {
			sum += count
		}

		if sum < AnomalyLow || sum > AnomalyHigh {
			return xerrors.Errorf("sum of %d: %w", sum, ErrAnomalous)
		}

		disputeID = rec.Disputes + 1

		slot, err := c.appendLog(snap, id, ActionDispute, []byte(fmt.Sprint(disputeID)), height)
		if err != nil {
			return err
		}

		dispute := Dispute{
			ID:        disputeID,
			Election:  id,
			Disputer:  caller,
			Reason:    reason,
			Evidence:  append([]byte{}, evidence...),
			Status:    StatusPending,
			Timestamp: timestamp,
			Slot:      slot,
		}

		err = writeJSON(snap, fmt.Sprintf(disputeKey, id, disputeID), dispute)
		if err != nil {
			return err
		}

		rec.Disputes = disputeID

		return writeJSON(snap, fmt.Sprintf(recordKey, id), rec)
	})

	if err != nil {
		return 0, err
	}

	return disputeID, nil
}

// ResolveDispute resolves a pending dispute. The only resolution is the
// acceptance.
func (c Contract) ResolveDispute(caller access.Identity, id election.ID,
	disputeID uint64, resolution Status) error {

	return c.exec.Update("resolveDispute", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("resolve: %w", err)
		}

		if resolution != StatusAccepted {
			return xerrors.Errorf("resolution %q: %w", resolution, ErrInvalidResolution)
		}

		var dispute Dispute

		key := fmt.Sprintf(disputeKey, id, disputeID)

		found, err := readJSON(snap, key, &dispute)
		if err != nil {
			return err
		}

		if !found {
			return xerrors.Errorf("dispute %d: %w", disputeID, ErrDisputeNotFound)
		}

		if dispute.Status != StatusPending {
			return xerrors.Errorf("dispute %d: %w", disputeID, ErrAlreadyResolved)
		}

		dispute.Status = StatusAccepted

		err = writeJSON(snap, key, dispute)
		if err != nil {
			return err
		}

		_, err = c.appendLog(snap, id, ActionResolve, []byte(fmt.Sprint(disputeID)), c.clock.GetHeight())
		if err != nil {
			return err
		}

		err = c.log.MarkResolved(snap, id, dispute.Slot)
		if err != nil {
			return xerrors.Errorf("failed to mark log entry: %v", err)
		}

		return nil
	})
}

// ReleaseFinalResults overwrites the final results of an audited election.
func (c Contract) ReleaseFinalResults(caller access.Identity, id election.ID, results []uint64) error {
	return c.exec.Update("releaseFinalResults", func(raw store.Snapshot) error {
		snap := c.namespace(raw)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("release: %w", err)
		}

		if len(results) > MaxResults {
			return xerrors.Errorf("%d results: %w", len(results), ErrTooManyResults)
		}

		published, err := c.tally.IsPublished(raw, id)
		if err != nil {
			return xerrors.Errorf("failed to read tally: %v", err)
		}

		if !published {
			return xerrors.Errorf("election %v: %w", id, ErrNotPublished)
		}

		rec, err := c.getRecord(snap, id)
		if err != nil {
			return err
		}

		height := c.clock.GetHeight()

		rec.FinalResults = append([]uint64{}, results...)
		rec.Timestamp = height

		err = writeJSON(snap, fmt.Sprintf(recordKey, id), rec)
		if err != nil {
			return err
		}

		_, err = c.appendLog(snap, id, ActionRelease, []byte(fmt.Sprint(results)), height)

		return err
	})
}

// CheckAuditEligibility returns true if the voter can still check the audit of
// the election.
func (c Contract) CheckAuditEligibility(voter access.Identity, id election.ID) (bool, error) {
	var rec Record
	var cfg Config

	err := c.exec.Query(func(r store.Readable) error {
		r = c.readable(r)

		var err error
		rec, err = c.getRecord(r, id)
		if err != nil {
			return err
		}

		cfg, err = readConfig(r)
		return err
	})

	if err != nil {
		return false, err
	}

	height := c.clock.GetHeight()

	if height > rec.Timestamp && height-rec.Timestamp > cfg.TimeoutWindow {
		return false, xerrors.Errorf("audited at %d, now %d: %w", rec.Timestamp, height, ErrAuditWindowClosed)
	}

	return c.eligibility.IsEligible(voter, id), nil
}

// GetAuditRecord returns the audit record of the election, if it exists.
func (c Contract) GetAuditRecord(id election.ID) (Record, bool) {
	var rec Record
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		rec, found, err = readRecord(c.readable(r), id)
		return err
	})

	return rec, found
}

// GetDispute returns the dispute of the election, if it exists.
func (c Contract) GetDispute(id election.ID, disputeID uint64) (Dispute, bool) {
	var dispute Dispute
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		found, err = readJSON(c.readable(r), fmt.Sprintf(disputeKey, id, disputeID), &dispute)
		return err
	})

	return dispute, found
}

// GetLog returns the entries of the audit log of the election.
func (c Contract) GetLog(id election.ID) []journal.Entry {
	var entries []journal.Entry

	c.exec.View(func(r store.Readable) error {
		var err error
		entries, err = c.log.List(c.readable(r), id)
		return err
	})

	return entries
}

// GetConfig returns the current configuration of the engine.
func (c Contract) GetConfig() Config {
	cfg := DefaultConfig()

	c.exec.View(func(r store.Readable) error {
		var err error
		cfg, err = readConfig(c.readable(r))
		return err
	})

	return cfg
}

func (c Contract) appendLog(snap store.Snapshot, id election.ID, action string,
	detail []byte, height uint64) (uint64, error) {

	slot, err := c.log.Append(snap, id, action, detail, height)
	if err != nil {
		return 0, xerrors.Errorf("failed to log %s: %w", action, err)
	}

	return slot, nil
}

func (c Contract) getRecord(r store.Readable, id election.ID) (Record, error) {
	rec, found, err := readRecord(r, id)
	if err != nil {
		return rec, err
	}

	if !found {
		return rec, xerrors.Errorf("election %v: %w", id, ErrNotAudited)
	}

	return rec, nil
}

func (c Contract) namespace(snap store.Snapshot) store.Snapshot {
	return prefixed.NewSnapshot(ContractName, snap)
}

func (c Contract) readable(r store.Readable) store.Readable {
	return prefixed.NewReadable(ContractName, r)
}

func readRecord(r store.Readable, id election.ID) (Record, bool, error) {
	var rec Record

	found, err := readJSON(r, fmt.Sprintf(recordKey, id), &rec)
	if err != nil {
		return Record{}, false, err
	}

	return rec, found, nil
}

func readConfig(r store.Readable) (Config, error) {
	cfg := DefaultConfig()

	_, err := readJSON(r, configKey, &cfg)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func readJSON(r store.Readable, key string, v interface{}) (bool, error) {
	data, err := r.Get([]byte(key))
	if err != nil {
		return false, xerrors.Errorf("failed to read %s: %v", key, err)
	}

	if data == nil {
		return false, nil
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return false, xerrors.Errorf("failed to unmarshal %s: %v", key, err)
	}

	return true, nil
}

func writeJSON(snap store.Snapshot, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to marshal %s: %v", key, err)
	}

	err = snap.Set([]byte(key), data)
	if err != nil {
		return xerrors.Errorf("failed to write %s: %v", key, err)
	}

	return nil
}
