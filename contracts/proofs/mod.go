// Package proofs implements the verification engine of the vote proofs.
//
// A voter submits a proof that its ballot is well formed for the claimed
// candidate, along the commitment to its ballot. An accepted proof is stored
// as a record, the voter is flagged as having voted and the counter of the
// candidate is incremented. Each operation is applied atomically.
package proofs

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/access/latch"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/execution"
	"go.dedis.ch/zktally/core/store"
	"go.dedis.ch/zktally/core/store/prefixed"
	"go.dedis.ch/zktally/crypto"
	"go.dedis.ch/zktally/crypto/zkp"
	"golang.org/x/xerrors"
)

// ContractName is the name of the contract, which is also the namespace of its
// keys in the store.
const ContractName = "proofs"

const (
	// MinCandidate is the lowest valid candidate.
	MinCandidate election.Candidate = 1

	// MaxCandidate is the highest valid candidate.
	MaxCandidate election.Candidate = 10

	// CommitmentSize is the size in bytes of a ballot commitment.
	CommitmentSize = 32
)

const (
	configKey      = "config"
	recordKey      = "record:%d:%x:%x"
	votedKey       = "voted:%d:%x"
	counterKey     = "counter:%d:%d"
	fingerprintKey = "fingerprint:%x"
)

// Contract is the proof verification engine.
type Contract struct {
	exec        execution.Executor
	access      latch.Service
	authority   access.Credential
	clock       clock.Clock
	elections   election.Source
	eligibility election.Eligibility
	verifier    zkp.Verifier
	hashFac     crypto.HashFactory
}

// Option is the type of option to create a contract.
type Option func(*Contract)

// WithVerifier sets the verifier of the proofs. The default verifier is the
// digest placeholder.
func WithVerifier(v zkp.Verifier) Option {
	return func(c *Contract) {
		c.verifier = v
	}
}

// WithHashFactory sets the hash factory used to compute the fingerprints.
func WithHashFactory(f crypto.HashFactory) Option {
	return func(c *Contract) {
		c.hashFac = f
	}
}

// NewContract creates a new proof verification engine on top of the database.
func NewContract(db store.DB, c clock.Clock, elections election.Source,
	eligibility election.Eligibility, opts ...Option) Contract {

	contract := Contract{
		exec:        execution.NewExecutor(db, ContractName),
		access:      latch.NewService(),
		authority:   access.NewRoleCreds(ContractName, "authority"),
		clock:       c,
		elections:   elections,
		eligibility: eligibility,
		verifier:    zkp.NewDigestVerifier(),
		hashFac:     crypto.NewSha256Factory(),
	}

	for _, opt := range opts {
		opt(&contract)
	}

	return contract
}

// ConfigureAuthority sets the authority of the engine. It can be done only
// once.
func (c Contract) ConfigureAuthority(caller access.Identity, id access.Identity) error {
	return c.exec.Update("configureAuthority", func(snap store.Snapshot) error {
		err := c.access.Grant(c.namespace(snap), c.authority, id)
		if err != nil {
			return xerrors.Errorf("failed to configure authority: %w", err)
		}

		c.exec.Logger().Info().
			Stringer("caller", caller).
			Stringer("authority", id).
			Msg("authority configured")

		return nil
	})
}

// ConfigureBatchLimit sets the maximum number of entries of a batch.
func (c Contract) ConfigureBatchLimit(caller access.Identity, n uint64) error {
	return c.configure("configureBatchLimit", caller, n, func(cfg *Config) {
		cfg.BatchLimit = n
	})
}

// ConfigureProofExpiry sets the number of blocks during which a proof is
// accepted after its issuance.
func (c Contract) ConfigureProofExpiry(caller access.Identity, blocks uint64) error {
	return c.configure("configureProofExpiry", caller, blocks, func(cfg *Config) {
		cfg.ProofExpiry = blocks
	})
}

func (c Contract) configure(op string, caller access.Identity, value uint64, fn func(*Config)) error {
	return c.exec.Update(op, func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.authority, caller)
		if err != nil {
			return xerrors.Errorf("%s: %w", op, err)
		}

		if value == 0 {
			return xerrors.Errorf("%s: %w", op, ErrInvalidConfig)
		}

		cfg, err := c.readConfig(snap)
		if err != nil {
			return err
		}

		fn(&cfg)

		return c.writeConfig(snap, cfg)
	})
}

// VerifyVoteProof verifies the proof of the voter for the election and
// records it if it is accepted.
func (c Contract) VerifyVoteProof(voter access.Identity, id election.ID,
	proof Proof, commitment []byte) (Receipt, error) {

	var receipt Receipt

	err := c.exec.Update("verifyVoteProof", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.checkAuthority(snap)
		if err != nil {
			return err
		}

		cfg, err := c.readConfig(snap)
		if err != nil {
			return err
		}

		receipt, err = c.verify(snap, cfg, Entry{
			Voter:      voter,
			Election:   id,
			Proof:      proof,
			Commitment: commitment,
		})

		return err
	})

	if err != nil {
		return Receipt{}, err
	}

	return receipt, nil
}

// BatchVerifyProofs verifies the entries in order. It stops at the first
// failure and returns it along the number of entries verified before. The
// batch is applied as a whole: a failure discards every entry of the batch.
func (c Contract) BatchVerifyProofs(entries []Entry) (BatchResult, error) {
	var res BatchResult

	err := c.exec.Update("batchVerifyProofs", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.checkAuthority(snap)
		if err != nil {
			return err
		}

		cfg, err := c.readConfig(snap)
		if err != nil {
			return err
		}

		if uint64(len(entries)) > cfg.BatchLimit {
			return xerrors.Errorf("%d entries for a limit of %d: %w",
				len(entries), cfg.BatchLimit, ErrBatchTooLarge)
		}

		for i, entry := range entries {
			receipt, err := c.verify(snap, cfg, entry)
			if err != nil {
				return xerrors.Errorf("entry %d: %w", i, err)
			}

			res.Verified++
			res.Receipts = append(res.Receipts, receipt)
		}

		return nil
	})

	if err != nil {
		res.Receipts = nil
	}

	return res, err
}

// GetVerifiedProof returns the record of the voter for the commitment in the
// election, if it exists.
func (c Contract) GetVerifiedProof(voter access.Identity, commitment []byte,
	id election.ID) (Record, bool) {

	var rec Record
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		rec, found, err = readRecord(c.readable(r), fmt.Sprintf(recordKey, id, voter, commitment))
		return err
	})

	return rec, found
}

// GetElectionTally returns the counters of every candidate of the range for
// the election.
func (c Contract) GetElectionTally(id election.ID) Tally {
	tally := Tally{
		Election: id,
		Counts:   make(map[election.Candidate]uint64),
	}

	c.exec.View(func(r store.Readable) error {
		r = c.readable(r)

		for cand := MinCandidate; cand <= MaxCandidate; cand++ {
			count, err := readUint(r, fmt.Sprintf(counterKey, id, cand))
			if err != nil {
				return err
			}

			tally.Counts[cand] = count
			tally.Total += count
		}

		return nil
	})

	return tally
}

// HasVoterVoted returns true if the voter has an accepted proof in the
// election.
func (c Contract) HasVoterVoted(voter access.Identity, id election.ID) bool {
	var voted bool

	c.exec.View(func(r store.Readable) error {
		var err error
		voted, err = hasVoted(c.readable(r), voter, id)
		return err
	})

	return voted
}

// GetTotalVerifiedForElection returns the sum of the counters of the
// election.
func (c Contract) GetTotalVerifiedForElection(id election.ID) uint64 {
	return c.GetElectionTally(id).Total
}

// GetConfig returns the current configuration of the engine.
func (c Contract) GetConfig() Config {
	cfg := DefaultConfig()

	c.exec.View(func(r store.Readable) error {
		var err error
		cfg, err = c.readConfig(c.readable(r))
		return err
	})

	return cfg
}

// GetAuthority returns the authority of the engine, if it is configured.
func (c Contract) GetAuthority() (access.Identity, bool) {
	var id access.Identity
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		id, found, err = c.access.Get(c.readable(r), c.authority)
		return err
	})

	return id, found
}

// ResetElectionProofs clears the counters of the election and the vote flag
// of the caller. The records are kept.
func (c Contract) ResetElectionProofs(caller access.Identity, id election.ID) error {
	return c.exec.Update("resetElectionProofs", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.authority, caller)
		if err != nil {
			return xerrors.Errorf("reset: %w", err)
		}

		for cand := MinCandidate; cand <= MaxCandidate; cand++ {
			err = snap.Delete([]byte(fmt.Sprintf(counterKey, id, cand)))
			if err != nil {
				return xerrors.Errorf("failed to delete counter: %v", err)
			}
		}

		err = snap.Delete([]byte(fmt.Sprintf(votedKey, id, caller)))
		if err != nil {
			return xerrors.Errorf("failed to delete vote flag: %v", err)
		}

		c.exec.Logger().Info().Stringer("election", id).Msg("proofs reset")

		return nil
	})
}

// Replay looks up the record of the fingerprint and verifies its proof again.
// It returns true if the record belongs to the election and its proof is
// still accepted by the verifier.
func (c Contract) Replay(r store.Readable, id election.ID, fingerprint []byte) (bool, error) {
	r = c.readable(r)

	key, err := r.Get([]byte(fmt.Sprintf(fingerprintKey, fingerprint)))
	if err != nil {
		return false, xerrors.Errorf("failed to read fingerprint: %v", err)
	}

	if key == nil {
		return false, nil
	}

	rec, found, err := readRecord(r, string(key))
	if err != nil {
		return false, err
	}

	if !found || rec.Election != id || !rec.Verified {
		return false, nil
	}

	return c.verifier.Verify(rec.Proof, uint32(rec.Candidate)), nil
}

// VerifyAggregate returns true if at least one proof has been accepted for the
// candidate of the election.
func (c Contract) VerifyAggregate(r store.Readable, id election.ID, cand election.Candidate) (bool, error) {
	count, err := readUint(c.readable(r), fmt.Sprintf(counterKey, id, cand))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Fingerprint returns the fingerprint of the record of the voter for the
// commitment in the election.
func (c Contract) Fingerprint(voter access.Identity, id election.ID, commitment []byte) []byte {
	return crypto.Digest(c.hashFac,
		binary.BigEndian.AppendUint64(nil, uint64(id)),
		[]byte(voter),
		commitment)
}

func (c Contract) verify(snap store.Snapshot, cfg Config, entry Entry) (Receipt, error) {
	id := entry.Election

	if !c.elections.IsActive(id) {
		return Receipt{}, xerrors.Errorf("election %v: %w", id, ErrElectionEnded)
	}

	if !c.eligibility.IsEligible(entry.Voter, id) {
		return Receipt{}, xerrors.Errorf("voter %v: %w", entry.Voter, ErrNotEligible)
	}

	voted, err := hasVoted(snap, entry.Voter, id)
	if err != nil {
		return Receipt{}, err
	}

	if voted {
		return Receipt{}, xerrors.Errorf("voter %v: %w", entry.Voter, ErrAlreadyVoted)
	}

	cand := entry.Proof.Candidate
	if cand < MinCandidate || cand > MaxCandidate {
		return Receipt{}, xerrors.Errorf("candidate %d: %w", cand, ErrBadPublicInput)
	}

	if len(entry.Commitment) != CommitmentSize {
		return Receipt{}, xerrors.Errorf("commitment of %d bytes: %w",
			len(entry.Commitment), ErrBadCommitment)
	}

	height := c.clock.GetHeight()

	issued := entry.Proof.IssuedAt
	if issued > height {
		return Receipt{}, xerrors.Errorf("issued at %d, now %d: %w", issued, height, ErrFutureProof)
	}

	if issued > 0 && height-issued > cfg.ProofExpiry {
		return Receipt{}, xerrors.Errorf("issued at %d, now %d: %w", issued, height, ErrProofExpired)
	}

	key := fmt.Sprintf(recordKey, id, entry.Voter, entry.Commitment)

	_, found, err := readRecord(snap, key)
	if err != nil {
		return Receipt{}, err
	}

	if found {
		return Receipt{}, xerrors.Errorf("record %x: %w", entry.Commitment, ErrAlreadyVerified)
	}

	if !c.verifier.Verify(entry.Proof.Bytes, uint32(cand)) {
		return Receipt{}, xerrors.Errorf("candidate %d: %w", cand, ErrInvalidProof)
	}

	rec := Record{
		Voter:       entry.Voter,
		Commitment:  entry.Commitment,
		Election:    id,
		Verified:    true,
		Height:      height,
		Candidate:   cand,
		Proof:       entry.Proof.Bytes,
		Fingerprint: c.Fingerprint(entry.Voter, id, entry.Commitment),
	}

	err = c.persist(snap, key, rec)
	if err != nil {
		return Receipt{}, err
	}

	c.exec.Logger().Info().
		Stringer("voter", entry.Voter).
		Stringer("election", id).
		Hex("fingerprint", rec.Fingerprint).
		Msg("proof verified")

	return Receipt{
		Accepted:    true,
		Height:      height,
		Candidate:   cand,
		Fingerprint: rec.Fingerprint,
	}, nil
}

func (c Contract) persist(snap store.Snapshot, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return xerrors.Errorf("failed to marshal record: %v", err)
	}

	err = snap.Set([]byte(key), data)
	if err != nil {
		return xerrors.Errorf("failed to set record: %v", err)
	}

	err = snap.Set([]byte(fmt.Sprintf(fingerprintKey, rec.Fingerprint)), []byte(key))
	if err != nil {
		return xerrors.Errorf("failed to set fingerprint: %v", err)
	}

	err = snap.Set([]byte(fmt.Sprintf(votedKey, rec.Election, rec.Voter)), []byte{1})
	if err != nil {
		return xerrors.Errorf("failed to set vote flag: %v", err)
	}

	ckey := fmt.Sprintf(counterKey, rec.Election, rec.Candidate)

	count, err := readUint(snap, ckey)
	if err != nil {
		return err
	}

	err = snap.Set([]byte(ckey), binary.BigEndian.AppendUint64(nil, count+1))
	if err != nil {
		return xerrors.Errorf("failed to set counter: %v", err)
	}

	return nil
}

func (c Contract) checkAuthority(r store.Readable) error {
	_, found, err := c.access.Get(r, c.authority)
	if err != nil {
		return err
	}

	if !found {
		return xerrors.Errorf("authority: %w", ErrAuthorityUnset)
	}

	return nil
}

func (c Contract) readConfig(r store.Readable) (Config, error) {
	data, err := r.Get([]byte(configKey))
	if err != nil {
		return Config{}, xerrors.Errorf("failed to read config: %v", err)
	}

	cfg := DefaultConfig()

	if data == nil {
		return cfg, nil
	}

	err = json.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	return cfg, nil
}

func (c Contract) writeConfig(snap store.Snapshot, cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return xerrors.Errorf("failed to marshal config: %v", err)
	}

	err = snap.Set([]byte(configKey), data)
	if err != nil {
		return xerrors.Errorf("failed to set config: %v", err)
	}

	return nil
}

func (c Contract) namespace(snap store.Snapshot) store.Snapshot {
	return prefixed.NewSnapshot(ContractName, snap)
}

func (c Contract) readable(r store.Readable) store.Readable {
	return prefixed.NewReadable(ContractName, r)
}

func hasVoted(r store.Readable, voter access.Identity, id election.ID) (bool, error) {
	value, err := r.Get([]byte(fmt.Sprintf(votedKey, id, voter)))
	if err != nil {
		return false, xerrors.Errorf("failed to read vote flag: %v", err)
	}

	return len(value) > 0, nil
}

func readRecord(r store.Readable, key string) (Record, bool, error) {
	data, err := r.Get([]byte(key))
	if err != nil {
		return Record{}, false, xerrors.Errorf("failed to read record: %v", err)
	}

	if data == nil {
		return Record{}, false, nil
	}

	var rec Record

	err = json.Unmarshal(data, &rec)
	if err != nil {
		return Record{}, false, xerrors.Errorf("failed to unmarshal record: %v", err)
	}

	return rec, true, nil
}

func readUint(r store.Readable, key string) (uint64, error) {
	value, err := r.Get([]byte(key))
	if err != nil {
		return 0, xerrors.Errorf("failed to read counter: %v", err)
	}

	if len(value) != 8 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(value), nil
}
