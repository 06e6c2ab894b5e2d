// Package tally implements the aggregation engine of the tally.
//
// The admin initializes the tally of an election with its candidates, then
// aggregates the verified proofs of each candidate into a homomorphic
// accumulator. Publishing combines the accumulators of every candidate and
// freezes the tally: nothing leaves the published state.
//
//	Uninitialized -> Initialized -> Published
//	Initialized -> Uninitialized (reset)
package tally

import (
	"encoding/json"
	"fmt"

	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/access/latch"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/execution"
	"go.dedis.ch/zktally/core/journal"
	"go.dedis.ch/zktally/core/store"
	"go.dedis.ch/zktally/core/store/prefixed"
	"go.dedis.ch/zktally/crypto/homomorphic"
	"golang.org/x/xerrors"
)

// ContractName is the name of the contract, which is also the namespace of its
// keys in the store.
const ContractName = "tally"

// DefaultLogCapacity is the number of entries of the tally log of an
// election.
const DefaultLogCapacity = 256

// Actions of the tally log.
const (
	ActionInitialize = "INITIALIZE"
	ActionAggregate  = "AGGREGATE"
	ActionPublish    = "PUBLISH"
	ActionReset      = "RESET"
)

const (
	configKey    = "config"
	tallyKey     = "tally:%d"
	aggregateKey = "aggregate:%d:%d"
)

// Contract is the tally aggregation engine.
type Contract struct {
	exec      execution.Executor
	access    latch.Service
	admin     access.Credential
	clock     clock.Clock
	elections election.Source
	oracle    AggregateVerifier
	scheme    homomorphic.Scheme
	log       journal.Journal
}

// Option is the type of option to create a contract.
type Option func(*Contract)

// WithScheme sets the accumulator scheme. The default is the hash chain.
func WithScheme(s homomorphic.Scheme) Option {
	return func(c *Contract) {
		c.scheme = s
	}
}

// WithLogCapacity sets the capacity of the tally log of each election.
func WithLogCapacity(n uint64) Option {
	return func(c *Contract) {
		c.log = journal.New("log", n)
	}
}

// NewContract creates a new tally aggregation engine on top of the database.
func NewContract(db store.DB, c clock.Clock, elections election.Source,
	oracle AggregateVerifier, opts ...Option) Contract {

	contract := Contract{
		exec:      execution.NewExecutor(db, ContractName),
		access:    latch.NewService(),
		admin:     access.NewRoleCreds(ContractName, "admin"),
		clock:     c,
		elections: elections,
		oracle:    oracle,
		scheme:    homomorphic.NewHashChain(),
		log:       journal.New("log", DefaultLogCapacity),
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

// SetMaxCandidates sets the maximum number of candidates of an election.
func (c Contract) SetMaxCandidates(caller access.Identity, n uint64) error {
	return c.configure("setMaxCandidates", caller, n, func(cfg *Config) {
		cfg.MaxCandidates = n
	})
}

// SetPrecisionThreshold sets the minimum number of proofs of an aggregation.
func (c Contract) SetPrecisionThreshold(caller access.Identity, n uint64) error {
	return c.configure("setPrecisionThreshold", caller, n, func(cfg *Config) {
		cfg.PrecisionThreshold = n
	})
}

func (c Contract) configure(op string, caller access.Identity, value uint64, fn func(*Config)) error {
	return c.exec.Update(op, func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("%s: %w", op, err)
		}

		if value == 0 {
			return xerrors.Errorf("%s: %w", op, ErrInvalidConfig)
		}

		cfg, err := readConfig(snap)
		if err != nil {
			return err
		}

		fn(&cfg)

		return writeJSON(snap, configKey, cfg)
	})
}

// InitializeElectionTally creates the tally of the election for the
// candidates, with an empty accumulator for each of them.
func (c Contract) InitializeElectionTally(caller access.Identity, id election.ID,
	candidates []election.Candidate) error {

	return c.exec.Update("initializeElectionTally", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("initialize: %w", err)
		}

		if !c.elections.IsActive(id) {
			return xerrors.Errorf("election %v: %w", id, ErrElectionInactive)
		}

		cfg, err := readConfig(snap)
		if err != nil {
			return err
		}

		err = checkCandidates(candidates, cfg.MaxCandidates)
		if err != nil {
			return err
		}

		tally, found, err := readTally(snap, id)
		if err != nil {
			return err
		}

		if found && tally.Published {
			return xerrors.Errorf("election %v: %w", id, ErrAlreadyPublished)
		}

		if found {
			return xerrors.Errorf("election %v: %w", id, ErrAlreadyInitialized)
		}

		height := c.clock.GetHeight()

		tally = ElectionTally{
			Election:     id,
			Candidates:   append([]election.Candidate{}, candidates...),
			Accumulators: make(map[election.Candidate][]byte, len(candidates)),
			LastUpdate:   height,
		}

		for _, cand := range candidates {
			tally.Accumulators[cand] = c.scheme.Empty()
		}

		err = writeJSON(snap, fmt.Sprintf(tallyKey, id), tally)
		if err != nil {
			return err
		}

		return c.record(snap, id, ActionInitialize, []byte(fmt.Sprint(candidates)), height)
	})
}

// AggregateCandidateProofs folds a batch of verified proofs into the
// accumulator of the candidate.
func (c Contract) AggregateCandidateProofs(caller access.Identity, id election.ID,
	cand election.Candidate, count uint64) error {

	return c.exec.Update("aggregateCandidateProofs", func(raw store.Snapshot) error {
		snap := c.namespace(raw)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("aggregate: %w", err)
		}

		tally, err := c.getUnpublished(snap, id)
		if err != nil {
			return err
		}

		if !contains(tally.Candidates, cand) {
			return xerrors.Errorf("candidate %d: %w", cand, ErrUnknownCandidate)
		}

		cfg, err := readConfig(snap)
		if err != nil {
			return err
		}

		if count < cfg.PrecisionThreshold {
			return xerrors.Errorf("%d proofs for a threshold of %d: %w",
				count, cfg.PrecisionThreshold, ErrInsufficientProofs)
		}

		ok, err := c.oracle.VerifyAggregate(raw, id, cand)
		if err != nil {
			return xerrors.Errorf("failed to verify aggregate: %v", err)
		}

		if !ok {
			return xerrors.Errorf("candidate %d: %w", cand, ErrAggregateRejected)
		}

		agg, err := c.readAggregate(snap, id, cand)
		if err != nil {
			return err
		}

		total := agg.Count + count
		if total > MaxCount || total < agg.Count {
			return xerrors.Errorf("%d proofs: %w", total, ErrOverflow)
		}

		acc, err := c.scheme.Fold(agg.Accumulator, uint32(cand), count, total)
		if err != nil {
			return xerrors.Errorf("fold %v: %w", err, ErrHomomorphicFailure)
		}

		height := c.clock.GetHeight()

		agg.Count = total
		agg.Accumulator = acc
		agg.Verified = true
		agg.LastUpdate = height

		err = writeJSON(snap, fmt.Sprintf(aggregateKey, id, cand), agg)
		if err != nil {
			return err
		}

		tally.Accumulators[cand] = acc
		tally.LastUpdate = height

		err = writeJSON(snap, fmt.Sprintf(tallyKey, id), tally)
		if err != nil {
			return err
		}

		return c.record(snap, id, ActionAggregate, []byte(fmt.Sprintf("%d:%d", cand, total)), height)
	})
}

// PublishEncryptedTally combines the accumulators of every candidate and
// publishes the result. A tally is published only once.
func (c Contract) PublishEncryptedTally(caller access.Identity, id election.ID) error {
	return c.exec.Update("publishEncryptedTally", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("publish: %w", err)
		}

		tally, err := c.getUnpublished(snap, id)
		if err != nil {
			return err
		}

		combined := c.scheme.Empty()

		for _, cand := range tally.Candidates {
			agg, err := c.readAggregate(snap, id, cand)
			if err != nil {
				return err
			}

			if agg.Count == 0 {
				return xerrors.Errorf("candidate %d: %w", cand, ErrInsufficientProofs)
			}

			combined, err = c.scheme.Combine(combined, agg.Accumulator)
			if err != nil {
				return xerrors.Errorf("combine %v: %w", err, ErrHomomorphicFailure)
			}
		}

		result, err := c.scheme.Seal(combined)
		if err != nil {
			return xerrors.Errorf("seal %v: %w", err, ErrHomomorphicFailure)
		}

		height := c.clock.GetHeight()

		tally.Published = true
		tally.Result = result
		tally.LastUpdate = height

		err = writeJSON(snap, fmt.Sprintf(tallyKey, id), tally)
		if err != nil {
			return err
		}

		err = c.record(snap, id, ActionPublish, result, height)
		if err != nil {
			return err
		}

		c.exec.Logger().Info().
			Stringer("election", id).
			Hex("result", result).
			Msg("tally published")

		return nil
	})
}

// ResetElectionTally removes the tally and the aggregates of the election. It
// is possible only before the publication.
func (c Contract) ResetElectionTally(caller access.Identity, id election.ID) error {
	return c.exec.Update("resetElectionTally", func(snap store.Snapshot) error {
		snap = c.namespace(snap)

		err := c.access.Match(snap, c.admin, caller)
		if err != nil {
			return xerrors.Errorf("reset: %w", err)
		}

		tally, err := c.getUnpublished(snap, id)
		if err != nil {
			return err
		}

		for _, cand := range tally.Candidates {
			err = snap.Delete([]byte(fmt.Sprintf(aggregateKey, id, cand)))
			if err != nil {
				return xerrors.Errorf("failed to delete aggregate: %v", err)
			}
		}

		err = snap.Delete([]byte(fmt.Sprintf(tallyKey, id)))
		if err != nil {
			return xerrors.Errorf("failed to delete tally: %v", err)
		}

		return c.record(snap, id, ActionReset, nil, c.clock.GetHeight())
	})
}

// ValidateTallyIntegrity sums the counts of the candidates of the election and
// compares the total with the precision threshold.
func (c Contract) ValidateTallyIntegrity(id election.ID) Integrity {
	var res Integrity

	c.exec.View(func(r store.Readable) error {
		r = c.readable(r)

		cfg, err := readConfig(r)
		if err != nil {
			return err
		}

		res.Threshold = cfg.PrecisionThreshold

		counts, err := c.results(r, id)
		if err != nil {
			return err
		}

		for _, count := range counts {
			res.Total += count
		}

		res.Passed = counts != nil && res.Total >= res.Threshold

		return nil
	})

	return res
}

// GetElectionTally returns the tally of the election, if it is initialized.
func (c Contract) GetElectionTally(id election.ID) (ElectionTally, bool) {
	var tally ElectionTally
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		tally, found, err = readTally(c.readable(r), id)
		return err
	})

	return tally, found
}

// GetAggregate returns the aggregate of the candidate, if at least one batch
// has been aggregated.
func (c Contract) GetAggregate(id election.ID, cand election.Candidate) (Aggregate, bool) {
	var agg Aggregate
	var found bool

	c.exec.View(func(r store.Readable) error {
		var err error
		found, err = readJSON(c.readable(r), fmt.Sprintf(aggregateKey, id, cand), &agg)
		return err
	})

	return agg, found
}

// GetLog returns the entries of the tally log of the election.
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

// IsPublished returns true if the tally of the election is published.
func (c Contract) IsPublished(r store.Readable, id election.ID) (bool, error) {
	tally, found, err := readTally(c.readable(r), id)
	if err != nil {
		return false, err
	}

	return found && tally.Published, nil
}

// Results returns the count of each candidate of a published tally, in the
// order of the candidates.
func (c Contract) Results(r store.Readable, id election.ID) ([]uint64, error) {
	r = c.readable(r)

	tally, found, err := readTally(r, id)
	if err != nil {
		return nil, err
	}

	if !found || !tally.Published {
		return nil, xerrors.Errorf("election %v: %w", id, ErrNotPublished)
	}

	return c.results(r, id)
}

func (c Contract) results(r store.Readable, id election.ID) ([]uint64, error) {
	tally, found, err := readTally(r, id)
	if err != nil || !found {
		return nil, err
	}

	counts := make([]uint64, len(tally.Candidates))

	for i, cand := range tally.Candidates {
		agg, err := c.readAggregate(r, id, cand)
		if err != nil {
			return nil, err
		}

		counts[i] = agg.Count
	}

	return counts, nil
}

func (c Contract) getUnpublished(r store.Readable, id election.ID) (ElectionTally, error) {
	tally, found, err := readTally(r, id)
	if err != nil {
		return tally, err
	}

	if !found {
		return tally, xerrors.Errorf("election %v: %w", id, ErrNotInitialized)
	}

	if tally.Published {
		return tally, xerrors.Errorf("election %v: %w", id, ErrAlreadyPublished)
	}

	return tally, nil
}

func (c Contract) readAggregate(r store.Readable, id election.ID, cand election.Candidate) (Aggregate, error) {
	agg := Aggregate{
		Candidate:   cand,
		Accumulator: c.scheme.Empty(),
	}

	_, err := readJSON(r, fmt.Sprintf(aggregateKey, id, cand), &agg)
	if err != nil {
		return Aggregate{}, err
	}

	return agg, nil
}

// record appends an entry to the tally log. A full log does not prevent the
// operation.
func (c Contract) record(snap store.Snapshot, id election.ID, action string, detail []byte, height uint64) error {
	_, err := c.log.Append(snap, id, action, detail, height)
	if xerrors.Is(err, journal.ErrFull) {
		c.exec.Logger().Warn().
			Stringer("election", id).
			Str("action", action).
			Msg("tally log is full")

		return nil
	}

	if err != nil {
		return xerrors.Errorf("failed to append log: %v", err)
	}

	return nil
}

func (c Contract) namespace(snap store.Snapshot) store.Snapshot {
	return prefixed.NewSnapshot(ContractName, snap)
}

func (c Contract) readable(r store.Readable) store.Readable {
	return prefixed.NewReadable(ContractName, r)
}

func checkCandidates(candidates []election.Candidate, max uint64) error {
	if len(candidates) == 0 || uint64(len(candidates)) > max {
		return xerrors.Errorf("%d candidates for a maximum of %d: %w",
			len(candidates), max, ErrInvalidCandidates)
	}

	seen := make(map[election.Candidate]struct{}, len(candidates))

	for _, cand := range candidates {
		if cand == 0 {
			return xerrors.Errorf("candidate 0: %w", ErrInvalidCandidates)
		}

		_, found := seen[cand]
		if found {
			return xerrors.Errorf("duplicate candidate %d: %w", cand, ErrInvalidCandidates)
		}

		seen[cand] = struct{}{}
	}

	return nil
}

func contains(candidates []election.Candidate, cand election.Candidate) bool {
	for _, c := range candidates {
		if c == cand {
			return true
		}
	}

	return false
}

func readTally(r store.Readable, id election.ID) (ElectionTally, bool, error) {
	var tally ElectionTally

	found, err := readJSON(r, fmt.Sprintf(tallyKey, id), &tally)
	if err != nil {
		return ElectionTally{}, false, err
	}

	return tally, found, nil
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
