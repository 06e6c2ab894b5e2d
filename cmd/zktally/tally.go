package main

import (
	"encoding/hex"

	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/contracts/tally"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/journal"
	"go.dedis.ch/zktally/core/store"
	"golang.org/x/xerrors"
)

// tallyView is the printable state of a tally.
type tallyView struct {
	Election   uint64            `yaml:"election"`
	Published  bool              `yaml:"published"`
	LastUpdate uint64            `yaml:"lastUpdate"`
	Counts     map[uint32]uint64 `yaml:"counts"`
	Result     string            `yaml:"result,omitempty"`
	Results    []uint64          `yaml:"results,omitempty"`
	Integrity  tally.Integrity   `yaml:"integrity"`
	Log        []logView         `yaml:"log"`
}

type logView struct {
	Slot     uint64 `yaml:"slot"`
	Action   string `yaml:"action"`
	Height   uint64 `yaml:"height"`
	Resolved bool   `yaml:"resolved,omitempty"`
}

// tallyInitializer declares the commands of the tally engine.
//
// - implements cli.Initializer
type tallyInitializer struct {
	action
}

// SetCommands implements cli.Initializer.
func (i tallyInitializer) SetCommands(provider cli.Provider) {
	cmd := provider.SetCommand("tally")
	cmd.SetDescription("aggregate and publish the tally")

	sub := cmd.SetSubCommand("admin")
	sub.SetDescription("set the admin of the engine")
	sub.SetFlags(callerFlag, cli.StringFlag{
		Name:     "id",
		Usage:    "identity of the admin",
		Required: true,
	})
	sub.SetAction(i.admin)

	sub = cmd.SetSubCommand("candidates")
	sub.SetDescription("set the maximum number of candidates")
	sub.SetFlags(callerFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "number of candidates",
		Required: true,
	})
	sub.SetAction(i.candidates)

	sub = cmd.SetSubCommand("threshold")
	sub.SetDescription("set the minimum number of proofs of an aggregation")
	sub.SetFlags(callerFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "number of proofs",
		Required: true,
	})
	sub.SetAction(i.threshold)

	sub = cmd.SetSubCommand("init")
	sub.SetDescription("initialize the tally of an election")
	sub.SetFlags(callerFlag, electionFlag, cli.StringSliceFlag{
		Name:     "candidate",
		Usage:    "candidate of the election",
		Required: true,
	})
	sub.SetAction(i.initialize)

	sub = cmd.SetSubCommand("aggregate")
	sub.SetDescription("fold verified proofs into the accumulator of a candidate")
	sub.SetFlags(callerFlag, electionFlag,
		cli.Uint64Flag{
			Name:     "candidate",
			Usage:    "candidate of the aggregation",
			Required: true,
		},
		cli.Uint64Flag{
			Name:     "count",
			Usage:    "number of proofs",
			Required: true,
		},
	)
	sub.SetAction(i.aggregate)

	sub = cmd.SetSubCommand("publish")
	sub.SetDescription("publish the tally of an election")
	sub.SetFlags(callerFlag, electionFlag)
	sub.SetAction(i.publish)

	sub = cmd.SetSubCommand("reset")
	sub.SetDescription("clear an unpublished tally")
	sub.SetFlags(callerFlag, electionFlag)
	sub.SetAction(i.reset)

	sub = cmd.SetSubCommand("show")
	sub.SetDescription("print the tally of an election")
	sub.SetFlags(electionFlag)
	sub.SetAction(i.show)
}

func (i tallyInitializer) admin(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.tally.SetAdmin(caller(flags), access.Identity(flags.String("id")))
		if err != nil {
			return xerrors.Errorf("failed to set admin: %v", err)
		}

		i.print("admin set")

		return nil
	})
}

func (i tallyInitializer) candidates(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.tally.SetMaxCandidates(caller(flags), flags.Uint64("value"))
		if err != nil {
			return xerrors.Errorf("failed to set max candidates: %v", err)
		}

		return i.printYAML(n.tally.GetConfig())
	})
}

func (i tallyInitializer) threshold(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.tally.SetPrecisionThreshold(caller(flags), flags.Uint64("value"))
		if err != nil {
			return xerrors.Errorf("failed to set threshold: %v", err)
		}

		return i.printYAML(n.tally.GetConfig())
	})
}

func (i tallyInitializer) initialize(flags cli.Flags) error {
	values, err := parseUints(flags.StringSlice("candidate"))
	if err != nil {
		return err
	}

	candidates := make([]election.Candidate, len(values))
	for j, value := range values {
		candidates[j] = election.Candidate(value)
	}

	return i.run(flags, func(n *node) error {
		err := n.tally.InitializeElectionTally(caller(flags), electionID(flags), candidates)
		if err != nil {
			return xerrors.Errorf("failed to initialize: %v", err)
		}

		i.print("tally of election %d initialized", electionID(flags))

		return nil
	})
}

func (i tallyInitializer) aggregate(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		cand := election.Candidate(flags.Uint64("candidate"))

		err := n.tally.AggregateCandidateProofs(caller(flags), electionID(flags), cand, flags.Uint64("count"))
		if err != nil {
			return xerrors.Errorf("failed to aggregate: %v", err)
		}

		agg, _ := n.tally.GetAggregate(electionID(flags), cand)
		i.print("candidate %d has %d proof(s)", cand, agg.Count)

		return nil
	})
}

func (i tallyInitializer) publish(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.tally.PublishEncryptedTally(caller(flags), electionID(flags))
		if err != nil {
			return xerrors.Errorf("failed to publish: %v", err)
		}

		t, _ := n.tally.GetElectionTally(electionID(flags))
		i.print("%x", t.Result)

		return nil
	})
}

func (i tallyInitializer) reset(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.tally.ResetElectionTally(caller(flags), electionID(flags))
		if err != nil {
			return xerrors.Errorf("failed to reset: %v", err)
		}

		i.print("tally of election %d reset", electionID(flags))

		return nil
	})
}

func (i tallyInitializer) show(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		id := electionID(flags)

		t, found := n.tally.GetElectionTally(id)
		if !found {
			return xerrors.Errorf("tally of election %d not found", id)
		}

		view := tallyView{
			Election:   uint64(id),
			Published:  t.Published,
			LastUpdate: t.LastUpdate,
			Counts:     make(map[uint32]uint64),
			Integrity:  n.tally.ValidateTallyIntegrity(id),
			Log:        makeLogView(n.tally.GetLog(id)),
		}

		for _, cand := range t.Candidates {
			agg, _ := n.tally.GetAggregate(id, cand)
			view.Counts[uint32(cand)] = agg.Count
		}

		if t.Published {
			view.Result = hex.EncodeToString(t.Result)

			err := n.db.View(func(r store.Readable) error {
				var err error
				view.Results, err = n.tally.Results(r, id)
				return err
			})
			if err != nil {
				return xerrors.Errorf("failed to read results: %v", err)
			}
		}

		return i.printYAML(view)
	})
}

func makeLogView(entries []journal.Entry) []logView {
	views := make([]logView, len(entries))

	for i, e := range entries {
		views[i] = logView{
			Slot:     e.Slot,
			Action:   e.Action,
			Height:   e.Height,
			Resolved: e.Resolved,
		}
	}

	return views
}
