package main

import (
	"encoding/hex"
	"os"

	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/contracts/proofs"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/election"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// batchEntry is the representation of an entry in a batch file.
type batchEntry struct {
	Voter      string `yaml:"voter"`
	Election   uint64 `yaml:"election"`
	Candidate  uint32 `yaml:"candidate"`
	Proof      string `yaml:"proof"`
	Commitment string `yaml:"commitment"`
	IssuedAt   uint64 `yaml:"issuedAt"`
}

// proofsInitializer declares the commands of the proofs engine.
//
// - implements cli.Initializer
type proofsInitializer struct {
	action
}

// SetCommands implements cli.Initializer.
func (i proofsInitializer) SetCommands(provider cli.Provider) {
	cmd := provider.SetCommand("proofs")
	cmd.SetDescription("verify the vote proofs")

	sub := cmd.SetSubCommand("authority")
	sub.SetDescription("set the authority of the engine")
	sub.SetFlags(callerFlag, cli.StringFlag{
		Name:     "id",
		Usage:    "identity of the authority",
		Required: true,
	})
	sub.SetAction(i.authority)

	sub = cmd.SetSubCommand("limit")
	sub.SetDescription("set the maximum size of a batch")
	sub.SetFlags(callerFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "number of entries",
		Required: true,
	})
	sub.SetAction(i.limit)

	sub = cmd.SetSubCommand("expiry")
	sub.SetDescription("set the validity of a proof")
	sub.SetFlags(callerFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "number of blocks",
		Required: true,
	})
	sub.SetAction(i.expiry)

	sub = cmd.SetSubCommand("prove")
	sub.SetDescription("produce a proof for a candidate")
	sub.SetFlags(
		cli.Uint64Flag{
			Name:     "candidate",
			Usage:    "candidate of the proof",
			Required: true,
		},
		cli.StringFlag{
			Name:  "seed",
			Usage: "seed of the prover",
			Value: "zktally",
		},
	)
	sub.SetAction(i.prove)

	sub = cmd.SetSubCommand("verify")
	sub.SetDescription("verify and record the proof of a voter")
	sub.SetFlags(
		cli.StringFlag{
			Name:     "voter",
			Usage:    "identity of the voter",
			Required: true,
		},
		electionFlag,
		cli.Uint64Flag{
			Name:     "candidate",
			Usage:    "candidate claimed by the proof",
			Required: true,
		},
		cli.StringFlag{
			Name:     "proof",
			Usage:    "proof in hexadecimal",
			Required: true,
		},
		cli.StringFlag{
			Name:     "commitment",
			Usage:    "commitment of the ballot in hexadecimal",
			Required: true,
		},
		cli.Uint64Flag{
			Name:  "issued",
			Usage: "height at which the proof was produced",
		},
	)
	sub.SetAction(i.verify)

	sub = cmd.SetSubCommand("batch")
	sub.SetDescription("verify the proofs of a batch file")
	sub.SetFlags(cli.StringFlag{
		Name:     "file",
		Usage:    "path to the YAML list of entries",
		Required: true,
	})
	sub.SetAction(i.batch)

	sub = cmd.SetSubCommand("fingerprint")
	sub.SetDescription("print the fingerprint of a vote")
	sub.SetFlags(
		cli.StringFlag{
			Name:     "voter",
			Usage:    "identity of the voter",
			Required: true,
		},
		electionFlag,
		cli.StringFlag{
			Name:     "commitment",
			Usage:    "commitment of the ballot in hexadecimal",
			Required: true,
		},
	)
	sub.SetAction(i.fingerprint)

	sub = cmd.SetSubCommand("show")
	sub.SetDescription("print the counts of an election")
	sub.SetFlags(electionFlag, cli.StringFlag{
		Name:  "voter",
		Usage: "prints if the voter has voted",
	})
	sub.SetAction(i.show)

	sub = cmd.SetSubCommand("reset")
	sub.SetDescription("clear the counts of an election")
	sub.SetFlags(callerFlag, electionFlag)
	sub.SetAction(i.reset)
}

func (i proofsInitializer) authority(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.proofs.ConfigureAuthority(caller(flags), access.Identity(flags.String("id")))
		if err != nil {
			return xerrors.Errorf("failed to set authority: %v", err)
		}

		i.print("authority set")

		return nil
	})
}

func (i proofsInitializer) limit(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.proofs.ConfigureBatchLimit(caller(flags), flags.Uint64("value"))
		if err != nil {
			return xerrors.Errorf("failed to set batch limit: %v", err)
		}

		return i.printYAML(n.proofs.GetConfig())
	})
}

func (i proofsInitializer) expiry(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.proofs.ConfigureProofExpiry(caller(flags), flags.Uint64("value"))
		if err != nil {
			return xerrors.Errorf("failed to set proof expiry: %v", err)
		}

		return i.printYAML(n.proofs.GetConfig())
	})
}

func (i proofsInitializer) prove(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		prover, err := n.cfg.NewProver([]byte(flags.String("seed")))
		if err != nil {
			return xerrors.Errorf("failed to create prover: %v", err)
		}

		proof, err := prover.Prove(uint32(flags.Uint64("candidate")))
		if err != nil {
			return xerrors.Errorf("failed to prove: %v", err)
		}

		i.print("%x", proof)

		return nil
	})
}

func (i proofsInitializer) verify(flags cli.Flags) error {
	proof, err := decodeHex(flags, "proof")
	if err != nil {
		return err
	}

	commitment, err := decodeHex(flags, "commitment")
	if err != nil {
		return err
	}

	return i.run(flags, func(n *node) error {
		receipt, err := n.proofs.VerifyVoteProof(
			access.Identity(flags.String("voter")),
			electionID(flags),
			proofs.Proof{
				Candidate: election.Candidate(flags.Uint64("candidate")),
				Bytes:     proof,
				IssuedAt:  flags.Uint64("issued"),
			},
			commitment,
		)
		if err != nil {
			return xerrors.Errorf("failed to verify proof: %v", err)
		}

		i.print("accepted at height %d with fingerprint %x", receipt.Height, receipt.Fingerprint)

		return nil
	})
}

func (i proofsInitializer) batch(flags cli.Flags) error {
	entries, err := readBatch(flags.String("file"))
	if err != nil {
		return err
	}

	return i.run(flags, func(n *node) error {
		res, err := n.proofs.BatchVerifyProofs(entries)
		if err != nil {
			return xerrors.Errorf("batch failed after %d proof(s): %v", res.Verified, err)
		}

		for _, receipt := range res.Receipts {
			i.print("%x", receipt.Fingerprint)
		}

		return nil
	})
}

func (i proofsInitializer) fingerprint(flags cli.Flags) error {
	commitment, err := decodeHex(flags, "commitment")
	if err != nil {
		return err
	}

	return i.run(flags, func(n *node) error {
		fp := n.proofs.Fingerprint(access.Identity(flags.String("voter")), electionID(flags), commitment)

		i.print("%x", fp)

		return nil
	})
}

func (i proofsInitializer) show(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		id := electionID(flags)

		if flags.String("voter") != "" {
			voted := n.proofs.HasVoterVoted(access.Identity(flags.String("voter")), id)
			i.print("voted: %t", voted)
		}

		return i.printYAML(n.proofs.GetElectionTally(id))
	})
}

func (i proofsInitializer) reset(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.proofs.ResetElectionProofs(caller(flags), electionID(flags))
		if err != nil {
			return xerrors.Errorf("failed to reset: %v", err)
		}

		i.print("election %d reset", electionID(flags))

		return nil
	})
}

func readBatch(path string) ([]proofs.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read batch file: %v", err)
	}

	var raw []batchEntry

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal batch: %v", err)
	}

	entries := make([]proofs.Entry, len(raw))

	for i, e := range raw {
		proof, err := hex.DecodeString(e.Proof)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: failed to decode proof: %v", i, err)
		}

		commitment, err := hex.DecodeString(e.Commitment)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: failed to decode commitment: %v", i, err)
		}

		entries[i] = proofs.Entry{
			Voter:    access.Identity(e.Voter),
			Election: election.ID(e.Election),
			Proof: proofs.Proof{
				Candidate: election.Candidate(e.Candidate),
				Bytes:     proof,
				IssuedAt:  e.IssuedAt,
			},
			Commitment: commitment,
		}
	}

	return entries, nil
}
