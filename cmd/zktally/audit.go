package main

import (
	"encoding/hex"

	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/contracts/audit"
	"go.dedis.ch/zktally/core/access"
	"golang.org/x/xerrors"
)

// auditView is the printable state of an audit.
type auditView struct {
	Record   audit.Record `yaml:"record"`
	Disputes []string     `yaml:"disputes,omitempty"`
	Log      []logView    `yaml:"log"`
}

// auditInitializer declares the commands of the audit engine.
//
// - implements cli.Initializer
type auditInitializer struct {
	action
}

// SetCommands implements cli.Initializer.
func (i auditInitializer) SetCommands(provider cli.Provider) {
	cmd := provider.SetCommand("audit")
	cmd.SetDescription("audit the published tally and handle disputes")

	sub := cmd.SetSubCommand("admin")
	sub.SetDescription("set the admin of the engine")
	sub.SetFlags(callerFlag, cli.StringFlag{
		Name:     "id",
		Usage:    "identity of the admin",
		Required: true,
	})
	sub.SetAction(i.admin)

	sub = cmd.SetSubCommand("window")
	sub.SetDescription("set the number of blocks during which voters can check an audit")
	sub.SetFlags(callerFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "number of blocks",
		Required: true,
	})
	sub.SetAction(i.window)

	sub = cmd.SetSubCommand("perform")
	sub.SetDescription("replay the verification of the fingerprints and audit the election")
	sub.SetFlags(callerFlag, electionFlag, cli.StringSliceFlag{
		Name:  "fingerprint",
		Usage: "fingerprint in hexadecimal",
	})
	sub.SetAction(i.perform)

	sub = cmd.SetSubCommand("dispute")
	sub.SetDescription("raise a dispute against an audited election")
	sub.SetFlags(callerFlag, electionFlag,
		cli.StringFlag{
			Name:     "reason",
			Usage:    "reason of the dispute",
			Required: true,
		},
		cli.StringFlag{
			Name:     "evidence",
			Usage:    "evidence in hexadecimal",
			Required: true,
		},
		cli.Uint64Flag{
			Name:     "timestamp",
			Usage:    "height at which the dispute was raised",
			Required: true,
		},
	)
	sub.SetAction(i.dispute)

	sub = cmd.SetSubCommand("resolve")
	sub.SetDescription("resolve a pending dispute")
	sub.SetFlags(callerFlag, electionFlag,
		cli.Uint64Flag{
			Name:     "dispute",
			Usage:    "identifier of the dispute",
			Required: true,
		},
		cli.StringFlag{
			Name:  "resolution",
			Usage: "resolution of the dispute",
			Value: string(audit.StatusAccepted),
		},
	)
	sub.SetAction(i.resolve)

	sub = cmd.SetSubCommand("release")
	sub.SetDescription("release the final results of an election")
	sub.SetFlags(callerFlag, electionFlag, cli.StringSliceFlag{
		Name:     "result",
		Usage:    "result of a candidate",
		Required: true,
	})
	sub.SetAction(i.release)

	sub = cmd.SetSubCommand("check")
	sub.SetDescription("tell if a voter can check the audit of an election")
	sub.SetFlags(electionFlag, cli.StringFlag{
		Name:     "voter",
		Usage:    "identity of the voter",
		Required: true,
	})
	sub.SetAction(i.check)

	sub = cmd.SetSubCommand("show")
	sub.SetDescription("print the audit of an election")
	sub.SetFlags(electionFlag)
	sub.SetAction(i.show)
}

func (i auditInitializer) admin(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.audit.SetAdmin(caller(flags), access.Identity(flags.String("id")))
		if err != nil {
			return xerrors.Errorf("failed to set admin: %v", err)
		}

		i.print("admin set")

		return nil
	})
}

func (i auditInitializer) window(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		err := n.audit.SetTimeoutWindow(caller(flags), flags.Uint64("value"))
		if err != nil {
			return xerrors.Errorf("failed to set window: %v", err)
		}

		return i.printYAML(n.audit.GetConfig())
	})
}

func (i auditInitializer) perform(flags cli.Flags) error {
	values := flags.StringSlice("fingerprint")

	fps := make([][]byte, len(values))
	for j, value := range values {
		fp, err := hex.DecodeString(value)
		if err != nil {
			return xerrors.Errorf("failed to decode fingerprint: %v", err)
		}

		fps[j] = fp
	}

	return i.run(flags, func(n *node) error {
		rec, err := n.audit.PerformAudit(caller(flags), electionID(flags), fps)
		if err != nil {
			return xerrors.Errorf("failed to audit: %v", err)
		}

		return i.printYAML(rec)
	})
}

func (i auditInitializer) dispute(flags cli.Flags) error {
	evidence, err := decodeHex(flags, "evidence")
	if err != nil {
		return err
	}

	return i.run(flags, func(n *node) error {
		disputeID, err := n.audit.RaiseDispute(caller(flags), electionID(flags),
			flags.String("reason"), evidence, flags.Uint64("timestamp"))
		if err != nil {
			return xerrors.Errorf("failed to raise dispute: %v", err)
		}

		i.print("dispute %d raised", disputeID)

		return nil
	})
}

func (i auditInitializer) resolve(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		disputeID := flags.Uint64("dispute")

		err := n.audit.ResolveDispute(caller(flags), electionID(flags), disputeID,
			audit.Status(flags.String("resolution")))
		if err != nil {
			return xerrors.Errorf("failed to resolve dispute: %v", err)
		}

		i.print("dispute %d resolved", disputeID)

		return nil
	})
}

func (i auditInitializer) release(flags cli.Flags) error {
	results, err := parseUints(flags.StringSlice("result"))
	if err != nil {
		return err
	}

	return i.run(flags, func(n *node) error {
		err := n.audit.ReleaseFinalResults(caller(flags), electionID(flags), results)
		if err != nil {
			return xerrors.Errorf("failed to release: %v", err)
		}

		i.print("results of election %d released", electionID(flags))

		return nil
	})
}

func (i auditInitializer) check(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		eligible, err := n.audit.CheckAuditEligibility(access.Identity(flags.String("voter")), electionID(flags))
		if err != nil {
			return xerrors.Errorf("failed to check eligibility: %v", err)
		}

		i.print("eligible: %t", eligible)

		return nil
	})
}

func (i auditInitializer) show(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		id := electionID(flags)

		rec, found := n.audit.GetAuditRecord(id)
		if !found {
			return xerrors.Errorf("audit of election %d not found", id)
		}

		view := auditView{
			Record: rec,
			Log:    makeLogView(n.audit.GetLog(id)),
		}

		for j := uint64(1); j <= rec.Disputes; j++ {
			dispute, found := n.audit.GetDispute(id, j)
			if found {
				view.Disputes = append(view.Disputes, dispute.Reason+" ("+string(dispute.Status)+")")
			}
		}

		return i.printYAML(view)
	})
}
