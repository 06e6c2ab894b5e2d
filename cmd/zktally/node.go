package main

import (
	"encoding/binary"

	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/config"
	"go.dedis.ch/zktally/contracts/audit"
	"go.dedis.ch/zktally/contracts/proofs"
	"go.dedis.ch/zktally/contracts/tally"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/store"
	"go.dedis.ch/zktally/core/store/kv"
	"go.dedis.ch/zktally/core/store/prefixed"
	"golang.org/x/xerrors"
)

const (
	bucketName = "zktally"
	nodePrefix = "node"
	heightKey  = "height"
)

// node is the set of engines sharing the database of the command line.
type node struct {
	cfg    config.Config
	db     store.DB
	clock  *clock.Manual
	proofs proofs.Contract
	tally  tally.Contract
	audit  audit.Contract
}

type opener func(cli.Flags) (*node, error)

// openNode loads the configuration, opens the database and creates the
// engines at the height stored in the database.
func openNode(flags cli.Flags) (*node, error) {
	cfg := config.Default()

	path := flags.String("config")
	if path != "" {
		var err error

		cfg, err = config.Load(path)
		if err != nil {
			return nil, xerrors.Errorf("failed to load config: %v", err)
		}
	}

	if flags.String("db") != "" {
		cfg.Database = flags.String("db")
	}

	bolt, err := kv.New(cfg.Database)
	if err != nil {
		return nil, xerrors.Errorf("failed to open database: %v", err)
	}

	db := kv.NewStore(bolt, []byte(bucketName))

	n, err := newNode(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return n, nil
}

func newNode(cfg config.Config, db store.DB) (*node, error) {
	var height uint64

	err := db.View(func(r store.Readable) error {
		value, err := prefixed.NewReadable(nodePrefix, r).Get([]byte(heightKey))
		if err != nil {
			return err
		}

		if len(value) == 8 {
			height = binary.BigEndian.Uint64(value)
		}

		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read height: %v", err)
	}

	verifier, err := cfg.NewVerifier()
	if err != nil {
		return nil, xerrors.Errorf("failed to create verifier: %v", err)
	}

	hashFac, err := cfg.NewHashFactory()
	if err != nil {
		return nil, xerrors.Errorf("failed to create hash factory: %v", err)
	}

	scheme, err := cfg.NewScheme()
	if err != nil {
		return nil, xerrors.Errorf("failed to create scheme: %v", err)
	}

	c := clock.NewManual(height)
	registry := cfg.NewRegistry(c)

	n := &node{
		cfg:   cfg,
		db:    db,
		clock: c,
	}

	n.proofs = proofs.NewContract(db, c, registry, registry,
		proofs.WithVerifier(verifier),
		proofs.WithHashFactory(hashFac))

	n.tally = tally.NewContract(db, c, registry, n.proofs,
		tally.WithScheme(scheme),
		tally.WithLogCapacity(cfg.TallyLogCapacity))

	n.audit = audit.NewContract(db, c, registry, n.tally, n.proofs,
		audit.WithLogCapacity(cfg.AuditLogCapacity))

	return n, nil
}

// advance moves the height forward and stores it.
func (n *node) advance(blocks uint64) (uint64, error) {
	height := n.clock.GetHeight() + blocks

	err := n.db.Update(func(snap store.Snapshot) error {
		return prefixed.NewSnapshot(nodePrefix, snap).
			Set([]byte(heightKey), binary.BigEndian.AppendUint64(nil, height))
	})
	if err != nil {
		return 0, xerrors.Errorf("failed to store height: %v", err)
	}

	n.clock.Advance(blocks)

	return height, nil
}

func (n *node) Close() error {
	return n.db.Close()
}
