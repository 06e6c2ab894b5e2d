// Package config loads the configuration of the command line from a YAML
// file.
//
//	database: zktally.db
//	verifier: digest
//	fingerprint: sha256
//	scheme:
//	  name: elgamal
//	  publicKey: 5f1c...
//	tallyLogCapacity: 256
//	auditLogCapacity: 100
//	elections:
//	  - id: 1
//	    start: 0
//	    end: 1000
//	    voters: [alice, bob]
//
// The parameters of the engines that are changed by their authority, like the
// batch limit, are not part of the file as they live in the database.
package config

import (
	"encoding/hex"
	"os"

	"go.dedis.ch/zktally/contracts/audit"
	"go.dedis.ch/zktally/contracts/tally"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/clock"
	"go.dedis.ch/zktally/core/election"
	"go.dedis.ch/zktally/core/election/static"
	"go.dedis.ch/zktally/crypto"
	"go.dedis.ch/zktally/crypto/homomorphic"
	"go.dedis.ch/zktally/crypto/zkp"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Names of the verifiers.
const (
	VerifierDigest = "digest"
	VerifierDLEQ   = "dleq"
)

// Names of the accumulator schemes.
const (
	SchemeHashChain = "hashchain"
	SchemeElGamal   = "elgamal"
)

// Config is the configuration of the command line.
type Config struct {
	Database         string     `yaml:"database"`
	Verifier         string     `yaml:"verifier"`
	Fingerprint      string     `yaml:"fingerprint"`
	Scheme           Scheme     `yaml:"scheme"`
	TallyLogCapacity uint64     `yaml:"tallyLogCapacity"`
	AuditLogCapacity uint64     `yaml:"auditLogCapacity"`
	Elections        []Election `yaml:"elections"`
}

// Scheme is the selection of the accumulator scheme.
type Scheme struct {
	Name string `yaml:"name"`

	// PublicKey is the hexadecimal encoding of the ElGamal public key.
	PublicKey string `yaml:"publicKey"`
}

// Election is the description of an election.
type Election struct {
	ID     uint64   `yaml:"id"`
	Start  uint64   `yaml:"start"`
	End    uint64   `yaml:"end"`
	Voters []string `yaml:"voters"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Database:         "zktally.db",
		Verifier:         VerifierDigest,
		Fingerprint:      crypto.Sha256.String(),
		Scheme:           Scheme{Name: SchemeHashChain},
		TallyLogCapacity: tally.DefaultLogCapacity,
		AuditLogCapacity: audit.DefaultLogCapacity,
	}
}

// Load reads and parses the file. Missing values take their default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to read config file: %v", err)
	}

	return Parse(data)
}

// Parse parses the YAML document.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if c.Database == "" {
		return xerrors.New("missing database path")
	}

	switch c.Verifier {
	case VerifierDigest, VerifierDLEQ:
	default:
		return xerrors.Errorf("unknown verifier '%s'", c.Verifier)
	}

	_, err := crypto.ParseHashAlgorithm(c.Fingerprint)
	if err != nil {
		return err
	}

	switch c.Scheme.Name {
	case SchemeHashChain:
	case SchemeElGamal:
		if c.Scheme.PublicKey == "" {
			return xerrors.New("missing public key of the scheme")
		}
	default:
		return xerrors.Errorf("unknown scheme '%s'", c.Scheme.Name)
	}

	if c.TallyLogCapacity == 0 || c.AuditLogCapacity == 0 {
		return xerrors.New("log capacity must be positive")
	}

	seen := make(map[uint64]struct{}, len(c.Elections))

	for _, e := range c.Elections {
		_, found := seen[e.ID]
		if found {
			return xerrors.Errorf("duplicate election %d", e.ID)
		}

		seen[e.ID] = struct{}{}

		if e.End != 0 && e.End < e.Start {
			return xerrors.Errorf("election %d ends before it starts", e.ID)
		}
	}

	return nil
}

// NewRegistry returns the election registry evaluated against the clock.
func (c Config) NewRegistry(cl clock.Clock) static.Registry {
	elections := make([]static.Election, len(c.Elections))

	for i, e := range c.Elections {
		voters := make([]access.Identity, len(e.Voters))
		for j, v := range e.Voters {
			voters[j] = access.Identity(v)
		}

		elections[i] = static.Election{
			ID:     election.ID(e.ID),
			Start:  e.Start,
			End:    e.End,
			Voters: voters,
		}
	}

	return static.NewRegistry(cl, elections...)
}

// NewVerifier returns the verifier of the proofs.
func (c Config) NewVerifier() (zkp.Verifier, error) {
	switch c.Verifier {
	case VerifierDigest:
		return zkp.NewDigestVerifier(), nil
	case VerifierDLEQ:
		return zkp.NewDLEQ(), nil
	default:
		return nil, xerrors.Errorf("unknown verifier '%s'", c.Verifier)
	}
}

// NewProver returns a prover compatible with the verifier.
func (c Config) NewProver(seed []byte) (zkp.Prover, error) {
	switch c.Verifier {
	case VerifierDigest:
		return zkp.NewDigestProver(seed), nil
	case VerifierDLEQ:
		return zkp.NewDLEQProver(), nil
	default:
		return nil, xerrors.Errorf("unknown verifier '%s'", c.Verifier)
	}
}

// NewHashFactory returns the hash factory of the fingerprints.
func (c Config) NewHashFactory() (crypto.HashFactory, error) {
	algo, err := crypto.ParseHashAlgorithm(c.Fingerprint)
	if err != nil {
		return nil, err
	}

	return crypto.NewHashFactory(algo), nil
}

// NewScheme returns the accumulator scheme of the tally.
func (c Config) NewScheme() (homomorphic.Scheme, error) {
	switch c.Scheme.Name {
	case SchemeHashChain:
		return homomorphic.NewHashChain(), nil
	case SchemeElGamal:
		data, err := hex.DecodeString(c.Scheme.PublicKey)
		if err != nil {
			return nil, xerrors.Errorf("failed to decode public key: %v", err)
		}

		scheme, err := homomorphic.NewElGamalFromBytes(data)
		if err != nil {
			return nil, xerrors.Errorf("failed to create scheme: %v", err)
		}

		return scheme, nil
	default:
		return nil, xerrors.Errorf("unknown scheme '%s'", c.Scheme.Name)
	}
}
