package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.dedis.ch/zktally"
	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/core/access"
	"go.dedis.ch/zktally/core/election"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var (
	callerFlag = cli.StringFlag{
		Name:     "caller",
		Usage:    "identity of the caller",
		Required: true,
	}

	electionFlag = cli.Uint64Flag{
		Name:     "election",
		Usage:    "identifier of the election",
		Required: true,
	}
)

// action is the common part of the commands. It opens the node for the
// duration of a command and prints the results.
type action struct {
	printer io.Writer
	open    opener
}

func (a action) run(flags cli.Flags, fn func(*node) error) error {
	n, err := a.open(flags)
	if err != nil {
		return xerrors.Errorf("failed to open node: %v", err)
	}

	defer n.Close()

	err = fn(n)
	if err != nil {
		return err
	}

	if flags.Bool("metrics") {
		err = writeMetrics(a.printer)
		if err != nil {
			return xerrors.Errorf("failed to write metrics: %v", err)
		}
	}

	return nil
}

func (a action) print(format string, args ...interface{}) {
	fmt.Fprintf(a.printer, format+"\n", args...)
}

// printYAML prints the value in a human readable way.
func (a action) printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to marshal: %v", err)
	}

	_, err = a.printer.Write(data)
	if err != nil {
		return xerrors.Errorf("failed to print: %v", err)
	}

	return nil
}

func caller(flags cli.Flags) access.Identity {
	return access.Identity(flags.String("caller"))
}

func electionID(flags cli.Flags) election.ID {
	return election.ID(flags.Uint64("election"))
}

func decodeHex(flags cli.Flags, name string) ([]byte, error) {
	data, err := hex.DecodeString(flags.String(name))
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %s: %v", name, err)
	}

	return data, nil
}

func parseUints(values []string) ([]uint64, error) {
	res := make([]uint64, len(values))

	for i, value := range values {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("invalid number '%s': %v", value, err)
		}

		res[i] = n
	}

	return res, nil
}

// writeMetrics writes the text exposition of the collectors of the packages.
func writeMetrics(w io.Writer) error {
	registry := prometheus.NewRegistry()

	for _, c := range zktally.PromCollectors {
		err := registry.Register(c)
		if err != nil {
			return xerrors.Errorf("failed to register collector: %v", err)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		return xerrors.Errorf("failed to gather: %v", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)

	for _, family := range families {
		err = enc.Encode(family)
		if err != nil {
			return xerrors.Errorf("failed to encode: %v", err)
		}
	}

	return nil
}
