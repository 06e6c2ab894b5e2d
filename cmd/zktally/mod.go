// Package main implements the command line that operates the proofs, the
// tally and the audit engines on a local database.
//
// Example of a session:
//
//	zktally --config zktally.yml proofs authority --caller root --id root
//	zktally --config zktally.yml height advance --blocks 10
//	zktally --config zktally.yml proofs prove --candidate 3
//	zktally --config zktally.yml proofs verify --voter alice --election 1 \
//	  --candidate 3 --proof <hex> --commitment <hex>
//
// The height of the elections is stored in the database and moved forward by
// the height command. The global flags can be set with the environment
// variables ZKTALLY_CONFIG, ZKTALLY_DB and ZKTALLY_METRICS.
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/zktally/cli"
	"go.dedis.ch/zktally/cli/ucli"
)

var printer io.Writer = os.Stderr

func main() {
	err := run(os.Args, os.Stdout)
	if err != nil {
		fmt.Fprintf(printer, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	builder := ucli.NewBuilder("zktally", nil,
		cli.StringFlag{
			Name:   "config",
			Usage:  "path to the configuration file",
			EnvVar: "ZKTALLY_CONFIG",
		},
		cli.StringFlag{
			Name:   "db",
			Usage:  "path to the database, overrides the configuration",
			EnvVar: "ZKTALLY_DB",
		},
		cli.BoolFlag{
			Name:   "metrics",
			Usage:  "print the metrics of the command once it is done",
			EnvVar: "ZKTALLY_METRICS",
		},
	)

	act := action{
		printer: out,
		open:    openNode,
	}

	inits := []cli.Initializer{
		heightInitializer{action: act},
		proofsInitializer{action: act},
		tallyInitializer{action: act},
		auditInitializer{action: act},
	}

	for _, init := range inits {
		init.SetCommands(builder)
	}

	app := builder.Build()

	return app.Run(args)
}
