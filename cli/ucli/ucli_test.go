package ucli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/zktally/cli"
)

func TestBuild(t *testing.T) {
	app := NewBuilder("test", nil).Build().(*urfave.App)
	app.Writer = io.Discard

	require.Equal(t, "test", app.Name)
	require.NoError(t, app.Run([]string{"test"}))
}

func TestSetCommand(t *testing.T) {
	builder := NewBuilder("test", nil)

	builder.SetCommand("proofs")
	builder.SetCommand("tally")

	app := builder.Build().(*urfave.App)

	names := make([]string, len(app.Commands))
	for i, cmd := range app.Commands {
		names[i] = cmd.Name
	}

	// urfave appends its help command.
	require.Equal(t, []string{"proofs", "tally", "help"}, names)
}

func TestCommandBuilder(t *testing.T) {
	builder := NewBuilder("test", nil).(*Builder)
	cmd := builder.SetCommand("proofs")

	cmd.SetDescription("manage the proofs")
	cmd.SetFlags(cli.StringFlag{
		Name:     "caller",
		Usage:    "identity of the caller",
		Required: true,
	})

	sub := cmd.SetSubCommand("verify")
	sub.SetAction(func(cli.Flags) error { return nil })
	sub.SetFlags(cli.Uint64Flag{Name: "election"}, cli.Uint64Flag{Name: "candidate"})

	require.Empty(t, builder.flags)
	require.Len(t, builder.commands, 1)
	require.Len(t, builder.commands[0].flags, 1)
	require.Len(t, builder.commands[0].subcommands, 1)

	app := builder.Build().(*urfave.App)

	proofs := app.Commands[0]
	require.Equal(t, "manage the proofs", proofs.Usage)
	require.Len(t, proofs.Flags, 1)
	require.Len(t, proofs.Subcommands, 1)

	verify := proofs.Subcommands[0]
	require.Equal(t, "verify", verify.Name)
	require.NotNil(t, verify.Action)
	require.Len(t, verify.Flags, 2)
}

func TestBuildFlags(t *testing.T) {
	in := []cli.Flag{
		cli.StringFlag{
			Name:     "name1",
			Usage:    "usage1",
			Required: true,
			Value:    "value1",
			EnvVar:   "ENV1",
		},
		cli.StringSliceFlag{
			Name:     "name2",
			Usage:    "usage2",
			Required: true,
			Value:    []string{},
		},
		cli.Uint64Flag{
			Name:     "name3",
			Usage:    "usage3",
			Required: true,
			Value:    42,
		},
		cli.BoolFlag{
			Name:  "name4",
			Usage: "usage4",
			Value: true,
		},
	}

	out := buildFlags(in)
	require.Len(t, out, 4)

	require.Equal(t, "name1", out[0].Names()[0])
	require.Equal(t, []string{"ENV1"}, out[0].(*urfave.StringFlag).EnvVars)
	require.Equal(t, "name2", out[1].Names()[0])
	require.Equal(t, "name3", out[2].Names()[0])
	require.Equal(t, uint64(42), out[2].(*urfave.Uint64Flag).Value)
	require.Equal(t, "name4", out[3].Names()[0])
	require.Nil(t, out[3].(*urfave.BoolFlag).EnvVars)
}

func TestBuild_Env(t *testing.T) {
	t.Setenv("UCLI_TEST_DB", "/tmp/test.db")

	builder := NewBuilder("test", nil,
		cli.StringFlag{Name: "db", EnvVar: "UCLI_TEST_DB"},
		cli.BoolFlag{Name: "verbose", EnvVar: "UCLI_TEST_VERBOSE"})

	var db string
	var verbose bool

	cmd := builder.SetCommand("show")
	cmd.SetAction(func(flags cli.Flags) error {
		db = flags.String("db")
		verbose = flags.Bool("verbose")
		return nil
	})

	app := builder.Build().(*urfave.App)
	app.Writer = io.Discard

	err := app.Run([]string{"test", "show"})
	require.NoError(t, err)
	require.Equal(t, "/tmp/test.db", db)
	require.False(t, verbose)

	app = builder.Build().(*urfave.App)
	app.Writer = io.Discard

	err = app.Run([]string{"test", "--db", "other.db", "--verbose", "show"})
	require.NoError(t, err)
	require.Equal(t, "other.db", db)
	require.True(t, verbose)
}

func TestBuild_Run(t *testing.T) {
	builder := NewBuilder("test", nil)

	var height uint64
	var voters []string

	cmd := builder.SetCommand("height")
	cmd.SetFlags(cli.Uint64Flag{Name: "blocks"}, cli.StringSliceFlag{Name: "voter"})
	cmd.SetAction(func(flags cli.Flags) error {
		height = flags.Uint64("blocks")
		voters = flags.StringSlice("voter")
		return nil
	})

	app := builder.Build().(*urfave.App)
	app.Writer = io.Discard

	err := app.Run([]string{"test", "height", "--blocks", "12", "--voter", "a", "--voter", "b"})
	require.NoError(t, err)
	require.Equal(t, uint64(12), height)
	require.Equal(t, []string{"a", "b"}, voters)
}

func TestBuildFlags_Panic(t *testing.T) {
	defer func() {
		r := recover()
		require.Equal(t, "flag type '<nil>' not supported", r)
	}()

	buildFlags([]cli.Flag{nil})
}

func TestMakeAction(t *testing.T) {
	res := makeAction(nil)
	require.Nil(t, res)

	isCalled := false
	fakeAction := func(flags cli.Flags) error {
		require.Nil(t, flags)
		isCalled = true
		return nil
	}

	res = makeAction(fakeAction)
	require.NotNil(t, res)

	out := res(nil)
	require.NoError(t, out)
	require.True(t, isCalled)
}
