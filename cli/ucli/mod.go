// Package ucli implements the cli builder on top of urfave/cli.
//
// The definitions are collected first and converted when the application is
// built, so a command can be given its flags, action and subcommands in any
// order.
package ucli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/zktally/cli"
)

// Builder collects the definition of an urfave application.
//
// - implements cli.Builder
type Builder struct {
	name     string
	action   cli.Action
	flags    []cli.Flag
	commands []*cmdBuilder
}

// NewBuilder returns a builder for the application of the given name. The
// action runs when no command is given and may be nil. The flags are global.
func NewBuilder(name string, action cli.Action, flags ...cli.Flag) cli.Builder {
	return &Builder{
		name:   name,
		action: action,
		flags:  flags,
	}
}

// Build implements cli.Builder. It returns an *urfave.App.
func (b *Builder) Build() cli.Application {
	app := &urfave.App{
		Name:     b.name,
		Flags:    buildFlags(b.flags),
		Action:   makeAction(b.action),
		Commands: make([]*urfave.Command, 0, len(b.commands)),
	}

	for _, cmd := range b.commands {
		app.Commands = append(app.Commands, cmd.build())
	}

	app.Setup()

	return app
}

// SetCommand implements cli.Provider.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &cmdBuilder{name: name}
	b.commands = append(b.commands, cmd)

	return cmd
}

// cmdBuilder collects the definition of a command.
//
// - implements cli.CommandBuilder
type cmdBuilder struct {
	name        string
	description string
	action      cli.Action
	flags       []cli.Flag
	subcommands []*cmdBuilder
}

// SetDescription implements cli.CommandBuilder.
func (b *cmdBuilder) SetDescription(value string) {
	b.description = value
}

// SetFlags implements cli.CommandBuilder. It replaces the previous flags.
func (b *cmdBuilder) SetFlags(flags ...cli.Flag) {
	b.flags = flags
}

// SetAction implements cli.CommandBuilder.
func (b *cmdBuilder) SetAction(action cli.Action) {
	b.action = action
}

// SetSubCommand implements cli.CommandBuilder.
func (b *cmdBuilder) SetSubCommand(name string) cli.CommandBuilder {
	sub := &cmdBuilder{name: name}
	b.subcommands = append(b.subcommands, sub)

	return sub
}

func (b *cmdBuilder) build() *urfave.Command {
	cmd := &urfave.Command{
		Name:   b.name,
		Usage:  b.description,
		Flags:  buildFlags(b.flags),
		Action: makeAction(b.action),
	}

	for _, sub := range b.subcommands {
		cmd.Subcommands = append(cmd.Subcommands, sub.build())
	}

	return cmd
}

// buildFlags converts the definitions to urfave flags. It panics when a
// definition is of an unknown type.
func buildFlags(flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, 0, len(flags))

	for _, f := range flags {
		res = append(res, convertFlag(f))
	}

	return res
}

func convertFlag(f cli.Flag) urfave.Flag {
	switch def := f.(type) {
	case cli.StringFlag:
		return &urfave.StringFlag{
			Name:     def.Name,
			Usage:    def.Usage,
			Required: def.Required,
			Value:    def.Value,
			EnvVars:  envVars(def.EnvVar),
		}
	case cli.StringSliceFlag:
		return &urfave.StringSliceFlag{
			Name:     def.Name,
			Usage:    def.Usage,
			Required: def.Required,
			Value:    urfave.NewStringSlice(def.Value...),
		}
	case cli.Uint64Flag:
		return &urfave.Uint64Flag{
			Name:     def.Name,
			Usage:    def.Usage,
			Required: def.Required,
			Value:    def.Value,
		}
	case cli.BoolFlag:
		return &urfave.BoolFlag{
			Name:    def.Name,
			Usage:   def.Usage,
			Value:   def.Value,
			EnvVars: envVars(def.EnvVar),
		}
	}

	panic(fmt.Sprintf("flag type '%T' not supported", f))
}

func envVars(name string) []string {
	if name == "" {
		return nil
	}

	return []string{name}
}

// makeAction wraps the action so that urfave calls it with its context, which
// implements cli.Flags.
func makeAction(action cli.Action) urfave.ActionFunc {
	if action == nil {
		return nil
	}

	return func(ctx *urfave.Context) error {
		return action(ctx)
	}
}
