package main

import (
	"go.dedis.ch/zktally/cli"
)

// heightInitializer declares the commands to read and move the height of the
// elections.
//
// - implements cli.Initializer
type heightInitializer struct {
	action
}

// SetCommands implements cli.Initializer.
func (i heightInitializer) SetCommands(provider cli.Provider) {
	cmd := provider.SetCommand("height")
	cmd.SetDescription("manage the height of the elections")

	sub := cmd.SetSubCommand("show")
	sub.SetDescription("print the current height")
	sub.SetAction(i.show)

	sub = cmd.SetSubCommand("advance")
	sub.SetDescription("move the height forward")
	sub.SetFlags(cli.Uint64Flag{
		Name:  "blocks",
		Usage: "number of blocks",
		Value: 1,
	})
	sub.SetAction(i.advance)
}

func (i heightInitializer) show(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		i.print("%d", n.clock.GetHeight())
		return nil
	})
}

func (i heightInitializer) advance(flags cli.Flags) error {
	return i.run(flags, func(n *node) error {
		height, err := n.advance(flags.Uint64("blocks"))
		if err != nil {
			return err
		}

		i.print("%d", height)

		return nil
	})
}
