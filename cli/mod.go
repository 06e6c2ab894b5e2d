// Package cli defines the Builder type, which allows one to build a CLI
// application in a modular way. Each component declares its commands through
// an Initializer:
//
//	type greeter struct{}
//
//	func (greeter) SetCommands(provider cli.Provider) {
//		cmd := provider.SetCommand("hello")
//		cmd.SetDescription("Say hello !")
//		cmd.SetFlags(cli.StringFlag{Name: "dude", EnvVar: "DUDE"})
//		cmd.SetAction(func(flags cli.Flags) error {
//			fmt.Printf("Hello %s!\n", flags.String("dude"))
//			return nil
//		})
//	}
//
//	builder := ucli.NewBuilder("myapp", nil)
//	greeter{}.SetCommands(builder)
//	builder.Build().Run(os.Args)
package cli

// Builder is an application builder interface. One can set properties of an
// application then build it.
type Builder interface {
	Provider

	// Build returns the application.
	Build() Application
}

// Provider is the interface to populate the commands of an application.
type Provider interface {
	// SetCommand creates a new command with the given name and returns its
	// builder.
	SetCommand(name string) CommandBuilder
}

// Initializer is the interface of a component that declares its commands.
type Initializer interface {
	SetCommands(Provider)
}

// Application is the main interface to run the CLI.
type Application interface {
	Run(arguments []string) error
}

// CommandBuilder is a command builder interface. One can set properties of a
// specific command like its name and description and what it should do when
// invoked.
type CommandBuilder interface {
	// SetDescription sets the value of the description for this command.
	SetDescription(value string)

	// SetFlags sets the flags for this command.
	SetFlags(...Flag)

	// SetAction sets the action for this command.
	SetAction(Action)

	// SetSubCommand creates a subcommand for this command.
	SetSubCommand(name string) CommandBuilder
}

// Action is a function that will be executed when a command is invoked.
type Action func(Flags) error

// Flag is an identifier for the definition of the flags.
type Flag interface {
	Flag()
}

// Flags provides the primitives to an action to read the flags. The flags of
// the parent commands are visible to the subcommands.
type Flags interface {
	String(name string) string

	StringSlice(name string) []string

	Uint64(name string) uint64

	Bool(name string) bool
}
