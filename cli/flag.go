package cli

// StringFlag is a definition of a command flag expected to be parsed as a
// string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string

	// EnvVar is the environment variable that sets the flag when it is not
	// given on the command line.
	EnvVar string
}

// Flag implements cli.Flag.
func (flag StringFlag) Flag() {}

// StringSliceFlag is a definition of a command flag that can be repeated. The
// values are read in their order on the command line.
//
// - implements cli.Flag
type StringSliceFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    []string
}

// Flag implements cli.Flag.
func (flag StringSliceFlag) Flag() {}

// Uint64Flag is a definition of a command flag expected to be parsed as an
// unsigned integer. Heights, counts and identifiers use it.
//
// - implements cli.Flag
type Uint64Flag struct {
	Name     string
	Usage    string
	Required bool
	Value    uint64
}

// Flag implements cli.Flag.
func (flag Uint64Flag) Flag() {}

// BoolFlag is a definition of a command flag that is a switch.
//
// - implements cli.Flag
type BoolFlag struct {
	Name   string
	Usage  string
	Value  bool
	EnvVar string
}

// Flag implements cli.Flag.
func (flag BoolFlag) Flag() {}
