// Package fake contains the test doubles shared by the packages of the
// module: an error every double returns when told to fail, in-memory stores
// that fail on demand, and a recorder of calls.
package fake

import (
	"fmt"

	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the error the doubles return when they fail.
func GetError() error {
	return fakeErr
}

// Err formats the message of an operation failing because of the fake error,
// in the "failed to X: cause" form.
func Err(msg string) string {
	return fmt.Sprintf("%s: %v", msg, fakeErr)
}

// Call records the arguments of each call made to a double. A nil recorder
// ignores the calls.
type Call struct {
	args [][]interface{}
}

// Add records one call with its arguments.
func (c *Call) Add(args ...interface{}) {
	if c != nil {
		c.args = append(c.args, args)
	}
}

// Len returns how many calls were recorded.
func (c *Call) Len() int {
	if c == nil {
		return 0
	}

	return len(c.args)
}

// Get returns the argument at index arg of the call at index call.
func (c *Call) Get(call, arg int) interface{} {
	return c.args[call][arg]
}
