package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
)

// CLI exposes common dependencies to commands.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Output a string to CLI.Stdout. Output is like fmt.Printf except that it always
// adds a trailing newline.
func (c *CLI) Output(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout, format+"\n", args...)
}

// key is a type to ensure no other package can access the CLI value in context.
type key struct{}

// ctxKey used to store CLI in the context.
var ctxKey = key{}

// newCLI returns the CLI stored in ctx, or a new CLI that writes to the
// standard streams.
func newCLI(ctx context.Context) *CLI {
	cli, ok := ctx.Value(ctxKey).(*CLI)
	if ok {
		return cli
	}
	return &CLI{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
