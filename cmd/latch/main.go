package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benaskins/latch/internal/credential"
)

// Exit codes. Scripts branch on these to tell "no such credential" apart
// from a broken store.
const (
	exitOK              = 0
	exitFailure         = 1
	exitNoEntry         = 2
	exitNoStorageAccess = 3
	exitBadEncoding     = 4
	exitCredential      = 5
)

func main() {
	c := &cli{stdin: os.Stdin, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:], os.Stdout))
}

func (c *cli) run(args []string, stdout io.Writer) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(c.stdin)
	root.SetOut(stdout)
	root.SetErr(c.stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, credential.ErrNoEntry):
		return exitNoEntry
	case errors.Is(err, credential.ErrNoStorageAccess):
		return exitNoStorageAccess
	case errors.Is(err, credential.ErrBadEncoding):
		return exitBadEncoding
	}
	if _, ok := credential.KindOf(err); ok {
		return exitCredential
	}
	return exitFailure
}
