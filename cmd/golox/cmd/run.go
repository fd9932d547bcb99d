package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goloxlang/golox/internal/driver"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "execute a golox script file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Exit(runFile(args[0]))
		return nil
	},
}

// runFile executes the named script once in batch mode and returns the
// process exit code (spec.md §6 "One argument: batch mode").
func runFile(path string) int {
	d := newDriver()
	return d.RunFile(path)
}

// runREPL drives an interactive session from stdin until end-of-input
// (spec.md §6 "No argument: interactive mode").
func runREPL() {
	d := newDriver()
	d.RunREPL(os.Stdin, os.Stdout)
}

func newDriver() *driver.Driver {
	d := driver.New(os.Stdout, os.Stderr, os.Stdin)
	d.DumpAST = dumpAST
	d.TraceCall = trace
	return d
}
