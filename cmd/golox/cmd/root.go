// Package cmd implements golox's command-line interface: a cobra command
// tree mirroring the teacher's cmd/dwscript/cmd shape (SPEC_FULL.md §2.4).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goloxlang/golox/internal/driver"
)

// Version, GitCommit, and BuildDate are stamped at build time via ldflags,
// following the teacher's version-template convention.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	dumpAST bool
	trace   bool
)

var rootCmd = &cobra.Command{
	Use:     "golox [script]",
	Short:   "golox is a tree-walking interpreter for a small dynamically-typed scripting language",
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0:
			runREPL()
			return nil
		case 1:
			os.Exit(runFile(args[0]))
			return nil
		default:
			fmt.Fprintln(os.Stderr, "Usage: lox [script]")
			os.Exit(driver.ExitUsage)
			return nil
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("golox version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed program before executing it")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "print each statement as it executes")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command, matching the teacher's cmd.Execute entry
// point invoked from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(driver.ExitUsage)
	}
}
