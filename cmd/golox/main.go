// Command golox runs the golox interpreter, either against a script file
// or as an interactive REPL (SPEC_FULL.md §2.4).
package main

import "github.com/goloxlang/golox/cmd/golox/cmd"

func main() {
	cmd.Execute()
}
