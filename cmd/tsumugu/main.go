// Command tsumugu mirrors an upstream HTTP(S) file listing to local disk
// (or, with `list`, just prints it) in a single bounded run. The CLI layer
// is intentionally thin per spec §1's stated non-goal of incremental/daemon
// behavior: main.go only registers the subcommands and maps a run's error to
// its exit code; common.go, sync.go and list.go turn flags into a cmn.Config,
// and every actual decision lives in cmn/parser/policy/reconcile/traverse.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/taoky/tsumugu/cmn"
)

func main() {
	app := cli.NewApp()
	app.Name = "tsumugu"
	app.Usage = "one-shot mirror synchronizer for open-source file archives"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		syncCommand,
		listCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tsumugu:", err)
		if exitErr, ok := err.(*cli.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(cmn.ExitCode(err))
	}
}
