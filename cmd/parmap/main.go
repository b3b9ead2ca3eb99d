// Command parmap maps a pure function over a batch of inputs with
// interchangeable execution strategies and compares them.
package main

import (
	"context"
	"os"

	"github.com/exascience/parmap/internal/cli"
	"github.com/exascience/parmap/process"
)

var version = "dev"

func main() {
	// worker processes of the multiprocess strategy never reach the CLI
	process.MaybeServe()
	if err := cli.NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
