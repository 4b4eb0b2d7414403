// wealthdesk is the single binary for the service: `wealthdesk serve` runs
// the API server, `wealthdesk migrate` manages the schema.
package main

import (
	"fmt"
	"os"

	"github.com/wealthdesk/wealthdesk/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
