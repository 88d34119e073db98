// coverkit CLI - AI video cover generator.
package main

import (
	"os"

	"github.com/petal-labs/coverkit/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
