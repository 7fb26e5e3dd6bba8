package main

import (
	"os"

	"github.com/yairfalse/apidrift/cmd/apidrift/commands"
	"github.com/yairfalse/apidrift/internal/errors"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	builtBy   = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, buildTime, builtBy)
	if err := commands.Execute(); err != nil {
		errors.DisplayError(err)
		os.Exit(errors.GetExitCode(err))
	}
}
