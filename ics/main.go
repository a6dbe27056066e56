// Command ics resolves trading instruments and previews trade economics.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/instrument/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.LoadEnv()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when the shell asks for completions.
	completion(commander).Complete("ics")

	flag.Parse()
	cmd.SetupLogging()
	os.Exit(int(commander.Execute(context.Background())))
}
