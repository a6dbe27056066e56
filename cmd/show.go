package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
)

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display an instrument" }
func (*showCmd) Usage() string {
	return `ics show <id|symbol|query>

  Displays the full record of an instrument: economics, nicknames and broker
  symbols. The argument is an instrument id, a canonical symbol, or any
  query, in which case the best match is displayed.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: an instrument is required.")
		return subcommands.ExitUsageError
	}
	name := strings.Join(f.Args(), " ")

	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	in, err := s.lookup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderInstrument(renderer.NewInstrumentDetail(in, s.snapshot.Mapper.Aliases())))
	return subcommands.ExitSuccess
}
