package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
)

type brokersCmd struct{}

func (*brokersCmd) Name() string     { return "brokers" }
func (*brokersCmd) Synopsis() string { return "list broker profiles" }
func (*brokersCmd) Usage() string {
	return `ics brokers

  Lists the broker profiles, their symbol patterns and how many broker
  symbols are mapped for each of them.
`
}

func (c *brokersCmd) SetFlags(f *flag.FlagSet) {}

func (c *brokersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, mapper, err := DecodeCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderBrokers(mapper.Brokers(), mapper.Aliases()))
	return subcommands.ExitSuccess
}
