package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the catalog into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `ics fmt

  Validates the catalog and writes it back in its canonical form:
  instruments sorted by symbol, brokers by id, aliases by broker then symbol,
  and default values made explicit.

Usage Examples:
$ ics -catalog-dir ./catalog fmt

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (p *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	catalog, mapper, err := DecodeCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	if catalog.Len() == 0 {
		fmt.Fprintf(os.Stderr, "Warning: the catalog is empty, nothing to format.\n")
		return subcommands.ExitSuccess
	}
	if err := EncodeCatalog(ctx, catalog, mapper); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Successfully formatted %d instruments.\n", catalog.Len())
	return subcommands.ExitSuccess
}
