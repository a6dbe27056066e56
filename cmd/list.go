package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	category string
	class    string
	status   string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the instruments of the catalog" }
func (*listCmd) Usage() string {
	return `ics list [-category <category>] [-class <class>] [-status active|inactive|all]

  Lists the instruments of the catalog, sorted by symbol.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Only list this category (case-insensitive).")
	f.StringVar(&c.class, "class", "", "Only list this asset class (FOREX, INDEX, CRYPTO, STOCK, COMMODITY).")
	f.StringVar(&c.status, "status", "active", "Only list active, inactive, or all instruments.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filter instrument.Filter
	if c.category != "" {
		filter.Category = &c.category
	}
	if c.class != "" {
		class, err := instrument.ParseAssetClass(c.class)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing class: %v\n", err)
			return subcommands.ExitUsageError
		}
		filter.Class = &class
	}
	switch c.status {
	case "active":
		yes := true
		filter.Active = &yes
	case "inactive":
		no := false
		filter.Active = &no
	case "all":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown status %q, want active, inactive or all.\n", c.status)
		return subcommands.ExitUsageError
	}

	catalog, _, err := DecodeCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderList(renderer.NewList("Instruments", catalog.List(filter))))
	return subcommands.ExitSuccess
}
