package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/instrument"
	"github.com/google/subcommands"
)

type importCmd struct {
	path     string
	class    string
	category string
	dryRun   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import instruments from a JSON export" }
func (*importCmd) Usage() string {
	return `ics import [-path <jsonpath>] [-class <class>] [-category <category>] [-n] <file.json|url>

  Imports the instruments of a broker or vendor JSON export into the catalog.
  The export is a local file or an http(s) URL, downloaded once a day.
  Rows are selected with a JSONPath expression and columns are matched
  loosely by name (symbol, ticker, digits, lot_size...). Instruments with an
  existing id are replaced. See 'ics topic catalog-format'.

Usage Examples:
$ ics import -path '$.data.symbols[*]' export.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", "", "JSONPath selecting the rows. Defaults to \"$[*]\".")
	f.StringVar(&c.class, "class", "", "Asset class of rows without one.")
	f.StringVar(&c.category, "category", "", "Category of rows without one.")
	f.BoolVar(&c.dryRun, "n", false, "Check the import without saving the catalog.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one file to import is required.")
		return subcommands.ExitUsageError
	}
	opts := instrument.ImportOptions{Path: c.path, Category: c.category}
	if c.class != "" {
		class, err := instrument.ParseAssetClass(c.class)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing class: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts.Class = class
	}

	file, err := openSource(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer file.Close()
	list, err := instrument.ImportJSON(file, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	catalog, mapper, err := DecodeCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	failed := 0
	for _, in := range list {
		if err := catalog.Upsert(in); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d instruments are invalid, the catalog is unchanged.\n", failed, len(list))
		return subcommands.ExitFailure
	}
	if c.dryRun {
		fmt.Fprintf(os.Stderr, "%d instruments can be imported.\n", len(list))
		return subcommands.ExitSuccess
	}
	if err := EncodeCatalog(ctx, catalog, mapper); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Successfully imported %d instruments.\n", len(list))
	return subcommands.ExitSuccess
}
