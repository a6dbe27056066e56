package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/instrument/renderer"
	"github.com/etnz/instrument/resolve"
	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "full text search in the catalog" }
func (*searchCmd) Usage() string {
	return `ics search <query>

  Searches the active instruments by symbol, name, category and nicknames.
  Terms are ANDed, OR binds loosest, "quoted phrases" must appear as is and
  a leading - excludes a term. See 'ics topic search-syntax'.

Usage Examples:
$ ics search gold
$ ics search euro -gbp
$ ics search '"us dollar" OR yen'
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a query is required.")
		return subcommands.ExitUsageError
	}
	query := strings.Join(f.Args(), " ")

	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	n := *limit
	if n <= 0 {
		n = s.resolver.Config().DefaultLimit
	}
	n = min(n, s.resolver.Config().MaxLimit)

	hits, err := s.snapshot.Index.Query(query, n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching %q: %v\n", query, err)
		return subcommands.ExitUsageError
	}
	matches := make([]resolve.Match, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, resolve.Match{Instrument: h.Instrument, Type: resolve.Fuzzy, Score: h.Score})
	}
	printMarkdown(renderer.RenderMatches(renderer.NewMatches(query, "", matches)))
	return subcommands.ExitSuccess
}
