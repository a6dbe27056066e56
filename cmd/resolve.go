package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/renderer"
	"github.com/etnz/instrument/resolve"
	"github.com/google/subcommands"
)

type resolveCmd struct{}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "resolve a symbol, alias or name to instruments" }
func (*resolveCmd) Usage() string {
	return `ics [-broker <id>] [-limit <n>] resolve <query>

  Resolves a query the way trade imports do: canonical symbol first, then
  the broker symbols of -broker, then nicknames and decorated symbols, then
  full text search. Matches are ranked by score.

Usage Examples:
$ ics resolve EURUSD
$ ics -broker oanda resolve XAU_USD
$ ics resolve EURUSD.pro
`
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {}

func (c *resolveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.Join(f.Args(), " ")

	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	matches, err := s.resolver.Resolve(query, resolve.Options{BrokerID: *brokerID, Limit: *limit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving %q: %v\n", query, err)
		if errors.Is(err, instrument.ErrInvalidArgument) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderMatches(renderer.NewMatches(query, *brokerID, matches)))
	return subcommands.ExitSuccess
}
