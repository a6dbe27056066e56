package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/instrument/pnl"
	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type exitCmd struct {
	tradeFlags
	target decimal.Decimal
}

func (*exitCmd) Name() string     { return "exit" }
func (*exitCmd) Synopsis() string { return "compute the exit price realizing a target profit" }
func (*exitCmd) Usage() string {
	return `ics exit -side <buy|sell> -entry <price> -target <amount> [-qty <quantity>] [-commission <amount>] [-swap <amount>] <instrument>

  Computes the exit price at which a trade realizes a target net profit (or
  loss, with a negative target). The exact price is displayed along with the
  price rounded to the instrument precision.

Usage Examples:
$ ics exit -side sell -entry 1.2000 -target 100 -qty 3 EURUSD
`
}

func (c *exitCmd) SetFlags(f *flag.FlagSet) {
	c.tradeFlags.SetFlags(f)
	f.TextVar(&c.target, "target", decimal.Zero, "Target net profit, in the instrument currency.")
}

func (c *exitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: an instrument is required.")
		return subcommands.ExitUsageError
	}
	trade, err := c.trade()
	if err != nil {
		return failure(err)
	}

	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()
	in, err := s.lookup(strings.Join(f.Args(), " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	exit, err := pnl.ExitPriceWithCosts(in, trade, c.target)
	if err != nil {
		return failure(err)
	}
	target := pnl.NewMoney(c.target, in.Currency)
	printMarkdown(renderer.RenderExit(renderer.NewExit(in, trade.Entry, trade.Quantity, trade.Side, target, exit)))
	return subcommands.ExitSuccess
}
