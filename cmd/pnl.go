package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/pnl"
	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeFlags are the flags describing a trade, shared by pnl and exit.
type tradeFlags struct {
	side       string
	entry      decimal.Decimal
	quantity   decimal.Decimal
	commission decimal.Decimal
	swap       decimal.Decimal
}

func (t *tradeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.side, "side", "buy", "Side of the trade: buy (long) or sell (short).")
	f.TextVar(&t.entry, "entry", decimal.Zero, "Entry price.")
	f.TextVar(&t.quantity, "qty", decimal.NewFromInt(1), "Quantity, in lots for FOREX and COMMODITY, in units otherwise.")
	f.TextVar(&t.commission, "commission", decimal.Zero, "Commission paid, in the instrument currency.")
	f.TextVar(&t.swap, "swap", decimal.Zero, "Swap earned (negative when paid), in the instrument currency.")
}

// trade returns the trade described by the flags.
func (t *tradeFlags) trade() (pnl.Trade, error) {
	side, err := pnl.ParseSide(t.side)
	if err != nil {
		return pnl.Trade{}, err
	}
	return pnl.Trade{
		Entry:      t.entry,
		Quantity:   t.quantity,
		Side:       side,
		Commission: t.commission,
		Swap:       t.swap,
	}, nil
}

// failure returns the exit status of an economics error: invalid arguments
// are usage errors.
func failure(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, instrument.ErrInvalidArgument) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

type pnlCmd struct {
	tradeFlags
	exit decimal.Decimal
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "compute the profit and loss of a trade" }
func (*pnlCmd) Usage() string {
	return `ics pnl -side <buy|sell> -entry <price> -exit <price> [-qty <quantity>] [-commission <amount>] [-swap <amount>] <instrument>

  Computes the profit and loss of a trade on an instrument, in pips for
  FOREX, points for INDEX and price for the other classes. See 'ics topic pnl'.

Usage Examples:
$ ics pnl -side buy -entry 1.2000 -exit 1.2050 -qty 1 EURUSD
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	c.tradeFlags.SetFlags(f)
	f.TextVar(&c.exit, "exit", decimal.Zero, "Exit price.")
}

func (c *pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: an instrument is required.")
		return subcommands.ExitUsageError
	}
	trade, err := c.trade()
	if err != nil {
		return failure(err)
	}
	trade.Exit = c.exit

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

	result, err := pnl.Calculate(in, trade)
	if err != nil {
		return failure(err)
	}
	printMarkdown(renderer.RenderPnL(renderer.NewPnL(in, trade, result), renderer.PnLRenderOptions{}))
	return subcommands.ExitSuccess
}
