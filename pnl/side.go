package pnl

import (
	"fmt"
	"strings"

	"github.com/etnz/instrument"
	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side int

const (
	Buy  Side = iota + 1 // long: profits when the price rises.
	Sell                 // short: profits when the price falls.
)

// ParseSide parses "buy", "long", "sell" or "short", case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long", "b":
		return Buy, nil
	case "sell", "short", "s":
		return Sell, nil
	}
	return 0, instrument.NewFieldError(instrument.ErrInvalidArgument, "side", "unknown side %q", s)
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// direction returns +1 for Buy and -1 for Sell.
func (s Side) direction() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

func (s Side) valid() bool { return s == Buy || s == Sell }
