package renderer

import (
	"github.com/etnz/instrument"
	"github.com/etnz/instrument/pnl"
	"github.com/shopspring/decimal"
)

// PnL is the view of the economics of a trade.
type PnL struct {
	Symbol     string
	Name       string
	Class      string
	Side       string
	Quantity   string
	Entry      string
	Exit       string
	RawDiff    string
	Units      string
	Unit       string
	Gross      string
	Commission string
	Swap       string
	HasCosts   bool
	Net        string
	Currency   string
}

// NewPnL returns the view of 'r', the result of 't' on 'in'.
func NewPnL(in instrument.Instrument, t pnl.Trade, r pnl.Result) *PnL {
	return &PnL{
		Symbol:     cell(in.Symbol),
		Name:       cell(in.Name),
		Class:      in.Class.String(),
		Side:       t.Side.String(),
		Quantity:   t.Quantity.String(),
		Entry:      t.Entry.String(),
		Exit:       t.Exit.String(),
		RawDiff:    r.RawDiff.String(),
		Units:      r.Units.StringFixed(pnl.Decimals),
		Unit:       r.Unit.String(),
		Gross:      pnl.NewMoney(r.Gross, r.Currency).SignedString(),
		Commission: pnl.NewMoney(t.Commission, r.Currency).String(),
		Swap:       pnl.NewMoney(t.Swap, r.Currency).String(),
		HasCosts:   !t.Commission.IsZero() || !t.Swap.IsZero(),
		Net:        r.Money().SignedString(),
		Currency:   r.Currency,
	}
}

// Exit is the view of an exit price computation.
type Exit struct {
	Symbol   string
	Side     string
	Quantity string
	Entry    string
	Target   string
	Price    string // display price.
	Exact    string
	Units    string
	Unit     string
}

// NewExit returns the view of 'e', the exit realizing 'target'.
func NewExit(in instrument.Instrument, entry, quantity decimal.Decimal, side pnl.Side, target pnl.Money, e pnl.Exit) *Exit {
	return &Exit{
		Symbol:   cell(in.Symbol),
		Side:     side.String(),
		Quantity: quantity.String(),
		Entry:    entry.String(),
		Target:   target.SignedString(),
		Price:    e.Display.StringFixed(in.PriceDecimals),
		Exact:    e.Price.String(),
		Units:    e.Units.StringFixed(pnl.Decimals),
		Unit:     e.Unit.String(),
	}
}
