// Package pnl computes the realized profit and loss of a trade, and the exit
// price that realizes a target profit and loss.
//
// Computations are exact decimal arithmetic; currency amounts are rounded to
// 2 decimals half to even (banker's rounding), in both directions.
//
// The formula depends on the asset class, with d = +1 for Buy and -1 for Sell
// and raw = (exit - entry) × d:
//
//	FOREX      pips = raw / pip_size    pnl = pips × pip_size × tick_value × 1000 × quantity
//	INDEX      points = raw             pnl = points × tick_value × quantity
//	CRYPTO     price = raw              pnl = raw × quantity
//	STOCK      price = raw              pnl = raw × quantity
//	COMMODITY  points = raw             pnl = raw × contract_size × quantity
//
// For FOREX, tick_value counts thousands of base currency units per unit of
// quantity: with a pip size of 0.0001 and a tick value of 10, a pip is worth
// 1.00 per unit of quantity.
package pnl

import (
	"github.com/etnz/instrument"
	"github.com/shopspring/decimal"
)

// Decimals is the number of decimals of currency amounts.
const Decimals = 2

// ExitDecimals is the number of decimals of an exact exit price.
const ExitDecimals = 16

// forexTickUnit is the number of base currency units in a unit of FOREX tick value.
var forexTickUnit = decimal.NewFromInt(1000)

// Unit is the secondary unit a price difference is expressed in.
type Unit int

const (
	Pips   Unit = iota + 1 // FOREX
	Points                 // INDEX and COMMODITY
	Price                  // CRYPTO and STOCK
)

func (u Unit) String() string {
	switch u {
	case Pips:
		return "pips"
	case Points:
		return "points"
	case Price:
		return "price"
	}
	return "?"
}

// Trade is a closed trade on an instrument.
type Trade struct {
	Entry      decimal.Decimal
	Exit       decimal.Decimal
	Quantity   decimal.Decimal // lots or units, > 0.
	Side       Side
	Commission decimal.Decimal // paid, subtracted from the gross amount.
	Swap       decimal.Decimal // overnight financing, added to the gross amount.
}

// Result is the economics of a Trade.
type Result struct {
	PnL      decimal.Decimal // net amount, rounded.
	Gross    decimal.Decimal // before commission and swap, rounded.
	Units    decimal.Decimal // price difference in Unit, rounded.
	Unit     Unit
	RawDiff  decimal.Decimal // signed price difference, exact.
	Currency string
}

// Money returns the net amount in the instrument currency.
func (r Result) Money() Money { return NewMoney(r.PnL, r.Currency) }

// Exit is the exit price realizing a target amount.
type Exit struct {
	Price   decimal.Decimal // exact, up to ExitDecimals decimals.
	Display decimal.Decimal // rounded to the instrument price decimals.
	RawDiff decimal.Decimal
	Units   decimal.Decimal // rounded.
	Unit    Unit
}

// Calculate returns the profit and loss of 't' on 'inst'.
func Calculate(inst instrument.Instrument, t Trade) (Result, error) {
	if err := checkTrade(t.Quantity, t.Side, t.Entry); err != nil {
		return Result{}, err
	}
	if t.Exit.IsNegative() {
		return Result{}, instrument.NewFieldError(instrument.ErrInvalidArgument, "exit_price", "must be >= 0, got %v", t.Exit)
	}
	m, err := model(inst)
	if err != nil {
		return Result{}, err
	}

	raw := t.Exit.Sub(t.Entry).Mul(t.Side.direction())
	gross := raw.Mul(m.factor).Mul(t.Quantity)
	net := gross.Sub(t.Commission).Add(t.Swap)
	return Result{
		PnL:      net.RoundBank(Decimals),
		Gross:    gross.RoundBank(Decimals),
		Units:    m.units(raw).RoundBank(Decimals),
		Unit:     m.unit,
		RawDiff:  raw,
		Currency: currency(inst),
	}, nil
}

// ExitPrice returns the exit price at which a trade of 'quantity' opened at
// 'entry' realizes 'target'.
func ExitPrice(inst instrument.Instrument, entry, quantity, target decimal.Decimal, side Side) (Exit, error) {
	return ExitPriceWithCosts(inst, Trade{Entry: entry, Quantity: quantity, Side: side}, target)
}

// ExitPriceWithCosts is like ExitPrice for a trade with commission and swap:
// 'target' is the net amount. t.Exit is ignored.
func ExitPriceWithCosts(inst instrument.Instrument, t Trade, target decimal.Decimal) (Exit, error) {
	if err := checkTrade(t.Quantity, t.Side, t.Entry); err != nil {
		return Exit{}, err
	}
	m, err := model(inst)
	if err != nil {
		return Exit{}, err
	}

	gross := target.Add(t.Commission).Sub(t.Swap)
	raw := gross.DivRound(m.factor.Mul(t.Quantity), ExitDecimals)
	price := t.Entry.Add(raw.Mul(t.Side.direction()))
	// same bound as the exit price accepted by Calculate.
	if price.IsNegative() {
		return Exit{}, instrument.NewFieldError(instrument.ErrInvalidArgument, "target_pnl", "%v needs an exit price of %v, it must be >= 0", target, price)
	}
	return Exit{
		Price:   price,
		Display: price.RoundBank(inst.PriceDecimals),
		RawDiff: raw,
		Units:   m.units(raw).RoundBank(Decimals),
		Unit:    m.unit,
	}, nil
}

// checkTrade checks the caller supplied values, quantity first.
func checkTrade(quantity decimal.Decimal, side Side, entry decimal.Decimal) error {
	if !quantity.IsPositive() {
		return instrument.NewFieldError(instrument.ErrInvalidArgument, "quantity", "must be > 0, got %v", quantity)
	}
	if !side.valid() {
		return instrument.NewFieldError(instrument.ErrInvalidArgument, "side", "must be BUY or SELL, got %v", side)
	}
	if !entry.IsPositive() {
		return instrument.NewFieldError(instrument.ErrInvalidArgument, "entry_price", "must be > 0, got %v", entry)
	}
	return nil
}

// pricing is the per asset class part of the formulas.
type pricing struct {
	factor decimal.Decimal // pnl = raw × factor × quantity.
	unit   Unit
	pip    decimal.Decimal // FOREX only.
}

// units converts a raw price difference into the secondary unit.
func (p pricing) units(raw decimal.Decimal) decimal.Decimal {
	if p.unit == Pips {
		return raw.DivRound(p.pip, ExitDecimals)
	}
	return raw
}

// model returns the pricing of 'inst', or a configuration error naming the
// bad field.
func model(inst instrument.Instrument) (pricing, error) {
	if !inst.ContractSize.IsPositive() {
		return pricing{}, instrument.NewFieldError(instrument.ErrConfiguration, "contract_size", "must be > 0, got %v (instrument %q)", inst.ContractSize, inst.ID)
	}
	switch inst.Class {
	case instrument.Forex:
		if !inst.PipSize.IsPositive() {
			return pricing{}, instrument.NewFieldError(instrument.ErrConfiguration, "pip_size", "must be > 0, got %v (instrument %q)", inst.PipSize, inst.ID)
		}
		if !inst.TickValue.IsPositive() {
			return pricing{}, instrument.NewFieldError(instrument.ErrConfiguration, "tick_value", "must be > 0, got %v (instrument %q)", inst.TickValue, inst.ID)
		}
		// pips × pip_size simplifies.
		return pricing{factor: inst.TickValue.Mul(forexTickUnit), unit: Pips, pip: inst.PipSize}, nil
	case instrument.Index:
		if !inst.TickValue.IsPositive() {
			return pricing{}, instrument.NewFieldError(instrument.ErrConfiguration, "tick_value", "must be > 0, got %v (instrument %q)", inst.TickValue, inst.ID)
		}
		return pricing{factor: inst.TickValue, unit: Points}, nil
	case instrument.Crypto, instrument.Stock:
		return pricing{factor: decimal.NewFromInt(1), unit: Price}, nil
	case instrument.Commodity:
		return pricing{factor: inst.ContractSize, unit: Points}, nil
	}
	return pricing{}, instrument.NewFieldError(instrument.ErrConfiguration, "asset_class", "%v has no P&L formula (instrument %q)", inst.Class, inst.ID)
}

func currency(inst instrument.Instrument) string {
	if inst.Currency == "" {
		return instrument.DefaultCurrency
	}
	return inst.Currency
}
