package pnl

import (
	"github.com/etnz/instrument"
	"github.com/shopspring/decimal"
)

// MinQuantity is the smallest position PositionSize returns.
var MinQuantity = decimal.RequireFromString("0.01")

// PipValue returns the value of a one unit move (a pip for FOREX, a point for
// INDEX and COMMODITY, one price unit for CRYPTO and STOCK) on 'quantity',
// rounded.
func PipValue(inst instrument.Instrument, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !quantity.IsPositive() {
		return decimal.Zero, instrument.NewFieldError(instrument.ErrInvalidArgument, "quantity", "must be > 0, got %v", quantity)
	}
	m, err := model(inst)
	if err != nil {
		return decimal.Zero, err
	}
	return m.unitValue().Mul(quantity).RoundBank(Decimals), nil
}

// PositionSize returns the quantity risking 'risk' when the price moves
// 'stop' units (pips, points or price, see PipValue) against the trade.
//
// The quantity is rounded to 2 decimals, and is at least MinQuantity: a
// risk too small for the stop is rounded up to it.
func PositionSize(inst instrument.Instrument, risk, stop decimal.Decimal) (decimal.Decimal, error) {
	if !risk.IsPositive() {
		return decimal.Zero, instrument.NewFieldError(instrument.ErrInvalidArgument, "risk_amount", "must be > 0, got %v", risk)
	}
	if !stop.IsPositive() {
		return decimal.Zero, instrument.NewFieldError(instrument.ErrInvalidArgument, "stop_distance", "must be > 0, got %v", stop)
	}
	m, err := model(inst)
	if err != nil {
		return decimal.Zero, err
	}
	quantity := risk.DivRound(stop.Mul(m.unitValue()), ExitDecimals).RoundBank(Decimals)
	return decimal.Max(quantity, MinQuantity), nil
}

// unitValue is the exact value of a one unit move on one unit of quantity.
func (p pricing) unitValue() decimal.Decimal {
	if p.unit == Pips {
		return p.factor.Mul(p.pip)
	}
	return p.factor
}
