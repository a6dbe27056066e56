// Package instrumenttest provides a small, realistic catalog for tests.
package instrumenttest

import (
	"github.com/etnz/instrument"
	"github.com/shopspring/decimal"
)

var (
	EURUSD = instrument.Instrument{ID: "fx-eurusd", Symbol: "EURUSD", Name: "Euro / US Dollar", Class: instrument.Forex, PipSize: d("0.0001"), TickValue: d("10"), ContractSize: d("100000"), PriceDecimals: 5, Category: "Forex", Active: true, Currency: "USD"}
	GBPUSD = instrument.Instrument{ID: "fx-gbpusd", Symbol: "GBPUSD", Name: "British Pound / US Dollar", Class: instrument.Forex, PipSize: d("0.0001"), TickValue: d("10"), ContractSize: d("100000"), PriceDecimals: 5, Category: "Forex", Active: true, Currency: "USD"}
	EURGBP = instrument.Instrument{ID: "fx-eurgbp", Symbol: "EURGBP", Name: "Euro / British Pound", Class: instrument.Forex, PipSize: d("0.0001"), TickValue: d("10"), ContractSize: d("100000"), PriceDecimals: 5, Category: "Forex", Active: true, Currency: "GBP"}
	USDJPY = instrument.Instrument{ID: "fx-usdjpy", Symbol: "USDJPY", Name: "US Dollar / Japanese Yen", Class: instrument.Forex, PipSize: d("0.01"), TickValue: d("10"), ContractSize: d("100000"), PriceDecimals: 3, Category: "Forex", Active: true, Currency: "JPY"}
	XAUUSD = instrument.Instrument{ID: "cm-xauusd", Symbol: "XAUUSD", Name: "Gold / US Dollar", Class: instrument.Commodity, PipSize: d("0.01"), TickValue: d("1"), ContractSize: d("100"), PriceDecimals: 2, Category: "Metals", Active: true, Currency: "USD", Aliases: []string{"GOLD"}}
	USOIL  = instrument.Instrument{ID: "cm-usoil", Symbol: "USOIL", Name: "WTI Crude Oil", Class: instrument.Commodity, TickValue: d("1"), ContractSize: d("1000"), PriceDecimals: 2, Category: "Energies", Active: true, Currency: "USD", Aliases: []string{"WTI", "OIL"}}
	US500  = instrument.Instrument{ID: "ix-us500", Symbol: "US500", Name: "S&P 500 Index", Class: instrument.Index, TickValue: d("1"), ContractSize: d("1"), PriceDecimals: 2, Category: "Indices", Active: true, Currency: "USD", Aliases: []string{"SPX", "SP500"}}
	NAS100 = instrument.Instrument{ID: "ix-nas100", Symbol: "NAS100", Name: "Nasdaq 100 Index", Class: instrument.Index, TickValue: d("10"), ContractSize: d("1"), PriceDecimals: 2, Category: "Indices", Active: true, Currency: "USD", Aliases: []string{"USTEC", "US100"}}
	BTCUSD = instrument.Instrument{ID: "cr-btcusd", Symbol: "BTCUSD", Name: "Bitcoin / US Dollar", Class: instrument.Crypto, TickValue: d("1"), ContractSize: d("1"), PriceDecimals: 2, Category: "Crypto", Active: true, Currency: "USD", Aliases: []string{"XBT"}}
	ETHUSD = instrument.Instrument{ID: "cr-ethusd", Symbol: "ETHUSD", Name: "Ethereum / US Dollar", Class: instrument.Crypto, TickValue: d("1"), ContractSize: d("1"), PriceDecimals: 2, Category: "Crypto", Active: true, Currency: "USD"}
	AAPL   = instrument.Instrument{ID: "st-aapl", Symbol: "AAPL", Name: "Apple Inc.", Class: instrument.Stock, TickValue: d("1"), ContractSize: d("1"), PriceDecimals: 2, Category: "Stocks", Active: true, Currency: "USD"}
	// EURUSDOld is an inactive instrument that used to hold the EURUSD symbol.
	EURUSDOld = instrument.Instrument{ID: "fx-eurusd-2019", Symbol: "EURUSD", Name: "Euro / US Dollar (legacy)", Class: instrument.Forex, PipSize: d("0.0001"), TickValue: d("10"), ContractSize: d("100000"), PriceDecimals: 5, Category: "Forex", Active: false, Currency: "USD"}
)

// Instruments returns every fixture, active or not.
func Instruments() []instrument.Instrument {
	return []instrument.Instrument{EURUSD, GBPUSD, EURGBP, USDJPY, XAUUSD, USOIL, US500, NAS100, BTCUSD, ETHUSD, AAPL, EURUSDOld}
}

// Brokers returns sample broker profiles.
func Brokers() []instrument.Broker {
	return []instrument.Broker{
		{
			ID:            "oanda",
			Name:          "OANDA",
			ImportFormats: []string{"csv"},
			Patterns:      []instrument.Pattern{{Expr: `^([A-Z]{3})_([A-Z]{3})$`, Canonical: "$1$2"}},
		},
		{
			ID:            "xm",
			Name:          "XM",
			ImportFormats: []string{"mt5"},
			Patterns:      []instrument.Pattern{{Expr: `^([A-Z0-9]+)m$`, Canonical: "$1"}},
		},
	}
}

// Aliases returns sample broker aliases.
func Aliases() []instrument.Alias {
	return []instrument.Alias{
		{Broker: "oanda", Symbol: "SPX500_USD", Instrument: US500.ID},
		{Broker: "oanda", Symbol: "NAS100_USD", Instrument: NAS100.ID},
		{Broker: "oanda", Symbol: "XAU_USD", Instrument: XAUUSD.ID},
		{Broker: "binance", Symbol: "BTCUSDT", Instrument: BTCUSD.ID},
		{Broker: "binance", Symbol: "ETHUSDT", Instrument: ETHUSD.ID},
		{Broker: "xm", Symbol: "GOLD", Instrument: XAUUSD.ID},
		{Broker: "ibkr", Symbol: "ES", Instrument: US500.ID},
	}
}

// Catalog returns a catalog and a mapper filled with the fixtures. It panics
// on error: fixtures are valid.
func Catalog() (*instrument.Catalog, *instrument.Mapper) {
	c := instrument.NewCatalog()
	for _, in := range Instruments() {
		must(c.Upsert(in))
	}
	m := instrument.NewMapper(c)
	for _, b := range Brokers() {
		must(m.RegisterBroker(b))
	}
	for _, a := range Aliases() {
		must(m.Register(a.Broker, a.Symbol, a.Instrument))
	}
	return c, m
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func must(err error) {
	if err != nil {
		panic(err)
	}
}
