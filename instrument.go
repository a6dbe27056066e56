package instrument

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currencyPairRegex checks for the format: 6 uppercase letters (3 for base, 3 for quote).
var currencyPairRegex = regexp.MustCompile(`^[A-Z]{6}$`)

// currencyCodeRegex checks for the format: 3 uppercase letters.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// DefaultCurrency is the currency P&L is expressed in when an instrument does not say.
const DefaultCurrency = "USD"

// ID is the opaque, stable identifier of an instrument.
//
// It never changes for the lifetime of an instrument, even when its symbol,
// name or metadata are updated by a new seed.
type ID string

// String implements the fmt.Stringer interface.
func (id ID) String() string { return string(id) }

// Instrument is a canonical tradable instrument.
//
// Instruments are values: the catalog hands out copies, so a caller can never
// alter what other readers see.
type Instrument struct {
	ID            ID
	Symbol        string // canonical symbol, normalized (see NormalizeSymbol).
	Name          string
	Class         AssetClass
	PipSize       decimal.Decimal // required and > 0 for Forex only.
	TickValue     decimal.Decimal
	ContractSize  decimal.Decimal
	PriceDecimals int32
	Category      string // display only.
	Active        bool
	Currency      string   // currency the P&L is expressed in.
	Aliases       []string // catalog level nicknames (e.g. "GOLD").
	Description   string
}

// Validate checks the instrument metadata.
//
// Metadata problems (pip size, contract size) are configuration errors: they
// come from bad seed data, not from the caller.
func (in Instrument) Validate() error {
	if in.ID == "" {
		return NewFieldError(ErrInvalidArgument, "id", "must not be empty")
	}
	if NormalizeSymbol(in.Symbol) == "" {
		return NewFieldError(ErrInvalidArgument, "symbol", "must not be empty (instrument %q)", in.ID)
	}
	if !in.Class.Valid() {
		return NewFieldError(ErrConfiguration, "asset_class", "%v is not a valid asset class (instrument %q)", in.Class, in.ID)
	}
	if in.Class == Forex && !in.PipSize.IsPositive() {
		return NewFieldError(ErrConfiguration, "pip_size", "must be > 0 for a FOREX instrument, got %v (instrument %q)", in.PipSize, in.ID)
	}
	if !in.ContractSize.IsPositive() {
		return NewFieldError(ErrConfiguration, "contract_size", "must be > 0, got %v (instrument %q)", in.ContractSize, in.ID)
	}
	if in.PriceDecimals < 0 {
		return NewFieldError(ErrInvalidArgument, "price_decimals", "must be >= 0, got %d (instrument %q)", in.PriceDecimals, in.ID)
	}
	if in.Currency != "" && !currencyCodeRegex.MatchString(in.Currency) {
		return NewFieldError(ErrConfiguration, "currency", "must be 3 uppercase letters, got %q (instrument %q)", in.Currency, in.ID)
	}
	return nil
}

// normalized returns a copy with normalized symbol, currency and aliases.
func (in Instrument) normalized() Instrument {
	in.Symbol = NormalizeSymbol(in.Symbol)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	var aliases []string
	for _, a := range in.Aliases {
		if a = NormalizeSymbol(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	in.Aliases = aliases
	return in
}

// clone returns a copy that shares no memory with in.
func (in Instrument) clone() Instrument {
	if in.Aliases != nil {
		in.Aliases = append([]string(nil), in.Aliases...)
	}
	return in
}

// CurrencyPair returns the base and quote currencies of a FOREX instrument
// whose symbol follows the <Base><Quote> market convention (e.g. "EURUSD").
func (in Instrument) CurrencyPair() (base, quote string, err error) {
	if in.Class != Forex {
		return "", "", fmt.Errorf("%s is a %v instrument, not a currency pair: %w", in.Symbol, in.Class, ErrInvalidArgument)
	}
	if !currencyPairRegex.MatchString(in.Symbol) {
		return "", "", fmt.Errorf("invalid format: currency pair must be 6 uppercase letters, got %q: %w", in.Symbol, ErrInvalidArgument)
	}
	return in.Symbol[:3], in.Symbol[3:], nil
}

// String returns the symbol and the name, for logs and messages.
func (in Instrument) String() string {
	if in.Name == "" {
		return in.Symbol
	}
	return fmt.Sprintf("%s (%s)", in.Symbol, in.Name)
}

// NormalizeSymbol returns the canonical form of a symbol for lookups: upper
// case with every white space removed.
func NormalizeSymbol(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// brokerSuffixes are the account-type suffixes brokers append to symbols.
var brokerSuffixes = regexp.MustCompile(`(?i)(\.(M|PRO|ECN|RAW|STP|C|I|S)|MICRO|MINI)$`)

// symbolSeparators are the characters brokers use to split base and quote.
var symbolSeparators = regexp.MustCompile(`[_/\-.\s]`)

// StripSymbol removes broker decorations from a symbol: account-type suffixes
// ("XAUUSD.pro", "EURUSDmicro") and separators ("EUR_USD", "EUR/USD").
//
// The result is normalized. It is meant for a second chance lookup, it can
// merge symbols that are really different.
func StripSymbol(s string) string {
	s = strings.TrimSpace(s)
	s = brokerSuffixes.ReplaceAllString(s, "")
	return NormalizeSymbol(symbolSeparators.ReplaceAllString(s, ""))
}
