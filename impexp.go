package instrument

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// this file contains functions to import instruments from catalogs exported by
// brokers or data vendors. Each one has its own layout, so rows are selected
// with a JSONPath expression and columns are matched loosely by name.

// ImportOptions configures ImportJSON.
type ImportOptions struct {
	// Path selects the rows, e.g. "$.instruments[*]" or "$.data.symbols". Defaults to "$[*]".
	Path string
	// Class is used for rows without a recognizable asset class. Zero means such rows are an error.
	Class AssetClass
	// Category is used for rows without a category.
	Category string
}

// columns lists, for each instrument field, the column names it can be read from.
// Names are compared after trimJSONKey.
var columns = map[string][]string{
	"id":             {"id", "instrumentid", "uid"},
	"symbol":         {"symbol", "ticker", "code", "instrument"},
	"name":           {"name", "displayname", "fullname"},
	"class":          {"class", "assetclass", "type", "instrumenttype"},
	"pip_size":       {"pipsize", "pip", "piportticksize", "pipsizeorticksize", "piporticksize"},
	"tick_value":     {"tickvalue", "pointvalue"},
	"pip_value":      {"pipvalue"}, // currency per pip and lot.
	"contract_size":  {"contractsize", "lotsize", "multiplier"},
	"price_decimals": {"pricedecimals", "digits", "precision"},
	"category":       {"category", "group", "sector"},
	"currency":       {"currency", "quotecurrency", "profitcurrency"},
	"aliases":        {"aliases", "nicknames"},
	"description":    {"description", "notes"},
}

// classSynonyms maps the free text classes found in exports to asset classes.
var classSynonyms = map[string]AssetClass{
	"forex": Forex, "fx": Forex, "currency": Forex, "currencies": Forex,
	"index": Index, "indices": Index, "indexes": Index, "idx": Index,
	"crypto": Crypto, "cryptocurrency": Crypto, "cryptos": Crypto,
	"stock": Stock, "stocks": Stock, "equity": Stock, "equities": Stock, "share": Stock, "shares": Stock,
	"commodity": Commodity, "commodities": Commodity, "metal": Commodity, "metals": Commodity, "energy": Commodity, "energies": Commodity,
}

// ImportJSON reads a JSON document from 'r' and returns the instruments found
// in the rows selected by opts.Path. Instruments are not validated: that is
// the job of Catalog.Upsert.
func ImportJSON(r io.Reader, opts ImportOptions) ([]Instrument, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse import document: %w", err)
	}

	path := opts.Path
	if path == "" {
		path = "$[*]"
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select rows with %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer.
	rows, ok := selected.([]any)
	if !ok {
		rows = []any{selected}
	}

	list := make([]Instrument, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d selected by %q is not an object: %w", i, path, ErrInvalidArgument)
		}
		in, err := importRow(obj, opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		list = append(list, in)
	}
	return list, nil
}

// importRow converts a single row.
func importRow(obj map[string]any, opts ImportOptions) (Instrument, error) {
	// index the row by loose column name.
	row := make(map[string]any, len(obj))
	for k, v := range obj {
		row[trimJSONKey(k)] = v
	}
	get := func(field string) (any, bool) {
		for _, name := range columns[field] {
			if v, ok := row[name]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}
	text := func(field string) string {
		v, ok := get(field)
		if !ok {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
	number := func(field string, def decimal.Decimal) (decimal.Decimal, error) {
		v, ok := get(field)
		if !ok {
			return def, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return def, NewFieldError(ErrInvalidArgument, field, "not a number: %v", v)
		}
		return d, nil
	}

	in := Instrument{
		Symbol:      text("symbol"),
		Name:        text("name"),
		Category:    text("category"),
		Currency:    strings.ToUpper(text("currency")),
		Description: text("description"),
		Active:      true,
	}
	if in.Symbol == "" {
		return Instrument{}, NewFieldError(ErrInvalidArgument, "symbol", "missing in row %v", obj)
	}
	in.ID = ID(text("id"))
	if in.ID == "" {
		in.ID = ID(NormalizeSymbol(in.Symbol))
	}
	if in.Category == "" {
		in.Category = opts.Category
	}

	in.Class = classSynonyms[trimJSONKey(text("class"))]
	if in.Class == 0 {
		in.Class = opts.Class
	}
	if in.Class == 0 {
		return Instrument{}, NewFieldError(ErrInvalidArgument, "class", "unknown asset class %q for %s", text("class"), in.Symbol)
	}

	var err error
	if in.PipSize, err = number("pip_size", decimal.Zero); err != nil {
		return Instrument{}, err
	}
	if in.TickValue, err = number("tick_value", decimal.NewFromInt(1)); err != nil {
		return Instrument{}, err
	}
	if in.ContractSize, err = number("contract_size", decimal.NewFromInt(1)); err != nil {
		return Instrument{}, err
	}
	if _, ok := get("tick_value"); !ok {
		pipValue, err := number("pip_value", decimal.Zero)
		if err != nil {
			return Instrument{}, err
		}
		if pipValue.IsPositive() {
			in.TickValue = pipValue
			if in.Class == Forex && in.PipSize.IsPositive() {
				// a FOREX pip is worth pip_size × tick_value × 1000.
				in.TickValue = pipValue.DivRound(in.PipSize.Mul(decimal.NewFromInt(1000)), 16)
			}
		}
	}
	if s := text("price_decimals"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Instrument{}, NewFieldError(ErrInvalidArgument, "price_decimals", "not an integer: %q", s)
		}
		in.PriceDecimals = int32(n)
	} else if in.PipSize.IsPositive() {
		in.PriceDecimals = max(-in.PipSize.Exponent(), 0)
	}

	if v, ok := get("aliases"); ok {
		switch a := v.(type) {
		case []any:
			for _, s := range a {
				in.Aliases = append(in.Aliases, fmt.Sprint(s))
			}
		case string:
			for _, s := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ';' }) {
				in.Aliases = append(in.Aliases, strings.TrimSpace(s))
			}
		}
	}
	return in, nil
}

// trimJSONKey is used to compare loosely named columns.
func trimJSONKey(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}
