package instrument

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetClass is the closed set of asset classes an instrument belongs to.
//
// The zero value is not a valid class, so that an instrument decoded without
// its class is rejected rather than silently treated as a FOREX pair.
type AssetClass int

const (
	Forex AssetClass = iota + 1
	Index
	Crypto
	Stock
	Commodity
)

// AssetClasses lists every valid asset class in declaration order.
var AssetClasses = []AssetClass{Forex, Index, Crypto, Stock, Commodity}

var assetClassNames = map[AssetClass]string{
	Forex:     "FOREX",
	Index:     "INDEX",
	Crypto:    "CRYPTO",
	Stock:     "STOCK",
	Commodity: "COMMODITY",
}

// ParseAssetClass parses the text form of an asset class, case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for c, name := range assetClassNames {
		if name == up {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown asset class %q: %w", s, ErrInvalidArgument)
}

// Valid reports whether c is one of the declared classes.
func (c AssetClass) Valid() bool {
	_, ok := assetClassNames[c]
	return ok
}

func (c AssetClass) String() string {
	if name, ok := assetClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("AssetClass(%d)", int(c))
}

func (c AssetClass) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal %v: %w", c, ErrInvalidArgument)
	}
	return json.Marshal(c.String())
}

func (c *AssetClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseAssetClass(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
