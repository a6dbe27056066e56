package instrument

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog holds canonical instruments, indexed by id, by normalized symbol and
// by nickname.
//
// A Catalog is filled at seed time with Upsert. It is not safe for concurrent
// use: readers go through an immutable snapshot (see package resolve).
type Catalog struct {
	instruments map[ID]Instrument
	symbols     map[string][]ID // normalized symbol -> holders, active or not.
	aliases     map[string][]ID // normalized nickname -> instruments.
}

// NewCatalog returns a new empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		instruments: make(map[ID]Instrument),
		symbols:     make(map[string][]ID),
		aliases:     make(map[string][]ID),
	}
}

// Len returns the number of instruments, active or not.
func (c *Catalog) Len() int { return len(c.instruments) }

// Has reports whether an instrument with this id exists.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.instruments[id]
	return ok
}

// Get returns the instrument with this id.
func (c *Catalog) Get(id ID) (Instrument, error) {
	in, ok := c.instruments[id]
	if !ok {
		return Instrument{}, fmt.Errorf("instrument id %q: %w", id, ErrNotFound)
	}
	return in.clone(), nil
}

// GetBySymbol returns the instrument holding this symbol. The lookup is case
// and white space insensitive.
//
// An active instrument always wins over inactive ones sharing the symbol.
func (c *Catalog) GetBySymbol(symbol string) (Instrument, error) {
	in, ok := c.bySymbol(NormalizeSymbol(symbol))
	if !ok {
		return Instrument{}, fmt.Errorf("instrument symbol %q: %w", symbol, ErrNotFound)
	}
	return in.clone(), nil
}

// bySymbol looks up an already normalized symbol.
func (c *Catalog) bySymbol(sym string) (Instrument, bool) {
	var found Instrument
	ok := false
	for _, id := range c.symbols[sym] {
		in := c.instruments[id]
		if in.Active {
			return in, true
		}
		if !ok {
			found, ok = in, true
		}
	}
	return found, ok
}

// ByAlias returns the instruments that declare 'name' as a nickname, sorted by
// symbol.
func (c *Catalog) ByAlias(name string) []Instrument {
	ids := c.aliases[NormalizeSymbol(name)]
	list := make([]Instrument, 0, len(ids))
	for _, id := range ids {
		list = append(list, c.instruments[id].clone())
	}
	sortInstruments(list)
	return list
}

// Filter selects instruments in List. Nil fields do not filter.
type Filter struct {
	Category *string // case-insensitive.
	Active   *bool
	Class    *AssetClass
}

// List returns the instruments matching 'f', sorted by symbol then id.
func (c *Catalog) List(f Filter) []Instrument {
	list := make([]Instrument, 0, len(c.instruments))
	for _, in := range c.instruments {
		if f.Category != nil && !strings.EqualFold(in.Category, *f.Category) {
			continue
		}
		if f.Active != nil && in.Active != *f.Active {
			continue
		}
		if f.Class != nil && in.Class != *f.Class {
			continue
		}
		list = append(list, in.clone())
	}
	sortInstruments(list)
	return list
}

// Upsert inserts or replaces the instrument with the same id.
//
// It is a seed-time operation. The instrument is normalized first, then
// validated; an active instrument cannot take the symbol of another active
// instrument.
func (c *Catalog) Upsert(in Instrument) error {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("cannot upsert instrument: %w", err)
	}
	if in.Active {
		for _, id := range c.symbols[in.Symbol] {
			if id != in.ID && c.instruments[id].Active {
				return fmt.Errorf("cannot upsert %q: symbol %q already held by active instrument %q: %w", in.ID, in.Symbol, id, ErrConflict)
			}
		}
	}

	if old, exists := c.instruments[in.ID]; exists {
		c.unindex(old)
	}
	in = in.clone()
	c.instruments[in.ID] = in
	c.symbols[in.Symbol] = insertID(c.symbols[in.Symbol], in.ID)
	for _, a := range in.Aliases {
		c.aliases[a] = insertID(c.aliases[a], in.ID)
	}
	return nil
}

// unindex removes 'in' from the symbol and alias indexes.
func (c *Catalog) unindex(in Instrument) {
	c.symbols[in.Symbol] = removeID(c.symbols[in.Symbol], in.ID)
	if len(c.symbols[in.Symbol]) == 0 {
		delete(c.symbols, in.Symbol)
	}
	for _, a := range in.Aliases {
		c.aliases[a] = removeID(c.aliases[a], in.ID)
		if len(c.aliases[a]) == 0 {
			delete(c.aliases, a)
		}
	}
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	n := &Catalog{
		instruments: make(map[ID]Instrument, len(c.instruments)),
		symbols:     make(map[string][]ID, len(c.symbols)),
		aliases:     make(map[string][]ID, len(c.aliases)),
	}
	for id, in := range c.instruments {
		n.instruments[id] = in.clone()
	}
	for k, ids := range c.symbols {
		n.symbols[k] = slices.Clone(ids)
	}
	for k, ids := range c.aliases {
		n.aliases[k] = slices.Clone(ids)
	}
	return n
}

// insertID inserts 'id' in the sorted list 'ids' if missing.
func insertID(ids []ID, id ID) []ID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

// removeID removes 'id' from the sorted list 'ids'.
func removeID(ids []ID, id ID) []ID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}

// sortInstruments sorts by symbol then id, the deterministic order used everywhere.
func sortInstruments(list []Instrument) {
	slices.SortFunc(list, CompareInstruments)
}

// CompareInstruments orders instruments by symbol, then by id.
func CompareInstruments(a, b Instrument) int {
	if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	return strings.Compare(string(a.ID), string(b.ID))
}
