package instrument

import (
	"fmt"
	"slices"
	"strings"
)

// Alias maps a broker-local symbol to a canonical instrument.
type Alias struct {
	Broker     string
	Symbol     string // as the broker writes it.
	Instrument ID
}

// aliasKey is the normalized (broker, symbol) pair.
type aliasKey struct {
	broker string
	symbol string
}

func keyOf(broker, symbol string) aliasKey {
	return aliasKey{broker: normalizeBroker(broker), symbol: NormalizeSymbol(symbol)}
}

// brokerProfile is a registered broker with its compiled patterns.
type brokerProfile struct {
	Broker
	patterns []compiledPattern
}

// Mapper maps (broker, broker symbol) pairs to the instruments of a catalog.
//
// Like the Catalog, it is filled at seed time and read through snapshots.
type Mapper struct {
	catalog *Catalog
	aliases map[aliasKey]Alias
	brokers map[string]*brokerProfile
}

// NewMapper returns an empty mapper bound to 'catalog'.
func NewMapper(catalog *Catalog) *Mapper {
	return &Mapper{
		catalog: catalog,
		aliases: make(map[aliasKey]Alias),
		brokers: make(map[string]*brokerProfile),
	}
}

// Register maps 'symbol' at 'broker' to the instrument 'id'.
//
// Registering the same mapping twice is a no-op; mapping the pair to a
// different instrument is an ErrConflict.
func (m *Mapper) Register(broker, symbol string, id ID) error {
	k := keyOf(broker, symbol)
	if k.broker == "" || k.symbol == "" || id == "" {
		return fmt.Errorf("cannot register alias (%q, %q) -> %q: broker, symbol and instrument are required: %w", broker, symbol, id, ErrInvalidArgument)
	}
	if existing, ok := m.aliases[k]; ok {
		if existing.Instrument == id {
			return nil
		}
		return fmt.Errorf("alias (%s, %s) already maps to %q, cannot map it to %q: %w", k.broker, k.symbol, existing.Instrument, id, ErrConflict)
	}
	if !m.catalog.Has(id) {
		return fmt.Errorf("cannot register alias (%s, %s): instrument id %q: %w", k.broker, k.symbol, id, ErrNotFound)
	}
	m.aliases[k] = Alias{Broker: k.broker, Symbol: strings.TrimSpace(symbol), Instrument: id}
	return nil
}

// RegisterBroker adds or replaces a broker profile.
func (m *Mapper) RegisterBroker(b Broker) error {
	b.ID = normalizeBroker(b.ID)
	if b.ID == "" {
		return NewFieldError(ErrInvalidArgument, "broker_id", "must not be empty")
	}
	p := &brokerProfile{Broker: b}
	for _, pat := range b.Patterns {
		cp, err := compilePattern(pat)
		if err != nil {
			return fmt.Errorf("broker %q: %w", b.ID, err)
		}
		p.patterns = append(p.patterns, cp)
	}
	p.Broker.Patterns = slices.Clone(b.Patterns)
	p.Broker.ImportFormats = slices.Clone(b.ImportFormats)
	m.brokers[b.ID] = p
	return nil
}

// Resolve returns the instrument 'symbol' stands for at 'broker'.
//
// Explicit aliases come first, then the broker's symbol patterns.
func (m *Mapper) Resolve(broker, symbol string) (Instrument, error) {
	k := keyOf(broker, symbol)
	if a, ok := m.aliases[k]; ok {
		return m.catalog.Get(a.Instrument)
	}
	if p, ok := m.brokers[k.broker]; ok {
		for _, pat := range p.patterns {
			canonical, ok := pat.expand(strings.TrimSpace(symbol))
			if !ok {
				continue
			}
			if in, found := m.catalog.bySymbol(canonical); found {
				return in.clone(), nil
			}
		}
	}
	return Instrument{}, fmt.Errorf("broker symbol (%s, %s): %w", k.broker, k.symbol, ErrNotFound)
}

// Broker returns the profile of a registered broker.
func (m *Mapper) Broker(id string) (Broker, bool) {
	p, ok := m.brokers[normalizeBroker(id)]
	if !ok {
		return Broker{}, false
	}
	return p.Broker, true
}

// Brokers returns every registered broker profile, sorted by id.
func (m *Mapper) Brokers() []Broker {
	list := make([]Broker, 0, len(m.brokers))
	for _, p := range m.brokers {
		list = append(list, p.Broker)
	}
	slices.SortFunc(list, func(a, b Broker) int { return strings.Compare(a.ID, b.ID) })
	return list
}

// Aliases returns every registered alias, sorted by broker then symbol.
func (m *Mapper) Aliases() []Alias {
	list := make([]Alias, 0, len(m.aliases))
	for _, a := range m.aliases {
		list = append(list, a)
	}
	slices.SortFunc(list, func(a, b Alias) int {
		if c := strings.Compare(a.Broker, b.Broker); c != 0 {
			return c
		}
		return strings.Compare(NormalizeSymbol(a.Symbol), NormalizeSymbol(b.Symbol))
	})
	return list
}

// Len returns the number of registered aliases.
func (m *Mapper) Len() int { return len(m.aliases) }

// Catalog returns the catalog the mapper resolves into.
func (m *Mapper) Catalog() *Catalog { return m.catalog }

// Clone returns a copy of the mapper bound to 'catalog', usually a clone of
// the original catalog.
func (m *Mapper) Clone(catalog *Catalog) *Mapper {
	n := &Mapper{
		catalog: catalog,
		aliases: make(map[aliasKey]Alias, len(m.aliases)),
		brokers: make(map[string]*brokerProfile, len(m.brokers)),
	}
	for k, a := range m.aliases {
		n.aliases[k] = a
	}
	for id, p := range m.brokers {
		cp := *p
		cp.patterns = slices.Clone(p.patterns)
		n.brokers[id] = &cp
	}
	return n
}
