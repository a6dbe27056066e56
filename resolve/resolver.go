package resolve

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/search"
)

// MatchType tells which strategy found a match.
type MatchType int

const (
	Exact     MatchType = iota + 1 // canonical symbol.
	BrokerMap                      // broker alias or broker symbol pattern.
	Alias                          // catalog nickname, or decorated symbol.
	Fuzzy                          // full text search.
)

// Scores given by each strategy. Fuzzy matches get FuzzyWeight times the
// search score.
const (
	ExactScore     = 100.0
	BrokerMapScore = 90.0
	AliasScore     = 80.0
	FuzzyWeight    = 0.7
)

func (t MatchType) String() string {
	switch t {
	case Exact:
		return "EXACT"
	case BrokerMap:
		return "BROKER_MAP"
	case Alias:
		return "ALIAS"
	case Fuzzy:
		return "FUZZY"
	}
	return fmt.Sprintf("MatchType(%d)", int(t))
}

// Match is a resolved candidate.
type Match struct {
	Instrument instrument.Instrument
	Type       MatchType
	Score      float64 // in [0, 100].
}

// Config bounds the resolver.
type Config struct {
	DefaultLimit int // used when Options.Limit is 0. Defaults to 20.
	MaxLimit     int // upper bound of Options.Limit. Defaults to 200.
}

// DefaultConfig is the configuration used for zero fields.
var DefaultConfig = Config{DefaultLimit: 20, MaxLimit: 200}

// Options are per call options.
type Options struct {
	BrokerID string // enables broker aliases, e.g. "oanda".
	Limit    int    // 0 means Config.DefaultLimit.
}

// Resolver resolves queries against the current snapshot of a Store.
//
// It is safe for concurrent use.
type Resolver struct {
	store   *Store
	config  Config
	metrics *Metrics
}

// New returns a resolver reading from 'store'. metrics can be nil. A nil
// store resolves like a store without snapshot.
func New(store *Store, config Config, metrics *Metrics) *Resolver {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = DefaultConfig.DefaultLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = DefaultConfig.MaxLimit
	}
	config.DefaultLimit = min(config.DefaultLimit, config.MaxLimit)
	return &Resolver{store: store, config: config, metrics: metrics}
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config { return r.config }

// Resolve returns the instruments 'query' may stand for, best first.
//
// Every strategy runs, and an instrument found by several of them keeps its
// best score. Ties are broken by symbol then id. An empty query always
// returns an empty list.
func (r *Resolver) Resolve(query string, opts Options) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Match{}, nil
	}
	limit, err := r.limit(opts.Limit)
	if err != nil {
		return nil, err
	}
	snap := r.store.Current()
	if snap.Empty() {
		return nil, instrument.ErrEmptyCatalog
	}

	best := make(map[instrument.ID]Match)
	add := func(in instrument.Instrument, t MatchType, score float64) {
		if !in.Active {
			return
		}
		if m, exists := best[in.ID]; exists && m.Score >= score {
			return
		}
		best[in.ID] = Match{Instrument: in, Type: t, Score: score}
	}

	// 1. canonical symbol.
	if in, err := snap.Catalog.GetBySymbol(query); err == nil {
		add(in, Exact, ExactScore)
	}

	// 2. broker aliases.
	if opts.BrokerID != "" {
		if in, err := snap.Mapper.Resolve(opts.BrokerID, query); err == nil {
			add(in, BrokerMap, BrokerMapScore)
		}
	}

	// 3. nicknames, and the symbol without broker decorations.
	for _, in := range snap.Catalog.ByAlias(query) {
		add(in, Alias, AliasScore)
	}
	if stripped := instrument.StripSymbol(query); stripped != "" {
		if in, err := snap.Catalog.GetBySymbol(stripped); err == nil {
			add(in, Alias, AliasScore)
		}
		for _, in := range snap.Catalog.ByAlias(stripped) {
			add(in, Alias, AliasScore)
		}
	}

	// 4. full text. A query the search syntax rejects, like a bare "OR",
	// can still be a symbol or an alias.
	hits, err := snap.Index.Query(query, r.config.MaxLimit)
	if err != nil && len(best) == 0 {
		return nil, fmt.Errorf("cannot resolve %q: %w", query, err)
	}
	for _, h := range hits {
		add(h.Instrument, Fuzzy, fuzzyScore(h))
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, compareMatches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	r.metrics.observeResolve(matches)
	return matches, nil
}

// limit returns the effective limit for a requested one.
func (r *Resolver) limit(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, instrument.NewFieldError(instrument.ErrInvalidArgument, "limit", "must be >= 0, got %d", requested)
	case requested == 0:
		return r.config.DefaultLimit, nil
	}
	return min(requested, r.config.MaxLimit), nil
}

func fuzzyScore(h search.Hit) float64 {
	return math.Round(h.Score*FuzzyWeight*100) / 100
}

// compareMatches orders by descending score, then symbol, then id.
func compareMatches(a, b Match) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return instrument.CompareInstruments(a.Instrument, b.Instrument)
}
