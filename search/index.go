// Package search implements an in-memory full-text index over instruments.
//
// The index is built once from a list of instruments and never modified
// afterwards, so it can be queried concurrently without locks.
package search

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/etnz/instrument"
)

// Scores given by the index.
const (
	ExactScore   = 100.0 // the query is the symbol.
	PrefixScore  = 80.0  // the query starts the symbol.
	OverlapScore = 70.0  // upper bound of a token overlap score.
)

// Hit is a ranked search result.
type Hit struct {
	Instrument instrument.Instrument
	Score      float64
}

// document is an indexed instrument.
type document struct {
	inst   instrument.Instrument
	symbol string     // compact symbol, e.g. "eurusd".
	fields [][]string // token sequences, phrases never span two fields.
	tokens []string   // distinct tokens of all fields, sorted.
}

// Index is an inverted index from tokens to instruments.
type Index struct {
	docs     []document
	postings map[string][]int // token -> ascending document numbers.
	terms    []string         // sorted keys of postings.
	symbols  []string         // sorted compact symbols.
	bySymbol map[string][]int // compact symbol -> documents.
}

// Build indexes 'instruments': symbol, name, category and nicknames. Currency
// pairs are also indexed by their base and quote currencies, so that "usd"
// finds "EURUSD".
func Build(instruments []instrument.Instrument) *Index {
	x := &Index{
		docs:     make([]document, 0, len(instruments)),
		postings: make(map[string][]int),
		bySymbol: make(map[string][]int),
	}
	for _, in := range instruments {
		in.Aliases = slices.Clone(in.Aliases)
		d := document{inst: in, symbol: compact(in.Symbol)}
		add := func(s string) {
			if tokens := Tokenize(s); len(tokens) > 0 {
				d.fields = append(d.fields, tokens)
			}
		}
		add(in.Symbol)
		add(in.Name)
		add(in.Category)
		for _, a := range in.Aliases {
			add(a)
		}
		if base, quote, err := in.CurrencyPair(); err == nil {
			add(base + " " + quote)
		}

		n := len(x.docs)
		seen := make(map[string]bool)
		for _, field := range d.fields {
			for _, t := range field {
				if seen[t] {
					continue
				}
				seen[t] = true
				d.tokens = append(d.tokens, t)
				x.postings[t] = append(x.postings[t], n)
			}
		}
		slices.Sort(d.tokens)
		if d.symbol != "" {
			x.bySymbol[d.symbol] = append(x.bySymbol[d.symbol], n)
		}
		x.docs = append(x.docs, d)
	}
	x.terms = slices.Sorted(maps.Keys(x.postings))
	x.symbols = slices.Sorted(maps.Keys(x.bySymbol))
	return x
}

// Len returns the number of indexed instruments.
func (x *Index) Len() int { return len(x.docs) }

// Query returns at most 'limit' instruments matching 'text', best first.
//
// Ties are broken by ascending symbol then id. An empty text matches nothing.
func (x *Index) Query(text string, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("search limit must be > 0, got %d: %w", limit, instrument.ErrInvalidArgument)
	}
	q, err := parse(text)
	if err != nil {
		return nil, err
	}

	scores := make(map[int]float64)
	for _, c := range q.clauses {
		for _, n := range x.evaluate(c) {
			s := x.score(n, c)
			if old, exists := scores[n]; !exists || s > old {
				scores[n] = s
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for n, s := range scores {
		in := x.docs[n].inst
		in.Aliases = slices.Clone(in.Aliases)
		hits = append(hits, Hit{Instrument: in, Score: s})
	}
	slices.SortFunc(hits, compareHits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// compareHits orders by descending score, then symbol, then id.
func compareHits(a, b Hit) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return instrument.CompareInstruments(a.Instrument, b.Instrument)
}

// evaluate returns the documents matching every positive term of 'c' and no
// negative one.
func (x *Index) evaluate(c clause) []int {
	positives := c.positives()
	if len(positives) == 0 {
		return nil
	}
	var docs []int
	for _, n := range x.candidates(positives[0]) {
		if x.matchAll(n, c) {
			docs = append(docs, n)
		}
	}
	return docs
}

func (x *Index) matchAll(n int, c clause) bool {
	for _, t := range c.terms {
		if x.matches(n, t) == t.negate {
			return false
		}
	}
	return true
}

// candidates returns the documents that may match 't', a superset of the
// documents matching it.
func (x *Index) candidates(t term) []int {
	set := make(map[int]bool)
	first := t.tokens[0]
	if len(first) >= minPrefix {
		lo, hi := prefixRange(x.terms, first)
		for _, token := range x.terms[lo:hi] {
			for _, n := range x.postings[token] {
				set[n] = true
			}
		}
	} else {
		for _, n := range x.postings[first] {
			set[n] = true
		}
	}
	lo, hi := prefixRange(x.symbols, t.compact)
	for _, sym := range x.symbols[lo:hi] {
		for _, n := range x.bySymbol[sym] {
			set[n] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// matches reports whether document 'n' matches 't', ignoring negation.
func (x *Index) matches(n int, t term) bool {
	d := x.docs[n]
	if strings.HasPrefix(d.symbol, t.compact) {
		return true
	}
	for _, field := range d.fields {
		if containsPhrase(field, t.tokens) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether 'phrase' matches consecutive tokens of 'field'.
func containsPhrase(field, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(field); i++ {
		ok := true
		for j, q := range phrase {
			if !tokenMatch(q, field[i+j]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// score scores document 'n' for the clause 'c' it matches.
func (x *Index) score(n int, c clause) float64 {
	d := x.docs[n]
	var sb strings.Builder
	var tokens []string
	for _, t := range c.positives() {
		sb.WriteString(t.compact)
		for _, q := range t.tokens {
			if !slices.Contains(tokens, q) {
				tokens = append(tokens, q)
			}
		}
	}
	switch q := sb.String(); {
	case q == d.symbol:
		return ExactScore
	case strings.HasPrefix(d.symbol, q):
		return PrefixScore
	}
	return overlapScore(tokens, d.tokens)
}

// overlapScore is the cosine-like similarity between the query tokens and the
// document tokens, scaled to OverlapScore and rounded to 2 decimals.
func overlapScore(query, doc []string) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	overlap := 0
	for _, q := range query {
		if slices.ContainsFunc(doc, func(t string) bool { return tokenMatch(q, t) }) {
			overlap++
		}
	}
	s := OverlapScore * float64(overlap) / math.Sqrt(float64(len(query)*len(doc)))
	s = math.Round(s*100) / 100
	return min(s, OverlapScore)
}
