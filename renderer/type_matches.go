package renderer

import (
	"fmt"

	"github.com/etnz/instrument/resolve"
)

// Matches is the view of a resolution.
type Matches struct {
	Query  string
	Broker string
	Rows   []MatchRow
}

// MatchRow is a ranked match.
type MatchRow struct {
	Rank   int
	Symbol string
	Name   string
	Class  string
	Type   string
	Score  string
	ID     string
}

// NewMatches returns the view of 'matches', the resolution of 'query' at 'broker'.
func NewMatches(query, broker string, matches []resolve.Match) *Matches {
	m := &Matches{Query: query, Broker: broker}
	for i, match := range matches {
		m.Rows = append(m.Rows, MatchRow{
			Rank:   i + 1,
			Symbol: cell(match.Instrument.Symbol),
			Name:   cell(match.Instrument.Name),
			Class:  match.Instrument.Class.String(),
			Type:   match.Type.String(),
			Score:  fmt.Sprintf("%.2f", match.Score),
			ID:     cell(match.Instrument.ID.String()),
		})
	}
	return m
}
