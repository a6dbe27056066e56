package resolve

import (
	"errors"
	"strings"

	"github.com/etnz/instrument"
)

// Mapping is the best match of a broker symbol.
type Mapping struct {
	Symbol string // as given.
	Match  Match
}

// MappingReport summarizes how well a batch of broker symbols maps to the
// catalog, typically the symbols found in a broker export before an import.
type MappingReport struct {
	BrokerID      string
	Total         int
	Mapped        []Mapping // best score >= AliasScore.
	LowConfidence []Mapping // only fuzzy candidates.
	Unmapped      []string  // no candidate at all.
}

// Rate returns the share of mapped symbols, in [0, 1].
func (r MappingReport) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(len(r.Mapped)) / float64(r.Total)
}

// Report maps every symbol of 'symbols' as seen at 'brokerID'. Blank symbols
// are ignored, duplicates are reported once.
//
// The only error is instrument.ErrEmptyCatalog: a symbol that is not a valid
// query is just unmapped.
func (r *Resolver) Report(symbols []string, brokerID string) (MappingReport, error) {
	report := MappingReport{BrokerID: brokerID}
	seen := make(map[string]bool)
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		report.Total++

		matches, err := r.Resolve(s, Options{BrokerID: brokerID, Limit: 1})
		if errors.Is(err, instrument.ErrEmptyCatalog) {
			return MappingReport{}, err
		}
		switch {
		case err != nil || len(matches) == 0:
			report.Unmapped = append(report.Unmapped, s)
		case matches[0].Score >= AliasScore:
			report.Mapped = append(report.Mapped, Mapping{Symbol: s, Match: matches[0]})
		default:
			report.LowConfidence = append(report.LowConfidence, Mapping{Symbol: s, Match: matches[0]})
		}
	}
	return report, nil
}
