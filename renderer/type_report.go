package renderer

import (
	"fmt"

	"github.com/etnz/instrument/resolve"
)

// Report is the view of a broker mapping report.
type Report struct {
	Broker        string
	Total         int
	MappedCount   int
	LowCount      int
	UnmappedCount int
	Rate          string
	Mapped        []ReportRow
	LowConfidence []ReportRow
	Unmapped      []string
}

// ReportRow is a mapped broker symbol.
type ReportRow struct {
	Symbol    string
	Canonical string
	Type      string
	Score     string
}

// NewReport returns the view of 'r'.
func NewReport(r resolve.MappingReport) *Report {
	v := &Report{
		Broker:        r.BrokerID,
		Total:         r.Total,
		MappedCount:   len(r.Mapped),
		LowCount:      len(r.LowConfidence),
		UnmappedCount: len(r.Unmapped),
		Rate:          fmt.Sprintf("%.1f%%", r.Rate()*100),
	}
	row := func(m resolve.Mapping) ReportRow {
		return ReportRow{
			Symbol:    cell(m.Symbol),
			Canonical: cell(m.Match.Instrument.Symbol),
			Type:      m.Match.Type.String(),
			Score:     fmt.Sprintf("%.2f", m.Match.Score),
		}
	}
	for _, m := range r.Mapped {
		v.Mapped = append(v.Mapped, row(m))
	}
	for _, m := range r.LowConfidence {
		v.LowConfidence = append(v.LowConfidence, row(m))
	}
	for _, s := range r.Unmapped {
		v.Unmapped = append(v.Unmapped, cell(s))
	}
	if v.Broker == "" {
		v.Broker = "any broker"
	}
	return v
}
