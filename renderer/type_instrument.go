package renderer

import (
	"strings"

	"github.com/etnz/instrument"
)

// InstrumentDetail is the view of a single instrument.
type InstrumentDetail struct {
	ID            string
	Symbol        string
	Name          string
	Class         string
	Category      string
	Status        string
	Currency      string
	PipSize       string
	TickValue     string
	ContractSize  string
	PriceDecimals int32
	Nicknames     string
	Description   string
	BrokerAliases []BrokerAlias
}

// BrokerAlias is a broker symbol of an instrument.
type BrokerAlias struct {
	Broker string
	Symbol string
}

// NewInstrumentDetail returns the view of 'in'. 'aliases' are filtered to
// the ones of 'in'.
func NewInstrumentDetail(in instrument.Instrument, aliases []instrument.Alias) *InstrumentDetail {
	d := &InstrumentDetail{
		ID:            cell(in.ID.String()),
		Symbol:        cell(in.Symbol),
		Name:          cell(in.Name),
		Class:         in.Class.String(),
		Category:      cell(in.Category),
		Status:        status(in.Active),
		Currency:      in.Currency,
		PipSize:       "-",
		TickValue:     in.TickValue.String(),
		ContractSize:  in.ContractSize.String(),
		PriceDecimals: in.PriceDecimals,
		Nicknames:     cell(strings.Join(in.Aliases, ", ")),
		Description:   in.Description,
	}
	if in.PipSize.IsPositive() {
		d.PipSize = in.PipSize.String()
	}
	for _, a := range aliases {
		if a.Instrument == in.ID {
			d.BrokerAliases = append(d.BrokerAliases, BrokerAlias{Broker: cell(a.Broker), Symbol: cell(a.Symbol)})
		}
	}
	return d
}

// List is the view of a list of instruments.
type List struct {
	Title string
	Rows  []ListRow
}

// ListRow is a line of a List.
type ListRow struct {
	Symbol   string
	ID       string
	Name     string
	Class    string
	Category string
	Status   string
}

// NewList returns the view of 'list'.
func NewList(title string, list []instrument.Instrument) *List {
	l := &List{Title: title}
	for _, in := range list {
		l.Rows = append(l.Rows, ListRow{
			Symbol:   cell(in.Symbol),
			ID:       cell(in.ID.String()),
			Name:     cell(in.Name),
			Class:    in.Class.String(),
			Category: cell(in.Category),
			Status:   status(in.Active),
		})
	}
	return l
}

func status(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
