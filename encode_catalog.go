package instrument

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// This file contains code to persist the catalog in a folder, in a way that is
// still human-readable and git-friendly: one JSONL file per kind of record.
//
//   instruments.jsonl: one instrument per line.
//   aliases.jsonl:     one {"broker","symbol","instrument"} mapping per line.
//   brokers.jsonl:     one broker profile per line.
//
// Files are written sorted, so that a re-encode of an unchanged catalog is a
// no-op for version control.

const (
	InstrumentsFile = "instruments.jsonl"
	AliasesFile     = "aliases.jsonl"
	BrokersFile     = "brokers.jsonl"
)

// jinstrument is the object read from the instruments file using json parser.
type jinstrument struct {
	ID            string           `json:"id"`
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Class         AssetClass       `json:"class"`
	PipSize       *decimal.Decimal `json:"pip_size,omitempty"`
	TickValue     *decimal.Decimal `json:"tick_value,omitempty"`
	ContractSize  *decimal.Decimal `json:"contract_size,omitempty"`
	PriceDecimals *int32           `json:"price_decimals,omitempty"`
	Category      string           `json:"category,omitempty"`
	Active        *bool            `json:"active,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	Aliases       []string         `json:"aliases,omitempty"`
	Description   string           `json:"description,omitempty"`
}

// instrument converts the json form, applying defaults for missing fields: an
// instrument is active, with a contract size and a tick value of 1, and the
// price precision of its pip size.
func (j jinstrument) instrument() Instrument {
	in := Instrument{
		ID:           ID(j.ID),
		Symbol:       j.Symbol,
		Name:         j.Name,
		Class:        j.Class,
		TickValue:    decimal.NewFromInt(1),
		ContractSize: decimal.NewFromInt(1),
		Category:     j.Category,
		Active:       true,
		Currency:     j.Currency,
		Aliases:      j.Aliases,
		Description:  j.Description,
	}
	if j.PipSize != nil {
		in.PipSize = *j.PipSize
		in.PriceDecimals = -in.PipSize.Exponent()
		if in.PriceDecimals < 0 {
			in.PriceDecimals = 0
		}
	}
	if j.TickValue != nil {
		in.TickValue = *j.TickValue
	}
	if j.ContractSize != nil {
		in.ContractSize = *j.ContractSize
	}
	if j.PriceDecimals != nil {
		in.PriceDecimals = *j.PriceDecimals
	}
	if j.Active != nil {
		in.Active = *j.Active
	}
	return in
}

// MarshalJSON encodes an instrument in the instruments file format, fields in
// a stable order.
func (in Instrument) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", in.ID)
	w.Append("symbol", in.Symbol)
	w.Optional("name", in.Name)
	w.Append("class", in.Class)
	w.Decimal("pip_size", in.PipSize)
	w.Decimal("tick_value", in.TickValue)
	w.Decimal("contract_size", in.ContractSize)
	w.Append("price_decimals", in.PriceDecimals)
	w.Optional("category", in.Category)
	w.Append("active", in.Active)
	w.Optional("currency", in.Currency)
	w.Optional("aliases", in.Aliases)
	w.Optional("description", in.Description)
	return w.MarshalJSON()
}

// UnmarshalJSON decodes an instrument from the instruments file format.
func (in *Instrument) UnmarshalJSON(data []byte) error {
	var j jinstrument
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*in = j.instrument()
	return nil
}

// scanLines calls 'f' for each non empty line of 'r', with its 1-based number.
func scanLines(r io.Reader, f func(i int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := f(i, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// DecodeInstruments reads an instruments JSONL stream into 'c'.
// filename is for error message only.
//
// An active instrument whose symbol is already held is skipped with a warning,
// any other invalid instrument is an error.
func DecodeInstruments(filename string, r io.Reader, c *Catalog) error {
	return scanLines(r, func(i int, line []byte) error {
		var in Instrument
		if err := json.Unmarshal(line, &in); err != nil {
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		if err := c.Upsert(in); err != nil {
			if errors.Is(err, ErrConflict) {
				log.Printf("format error %s:%d: %v, skipped", filename, i, err)
				return nil
			}
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		return nil
	})
}

// DecodeAliases reads an aliases JSONL stream into 'm'.
func DecodeAliases(filename string, r io.Reader, m *Mapper) error {
	type jalias struct {
		Broker     string `json:"broker"`
		Symbol     string `json:"symbol"`
		Instrument string `json:"instrument"`
	}
	return scanLines(r, func(i int, line []byte) error {
		var ja jalias
		if err := json.Unmarshal(line, &ja); err != nil {
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		if err := m.Register(ja.Broker, ja.Symbol, ID(ja.Instrument)); err != nil {
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		return nil
	})
}

// jbroker is the object read from the brokers file using json parser.
type jbroker struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ImportFormats []string  `json:"import_formats,omitempty"`
	Patterns      []Pattern `json:"patterns,omitempty"`
}

// DecodeBrokers reads a brokers JSONL stream into 'm'.
func DecodeBrokers(filename string, r io.Reader, m *Mapper) error {
	return scanLines(r, func(i int, line []byte) error {
		var jb jbroker
		if err := json.Unmarshal(line, &jb); err != nil {
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		b := Broker{
			ID:            jb.ID,
			Name:          jb.Name,
			Description:   jb.Description,
			ImportFormats: jb.ImportFormats,
			Patterns:      jb.Patterns,
		}
		if err := m.RegisterBroker(b); err != nil {
			return fmt.Errorf("format error %s:%d: %w", filename, i, err)
		}
		return nil
	})
}

// DecodeCatalog reads a catalog folder and returns the catalog and its mapper.
//
// Missing files are treated as empty: a folder without any file is an empty
// catalog.
func DecodeCatalog(folder string) (*Catalog, *Mapper, error) {
	c := NewCatalog()
	m := NewMapper(c)

	// order matters: aliases refer to instruments.
	steps := []struct {
		name   string
		decode func(filename string, r io.Reader) error
	}{
		{InstrumentsFile, func(f string, r io.Reader) error { return DecodeInstruments(f, r, c) }},
		{BrokersFile, func(f string, r io.Reader) error { return DecodeBrokers(f, r, m) }},
		{AliasesFile, func(f string, r io.Reader) error { return DecodeAliases(f, r, m) }},
	}
	for _, step := range steps {
		filename := filepath.Join(folder, step.name)
		f, err := os.Open(filename)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, nil, fmt.Errorf("load error: cannot open %q: %w", filename, err)
		}
		err = step.decode(filename, f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("load error: %w", err)
		}
	}
	return c, m, nil
}

// Persist section.

// EncodeInstruments writes every instrument of 'c', sorted by symbol.
func EncodeInstruments(w io.Writer, c *Catalog) error {
	return encodeLines(w, c.List(Filter{}))
}

// EncodeAliases writes every alias of 'm', sorted by broker and symbol.
func EncodeAliases(w io.Writer, m *Mapper) error {
	type jalias struct {
		Broker     string `json:"broker"`
		Symbol     string `json:"symbol"`
		Instrument ID     `json:"instrument"`
	}
	list := make([]jalias, 0, m.Len())
	for _, a := range m.Aliases() {
		list = append(list, jalias{a.Broker, a.Symbol, a.Instrument})
	}
	return encodeLines(w, list)
}

// EncodeBrokers writes every broker profile of 'm', sorted by id.
func EncodeBrokers(w io.Writer, m *Mapper) error {
	brokers := m.Brokers()
	list := make([]jbroker, 0, len(brokers))
	for _, b := range brokers {
		list = append(list, jbroker{b.ID, b.Name, b.Description, b.ImportFormats, b.Patterns})
	}
	return encodeLines(w, list)
}

func encodeLines[T any](w io.Writer, list []T) error {
	for _, v := range list {
		line, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cannot encode %v: %w", v, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// EncodeCatalog writes the catalog and mapper into 'folder', creating it if needed.
func EncodeCatalog(folder string, c *Catalog, m *Mapper) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("cannot create catalog folder %q: %w", folder, err)
	}
	steps := []struct {
		name   string
		encode func(w io.Writer) error
	}{
		{InstrumentsFile, func(w io.Writer) error { return EncodeInstruments(w, c) }},
		{BrokersFile, func(w io.Writer) error { return EncodeBrokers(w, m) }},
		{AliasesFile, func(w io.Writer) error { return EncodeAliases(w, m) }},
	}
	for _, step := range steps {
		var buf bytes.Buffer
		if err := step.encode(&buf); err != nil {
			return err
		}
		filename := filepath.Join(folder, step.name)
		if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("cannot write %q: %w", filename, err)
		}
	}
	return nil
}
