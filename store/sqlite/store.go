// Package sqlite stores a catalog seed in a SQLite database, an alternative
// to the JSONL catalog folder for seeding jobs that share a database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/etnz/instrument"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a catalog seed stored in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at 'path'. Call Migrate before the
// first Load or Save.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// seeding is single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS instruments (
			id             TEXT    NOT NULL PRIMARY KEY,
			symbol         TEXT    NOT NULL,
			name           TEXT    NOT NULL DEFAULT '',
			class          TEXT    NOT NULL,
			pip_size       TEXT    NOT NULL DEFAULT '0',
			tick_value     TEXT    NOT NULL DEFAULT '1',
			contract_size  TEXT    NOT NULL DEFAULT '1',
			price_decimals INTEGER NOT NULL DEFAULT 0,
			category       TEXT    NOT NULL DEFAULT '',
			active         INTEGER NOT NULL DEFAULT 1,
			currency       TEXT    NOT NULL DEFAULT '',
			aliases        TEXT    NOT NULL DEFAULT '[]',
			description    TEXT    NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS instruments_symbol ON instruments (symbol);

		CREATE TABLE IF NOT EXISTS brokers (
			id             TEXT NOT NULL PRIMARY KEY,
			name           TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			import_formats TEXT NOT NULL DEFAULT '[]',
			patterns       TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS aliases (
			broker     TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			instrument TEXT NOT NULL REFERENCES instruments (id),
			PRIMARY KEY (broker, symbol)
		);
	`)
	if err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}

// Save replaces the stored seed with 'c' and 'm', in a single transaction.
func (s *Store) Save(ctx context.Context, c *instrument.Catalog, m *instrument.Mapper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"aliases", "brokers", "instruments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite clear %s: %w", table, err)
		}
	}

	instruments := c.List(instrument.Filter{})
	for _, in := range instruments {
		aliases, err := json.Marshal(nonNil(in.Aliases))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO instruments (id, symbol, name, class, pip_size, tick_value, contract_size, price_decimals, category, active, currency, aliases, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(in.ID), in.Symbol, in.Name, in.Class.String(),
			in.PipSize.String(), in.TickValue.String(), in.ContractSize.String(), in.PriceDecimals,
			in.Category, in.Active, in.Currency, string(aliases), in.Description)
		if err != nil {
			return fmt.Errorf("sqlite insert instrument %q: %w", in.ID, err)
		}
	}

	brokers := m.Brokers()
	for _, b := range brokers {
		formats, err := json.Marshal(nonNil(b.ImportFormats))
		if err != nil {
			return err
		}
		patterns, err := json.Marshal(nonNil(b.Patterns))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO brokers (id, name, description, import_formats, patterns) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Description, string(formats), string(patterns))
		if err != nil {
			return fmt.Errorf("sqlite insert broker %q: %w", b.ID, err)
		}
	}

	aliases := m.Aliases()
	for _, a := range aliases {
		_, err := tx.ExecContext(ctx, `INSERT INTO aliases (broker, symbol, instrument) VALUES (?, ?, ?)`,
			a.Broker, a.Symbol, string(a.Instrument))
		if err != nil {
			return fmt.Errorf("sqlite insert alias (%s, %s): %w", a.Broker, a.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	log.Printf("[sqlite] saved %d instruments, %d brokers, %d aliases to %s", len(instruments), len(brokers), len(aliases), s.path)
	return nil
}

// Load reads the stored seed. Rows are validated exactly like a JSONL seed.
func (s *Store) Load(ctx context.Context) (*instrument.Catalog, *instrument.Mapper, error) {
	c := instrument.NewCatalog()
	m := instrument.NewMapper(c)
	if err := s.loadInstruments(ctx, c); err != nil {
		return nil, nil, err
	}
	if err := s.loadBrokers(ctx, m); err != nil {
		return nil, nil, err
	}
	if err := s.loadAliases(ctx, m); err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

func (s *Store) loadInstruments(ctx context.Context, c *instrument.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, name, class, pip_size, tick_value, contract_size, price_decimals, category, active, currency, aliases, description
		FROM instruments
		ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("sqlite query instruments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			in                  instrument.Instrument
			id, class, aliases  string
			pip, tick, contract string
		)
		if err := rows.Scan(&id, &in.Symbol, &in.Name, &class, &pip, &tick, &contract, &in.PriceDecimals, &in.Category, &in.Active, &in.Currency, &aliases, &in.Description); err != nil {
			return fmt.Errorf("sqlite scan instruments: %w", err)
		}
		in.ID = instrument.ID(id)
		if in.Class, err = instrument.ParseAssetClass(class); err != nil {
			return fmt.Errorf("sqlite instrument %q: %w", id, err)
		}
		for field, dst := range map[string]struct {
			text string
			d    *decimal.Decimal
		}{
			"pip_size":      {pip, &in.PipSize},
			"tick_value":    {tick, &in.TickValue},
			"contract_size": {contract, &in.ContractSize},
		} {
			if *dst.d, err = decimal.NewFromString(dst.text); err != nil {
				return fmt.Errorf("sqlite instrument %q: %w", id, instrument.NewFieldError(instrument.ErrConfiguration, field, "not a number: %q", dst.text))
			}
		}
		if err := json.Unmarshal([]byte(aliases), &in.Aliases); err != nil {
			return fmt.Errorf("sqlite instrument %q: aliases: %w", id, err)
		}
		if err := c.Upsert(in); err != nil {
			return fmt.Errorf("sqlite instrument %q: %w", id, err)
		}
	}
	return rows.Err()
}

func (s *Store) loadBrokers(ctx context.Context, m *instrument.Mapper) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, import_formats, patterns FROM brokers ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("sqlite query brokers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b instrument.Broker
		var formats, patterns string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &formats, &patterns); err != nil {
			return fmt.Errorf("sqlite scan brokers: %w", err)
		}
		if err := json.Unmarshal([]byte(formats), &b.ImportFormats); err != nil {
			return fmt.Errorf("sqlite broker %q: import formats: %w", b.ID, err)
		}
		if err := json.Unmarshal([]byte(patterns), &b.Patterns); err != nil {
			return fmt.Errorf("sqlite broker %q: patterns: %w", b.ID, err)
		}
		if err := m.RegisterBroker(b); err != nil {
			return fmt.Errorf("sqlite broker %q: %w", b.ID, err)
		}
	}
	return rows.Err()
}

func (s *Store) loadAliases(ctx context.Context, m *instrument.Mapper) error {
	rows, err := s.db.QueryContext(ctx, `SELECT broker, symbol, instrument FROM aliases ORDER BY broker, symbol`)
	if err != nil {
		return fmt.Errorf("sqlite query aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var broker, symbol, id string
		if err := rows.Scan(&broker, &symbol, &id); err != nil {
			return fmt.Errorf("sqlite scan aliases: %w", err)
		}
		if err := m.Register(broker, symbol, instrument.ID(id)); err != nil {
			return fmt.Errorf("sqlite alias (%s, %s): %w", broker, symbol, err)
		}
	}
	return rows.Err()
}

// nonNil returns an empty slice for nil, so that it is stored as [] and not null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
