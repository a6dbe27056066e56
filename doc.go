// Package instrument provides the catalog of tradable instruments used to
// resolve free-text or broker-supplied symbols and to compute exact trade
// economics.
//
// The core functionalities include:
//   - Instrument Catalog: canonical instrument records with stable identity and
//     constant time lookup by id or by normalized symbol.
//   - Broker Symbol Mapping: linking a broker-local symbol (e.g. "EUR_USD" at
//     OANDA) to one canonical instrument, through explicit aliases or broker
//     symbol patterns.
//   - Seed Formats: encoding and decoding the catalog to and from human-readable,
//     version-controllable JSONL files, and importing rows from broker exports.
//
// The search index lives in package search, the hybrid resolver and the
// immutable snapshots it reads from live in package resolve, and profit/loss
// computation lives in package pnl.
//
// A Catalog and a Mapper are mutable and are only meant to be filled by a
// seeding step. Readers never use them directly: they use a snapshot built
// from them, which is never modified afterwards.
package instrument
