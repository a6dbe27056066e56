// Package resolve turns free text or broker symbols into ranked canonical
// instruments.
//
// Readers work on a Snapshot: an immutable triple of catalog, broker mapper
// and search index. A seeding job builds a new Snapshot and publishes it in a
// Store; in-flight resolutions keep using the snapshot they started with.
package resolve

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/search"
)

// Snapshot is an immutable view of the catalog. Its Catalog and Mapper must
// not be modified.
type Snapshot struct {
	Catalog  *instrument.Catalog
	Mapper   *instrument.Mapper
	Index    *search.Index // active instruments only.
	Version  uint64        // increases with every Build.
	BuiltAt  time.Time
	Duration time.Duration // time spent building.
}

var lastVersion atomic.Uint64

// Build returns a snapshot of 'catalog' and 'mapper'. Both are copied, so
// they can be modified afterwards to prepare the next snapshot.
//
// mapper can be nil for a catalog without broker aliases.
func Build(catalog *instrument.Catalog, mapper *instrument.Mapper) (*Snapshot, error) {
	if catalog == nil {
		return nil, fmt.Errorf("cannot build snapshot without a catalog: %w", instrument.ErrEmptyCatalog)
	}
	if mapper != nil && mapper.Catalog() != catalog {
		return nil, fmt.Errorf("cannot build snapshot: mapper is bound to another catalog: %w", instrument.ErrConfiguration)
	}
	start := time.Now()
	c := catalog.Clone()
	var m *instrument.Mapper
	if mapper != nil {
		m = mapper.Clone(c)
	} else {
		m = instrument.NewMapper(c)
	}
	yes := true
	snap := &Snapshot{
		Catalog: c,
		Mapper:  m,
		Index:   search.Build(c.List(instrument.Filter{Active: &yes})),
		Version: lastVersion.Add(1),
		BuiltAt: start,
	}
	snap.Duration = time.Since(start)
	return snap, nil
}

// Empty reports whether the snapshot has no active instrument to resolve to.
func (s *Snapshot) Empty() bool { return s == nil || s.Index.Len() == 0 }
