package resolve

import (
	"log/slog"
	"sync/atomic"
)

// Store holds the current snapshot. Its zero value is ready to use and holds
// no snapshot.
//
// Publish and Current are safe for concurrent use; publishing never blocks
// readers.
type Store struct {
	current atomic.Pointer[Snapshot]
	metrics *Metrics
}

// NewStore returns an empty store reporting to 'metrics', which can be nil.
func NewStore(metrics *Metrics) *Store {
	return &Store{metrics: metrics}
}

// Publish makes 'snap' the current snapshot. Publishing nil withdraws the
// current snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
	if snap == nil {
		slog.Warn("snapshot withdrawn")
		return
	}
	s.metrics.observePublish(snap)
	slog.Info("snapshot published",
		slog.Uint64("version", snap.Version),
		slog.Int("instruments", snap.Catalog.Len()),
		slog.Int("active", snap.Index.Len()),
		slog.Int("aliases", snap.Mapper.Len()),
		slog.Duration("build_duration", snap.Duration),
	)
}

// Current returns the current snapshot, nil if none was published or if s
// is nil.
func (s *Store) Current() *Snapshot {
	if s == nil {
		return nil
	}
	return s.current.Load()
}
