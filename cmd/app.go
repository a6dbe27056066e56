// Package cmd implements the CLI application to resolve instruments and
// preview trade economics.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/instrument"
	"github.com/etnz/instrument/resolve"
	"github.com/etnz/instrument/store/sqlite"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EnvCatalogDir = "ICS_CATALOG_DIR"
	EnvSQLite     = "ICS_SQLITE"

	// DefaultCatalogDir is the catalog folder used when neither the flag nor
	// the environment name one.
	DefaultCatalogDir = "catalog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&searchCmd{}, "resolution")
	c.Register(&resolveCmd{}, "resolution")
	c.Register(&mapReportCmd{}, "resolution")

	c.Register(&showCmd{}, "catalog")
	c.Register(&listCmd{}, "catalog")
	c.Register(&brokersCmd{}, "catalog")
	c.Register(&importCmd{}, "catalog")
	c.Register(&fmtCmd{}, "catalog")

	c.Register(&pnlCmd{}, "economics")
	c.Register(&exitCmd{}, "economics")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var catalogDir = flag.String("catalog-dir", "", "Path to the catalog folder. Defaults to $"+EnvCatalogDir+", then \""+DefaultCatalogDir+"\".")
var sqlitePath = flag.String("sqlite", "", "Path to a SQLite catalog, used instead of the catalog folder. Defaults to $"+EnvSQLite+".")
var brokerID = flag.String("broker", "", "Broker the queried symbols come from, e.g. oanda.")
var limit = flag.Int("limit", 0, "Maximum number of matches. 0 means the resolver default.")
var maxLimit = flag.Int("max-limit", resolve.DefaultConfig.MaxLimit, "Upper bound of -limit.")
var metricsTextfile = flag.String("metrics-textfile", "", "Write resolver metrics to this file, in the Prometheus text format.")
var raw = flag.Bool("raw", false, "Print markdown as is, without terminal rendering.")
var verbose = flag.Bool("v", false, "Log catalog loading and snapshot publication.")

// stdout is where commands print their results.
var stdout io.Writer = os.Stdout

// LoadEnv loads the optional .env file of the working directory. Variables
// already set in the environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning, cannot load .env: %v", err)
	}
}

// SetupLogging silences the library logs unless -v is set. Call it after
// flag.Parse.
func SetupLogging() {
	if *verbose {
		return
	}
	// also redirects the log package.
	slog.SetDefault(slog.New(slog.DiscardHandler))
}

// CatalogDir returns the catalog folder in use.
func CatalogDir() string {
	if *catalogDir != "" {
		return *catalogDir
	}
	if dir := os.Getenv(EnvCatalogDir); dir != "" {
		return dir
	}
	return DefaultCatalogDir
}

// SQLitePath returns the SQLite catalog in use, or "" to use the catalog folder.
func SQLitePath() string {
	if *sqlitePath != "" {
		return *sqlitePath
	}
	return os.Getenv(EnvSQLite)
}

// DecodeCatalog loads the catalog and its mapper from the SQLite catalog if
// any, from the catalog folder otherwise.
func DecodeCatalog(ctx context.Context) (*instrument.Catalog, *instrument.Mapper, error) {
	path := SQLitePath()
	if path == "" {
		return instrument.DecodeCatalog(CatalogDir())
	}
	s, err := openSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// EncodeCatalog saves the catalog and its mapper where DecodeCatalog loads them.
func EncodeCatalog(ctx context.Context, c *instrument.Catalog, m *instrument.Mapper) error {
	path := SQLitePath()
	if path == "" {
		return instrument.EncodeCatalog(CatalogDir(), c, m)
	}
	s, err := openSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(ctx, c, m)
}

func openSQLite(ctx context.Context, path string) (*sqlite.Store, error) {
	s, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// session is a published snapshot of the catalog and the resolver reading it.
type session struct {
	snapshot *resolve.Snapshot
	resolver *resolve.Resolver
	registry *prometheus.Registry
}

// openSession loads the catalog and publishes its snapshot.
func openSession(ctx context.Context) (*session, error) {
	c, m, err := DecodeCatalog(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := resolve.Build(c, m)
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	metrics := resolve.NewMetrics(registry)
	store := resolve.NewStore(metrics)
	store.Publish(snap)
	r := resolve.New(store, resolve.Config{MaxLimit: *maxLimit}, metrics)
	return &session{snapshot: snap, resolver: r, registry: registry}, nil
}

// close writes the metrics textfile, if requested.
func (s *session) close() {
	if *metricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(*metricsTextfile, s.registry); err != nil {
		log.Printf("warning, cannot write metrics to %q: %v", *metricsTextfile, err)
	}
}

// lookup returns the instrument named by 'name': an id, a canonical symbol,
// or the best resolution of 'name'.
func (s *session) lookup(name string) (instrument.Instrument, error) {
	if in, err := s.snapshot.Catalog.Get(instrument.ID(name)); err == nil {
		return in, nil
	}
	if in, err := s.snapshot.Catalog.GetBySymbol(name); err == nil {
		return in, nil
	}
	matches, err := s.resolver.Resolve(name, resolve.Options{BrokerID: *brokerID, Limit: 1})
	if err != nil {
		return instrument.Instrument{}, err
	}
	if len(matches) == 0 {
		return instrument.Instrument{}, fmt.Errorf("instrument %q: %w", name, instrument.ErrNotFound)
	}
	return matches[0].Instrument, nil
}

// printMarkdown prints 'md' to stdout, rendered for the terminal unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
