package resolve_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/instrumenttest"
	"github.com/etnz/instrument/resolve"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newResolver returns a resolver over the fixtures.
func newResolver(t *testing.T, config resolve.Config, metrics *resolve.Metrics) *resolve.Resolver {
	t.Helper()
	c, m := instrumenttest.Catalog()
	snap, err := resolve.Build(c, m)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	store := resolve.NewStore(metrics)
	store.Publish(snap)
	return resolve.New(store, config, metrics)
}

type result struct {
	Symbol string
	Type   resolve.MatchType
	Score  float64
}

func results(matches []resolve.Match) []result {
	list := []result{}
	for _, m := range matches {
		list = append(list, result{m.Instrument.Symbol, m.Type, m.Score})
	}
	return list
}

func TestResolver_Resolve(t *testing.T) {
	r := newResolver(t, resolve.Config{}, nil)
	tests := []struct {
		query  string
		broker string
		want   []result
	}{
		{"EURUSD", "", []result{{"EURUSD", resolve.Exact, 100}}},
		{" eurusd ", "oanda", []result{{"EURUSD", resolve.Exact, 100}}},
		{"eur_usd", "", []result{{"EURUSD", resolve.Alias, 80}}},
		{"EUR_USD", "oanda", []result{{"EURUSD", resolve.BrokerMap, 90}}},
		{"SPX500_USD", "oanda", []result{{"US500", resolve.BrokerMap, 90}}},
		{"BTCUSDT", "binance", []result{{"BTCUSD", resolve.BrokerMap, 90}}},
		{"gold", "", []result{{"XAUUSD", resolve.Alias, 80}}},
		{"xauusd.pro", "", []result{{"XAUUSD", resolve.Alias, 80}}},
		{"eur", "", []result{{"EURGBP", resolve.Fuzzy, 56}, {"EURUSD", resolve.Fuzzy, 56}}},
		{"crude oil", "", []result{{"USOIL", resolve.Fuzzy, 30.99}}},
		{"nothing like it", "", []result{}},
		{"", "", []result{}},
		{"   ", "oanda", []result{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := r.Resolve(tt.query, resolve.Options{BrokerID: tt.broker})
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.query, err)
			}
			if diff := cmp.Diff(tt.want, results(got)); diff != "" {
				t.Errorf("Resolve(%q, %q) mismatch (-want +got):\n%s", tt.query, tt.broker, diff)
			}
		})
	}
}

func TestResolver_ExactRanksFirst(t *testing.T) {
	r := newResolver(t, resolve.Config{}, nil)
	for _, in := range instrumenttest.Instruments() {
		if !in.Active {
			continue
		}
		got, err := r.Resolve(in.Symbol, resolve.Options{})
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", in.Symbol, err)
		}
		if len(got) == 0 || got[0].Instrument.ID != in.ID || got[0].Type != resolve.Exact || got[0].Score != 100 {
			t.Errorf("Resolve(%q) = %v, want %s first with EXACT 100", in.Symbol, results(got), in.ID)
		}
	}
}

func TestResolver_OnlyActive(t *testing.T) {
	r := newResolver(t, resolve.Config{}, nil)
	for _, q := range []string{"eurusd", "euro", "legacy", "eur OR usd"} {
		got, err := r.Resolve(q, resolve.Options{Limit: 200})
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", q, err)
		}
		for _, m := range got {
			if !m.Instrument.Active {
				t.Errorf("Resolve(%q) returned inactive %s", q, m.Instrument.ID)
			}
		}
	}
}

func TestResolver_Limit(t *testing.T) {
	r := newResolver(t, resolve.Config{MaxLimit: 3}, nil)
	got, err := r.Resolve("us", resolve.Options{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []result{{"US500", resolve.Fuzzy, 56}, {"USDJPY", resolve.Fuzzy, 56}}
	if diff := cmp.Diff(want, results(got)); diff != "" {
		t.Errorf("Resolve(us, 2) mismatch (-want +got):\n%s", diff)
	}

	got, err = r.Resolve("us", resolve.Options{Limit: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len(Resolve(us, 1000)) = %d, want MaxLimit 3", len(got))
	}
	// the default limit never exceeds the max limit.
	if cfg := r.Config(); cfg.DefaultLimit != 3 {
		t.Errorf("Config().DefaultLimit = %d, want 3", cfg.DefaultLimit)
	}

	if _, err := r.Resolve("us", resolve.Options{Limit: -1}); !errors.Is(err, instrument.ErrInvalidArgument) {
		t.Errorf("Resolve(us, -1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestResolver_Errors(t *testing.T) {
	r := newResolver(t, resolve.Config{}, nil)
	if _, err := r.Resolve(`"eur`, resolve.Options{}); !errors.Is(err, instrument.ErrInvalidArgument) {
		t.Errorf("Resolve(unterminated quote) error = %v, want ErrInvalidArgument", err)
	}

	empty := resolve.New(&resolve.Store{}, resolve.Config{}, nil)
	if _, err := empty.Resolve("EURUSD", resolve.Options{}); !errors.Is(err, instrument.ErrEmptyCatalog) {
		t.Errorf("Resolve() without snapshot error = %v, want ErrEmptyCatalog", err)
	}
	if !errors.Is(instrument.ErrEmptyCatalog, instrument.ErrConfiguration) {
		t.Errorf("ErrEmptyCatalog does not wrap ErrConfiguration")
	}
	// empty queries never fail.
	if got, err := empty.Resolve("", resolve.Options{}); err != nil || len(got) != 0 {
		t.Errorf("Resolve(\"\") = %v, %v, want an empty list", got, err)
	}

	// a catalog of inactive instruments has nothing to resolve to.
	c := instrument.NewCatalog()
	if err := c.Upsert(instrumenttest.EURUSDOld); err != nil {
		t.Fatal(err)
	}
	snap, err := resolve.Build(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	store := resolve.NewStore(nil)
	store.Publish(snap)
	if _, err := resolve.New(store, resolve.Config{}, nil).Resolve("EURUSD", resolve.Options{}); !errors.Is(err, instrument.ErrEmptyCatalog) {
		t.Errorf("Resolve() on inactive catalog error = %v, want ErrEmptyCatalog", err)
	}
}

func TestResolver_KeywordSymbols(t *testing.T) {
	osisko, andlauer := instrumenttest.AAPL, instrumenttest.AAPL
	osisko.ID, osisko.Symbol, osisko.Name = "st-or", "OR", "Osisko Gold Royalties"
	andlauer.ID, andlauer.Symbol, andlauer.Name = "st-and", "AND", "Andlauer Healthcare"
	c := instrument.NewCatalog()
	for _, in := range []instrument.Instrument{osisko, andlauer, instrumenttest.AAPL} {
		if err := c.Upsert(in); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := resolve.Build(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	store := resolve.NewStore(nil)
	store.Publish(snap)
	r := resolve.New(store, resolve.Config{}, nil)

	// search operators are also symbols.
	for _, query := range []string{"OR", "AND", "or"} {
		got, err := r.Resolve(query, resolve.Options{})
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", query, err)
			continue
		}
		if len(got) == 0 || got[0].Type != resolve.Exact || got[0].Score != resolve.ExactScore {
			t.Errorf("Resolve(%q) = %v, want an exact match first", query, results(got))
		}
	}

	// without any other candidate the search syntax error is returned.
	if _, err := r.Resolve("-", resolve.Options{}); !errors.Is(err, instrument.ErrInvalidArgument) {
		t.Errorf("Resolve(-) error = %v, want ErrInvalidArgument", err)
	}

	report, err := r.Report([]string{"OR", "AND"}, "")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Mapped) != 2 || len(report.Unmapped) != 0 {
		t.Errorf("Report(OR, AND) mapped %d, unmapped %v, want 2 mapped", len(report.Mapped), report.Unmapped)
	}
}

func TestResolver_NilStore(t *testing.T) {
	r := resolve.New(nil, resolve.Config{}, nil)
	if _, err := r.Resolve("EURUSD", resolve.Options{}); !errors.Is(err, instrument.ErrEmptyCatalog) {
		t.Errorf("Resolve() with a nil store error = %v, want ErrEmptyCatalog", err)
	}
}

func TestBuild(t *testing.T) {
	c, m := instrumenttest.Catalog()
	a, err := resolve.Build(c, m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := resolve.Build(c, m)
	if err != nil {
		t.Fatal(err)
	}
	if b.Version <= a.Version {
		t.Errorf("versions %d then %d, want increasing", a.Version, b.Version)
	}
	if a.Index.Len() != c.Len()-1 {
		t.Errorf("Index.Len() = %d, want %d active instruments", a.Index.Len(), c.Len()-1)
	}

	other, _ := instrumenttest.Catalog()
	if _, err := resolve.Build(other, m); !errors.Is(err, instrument.ErrConfiguration) {
		t.Errorf("Build(other catalog) error = %v, want ErrConfiguration", err)
	}
	if _, err := resolve.Build(nil, nil); !errors.Is(err, instrument.ErrEmptyCatalog) {
		t.Errorf("Build(nil) error = %v, want ErrEmptyCatalog", err)
	}
}

func TestRebuild_KeepsReturnedValues(t *testing.T) {
	c, m := instrumenttest.Catalog()
	store := resolve.NewStore(nil)
	snap, _ := resolve.Build(c, m)
	store.Publish(snap)
	r := resolve.New(store, resolve.Config{}, nil)

	before, err := r.Resolve("XAUUSD", resolve.Options{})
	if err != nil {
		t.Fatal(err)
	}

	// the seed changes, and a new snapshot is published.
	updated := instrumenttest.XAUUSD
	updated.Name = "Gold Spot"
	updated.Aliases = []string{"BULLION"}
	if err := c.Upsert(updated); err != nil {
		t.Fatal(err)
	}
	// the published snapshot is not affected by the catalog update.
	if got, _ := r.Resolve("XAUUSD", resolve.Options{}); got[0].Instrument.Name != instrumenttest.XAUUSD.Name {
		t.Errorf("snapshot sees catalog updates before publication: %q", got[0].Instrument.Name)
	}
	next, _ := resolve.Build(c, m)
	store.Publish(next)

	after, err := r.Resolve("XAUUSD", resolve.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if after[0].Instrument.Name != "Gold Spot" {
		t.Errorf("Resolve() after rebuild = %q, want the updated name", after[0].Instrument.Name)
	}
	if diff := cmp.Diff([]string{"GOLD"}, before[0].Instrument.Aliases); diff != "" || before[0].Instrument.Name != instrumenttest.XAUUSD.Name {
		t.Errorf("a rebuild changed a returned instrument: %+v", before[0].Instrument)
	}
	// and the old snapshot still answers with the old values.
	if in, _ := snap.Catalog.Get(instrumenttest.XAUUSD.ID); in.Name != instrumenttest.XAUUSD.Name {
		t.Errorf("old snapshot changed: %q", in.Name)
	}
}

func TestResolver_ConcurrentPublish(t *testing.T) {
	c, m := instrumenttest.Catalog()
	store := resolve.NewStore(nil)
	snap, _ := resolve.Build(c, m)
	store.Publish(snap)
	r := resolve.New(store, resolve.Config{}, nil)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				got, err := r.Resolve("EURUSD", resolve.Options{BrokerID: "oanda"})
				if err != nil || len(got) == 0 || got[0].Instrument.ID != instrumenttest.EURUSD.ID {
					t.Errorf("concurrent Resolve() = %v, %v", results(got), err)
					return
				}
			}
		}()
	}
	for range 20 {
		next, err := resolve.Build(c, m)
		if err != nil {
			t.Error(err)
			break
		}
		store.Publish(next)
	}
	wg.Wait()
}

func TestResolver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := resolve.NewMetrics(reg)
	r := newResolver(t, resolve.Config{}, metrics)

	if got := testutil.ToFloat64(metrics.SnapshotsPublished); got != 1 {
		t.Errorf("SnapshotsPublished = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.Instruments.WithLabelValues("inactive")); got != 1 {
		t.Errorf("Instruments{inactive} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.Aliases); got != float64(len(instrumenttest.Aliases())) {
		t.Errorf("Aliases = %v, want %d", got, len(instrumenttest.Aliases()))
	}

	for _, q := range []string{"EURUSD", "AAPL", "gold", "zzz"} {
		if _, err := r.Resolve(q, resolve.Options{}); err != nil {
			t.Fatal(err)
		}
	}
	for label, want := range map[string]float64{"EXACT": 2, "ALIAS": 1, "none": 1} {
		if got := testutil.ToFloat64(metrics.Resolutions.WithLabelValues(label)); got != want {
			t.Errorf("Resolutions{%s} = %v, want %v", label, got, want)
		}
	}
}

func TestResolver_Report(t *testing.T) {
	r := newResolver(t, resolve.Config{}, nil)
	report, err := r.Report([]string{"EUR_USD", "SPX500_USD", "euro", "DOGEUSDT", "", "EUR_USD", `"bad`}, "oanda")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.Total != 5 {
		t.Errorf("Total = %d, want 5", report.Total)
	}
	var mapped []string
	for _, m := range report.Mapped {
		mapped = append(mapped, m.Symbol+"="+m.Match.Instrument.Symbol)
	}
	if diff := cmp.Diff([]string{"EUR_USD=EURUSD", "SPX500_USD=US500"}, mapped); diff != "" {
		t.Errorf("Mapped mismatch (-want +got):\n%s", diff)
	}
	if len(report.LowConfidence) != 1 || report.LowConfidence[0].Match.Type != resolve.Fuzzy {
		t.Errorf("LowConfidence = %+v, want euro as a fuzzy match", report.LowConfidence)
	}
	if diff := cmp.Diff([]string{"DOGEUSDT", `"bad`}, report.Unmapped); diff != "" {
		t.Errorf("Unmapped mismatch (-want +got):\n%s", diff)
	}
	if got := report.Rate(); got != 0.4 {
		t.Errorf("Rate() = %v, want 0.4", got)
	}

	empty := resolve.New(&resolve.Store{}, resolve.Config{}, nil)
	if _, err := empty.Report([]string{"EURUSD"}, ""); !errors.Is(err, instrument.ErrEmptyCatalog) {
		t.Errorf("Report() without snapshot error = %v, want ErrEmptyCatalog", err)
	}
}
