package search

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/instrumenttest"
	"github.com/google/go-cmp/cmp"
)

// active returns the active fixtures, as a snapshot indexes them.
func active() []instrument.Instrument {
	var list []instrument.Instrument
	for _, in := range instrumenttest.Instruments() {
		if in.Active {
			list = append(list, in)
		}
	}
	return list
}

type result struct {
	Symbol string
	Score  float64
}

func results(hits []Hit) []result {
	list := []result{}
	for _, h := range hits {
		list = append(list, result{h.Instrument.Symbol, h.Score})
	}
	return list
}

func TestIndex_Query(t *testing.T) {
	x := Build(active())
	tests := []struct {
		query string
		want  []result
	}{
		{"eurusd", []result{{"EURUSD", 100}}},
		{"EUR/USD", []result{{"EURUSD", 100}}},
		{"eur usd", []result{{"EURUSD", 100}}},
		{"eur", []result{{"EURGBP", 80}, {"EURUSD", 80}}},
		{"e", []result{{"ETHUSD", 80}, {"EURGBP", 80}, {"EURUSD", 80}}},
		{"gold", []result{{"XAUUSD", 31.3}}},
		{"crude oil", []result{{"USOIL", 44.27}}},
		{"gold OR oil", []result{{"USOIL", 31.3}, {"XAUUSD", 31.3}}},
		{"euro -gbp", []result{{"EURUSD", 26.46}}},
		{"-gbp", []result{}},
		{"", []result{}},
		{"   ", []result{}},
		{"/", []result{}},
		{"zzz", []result{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hits, err := x.Query(tt.query, 10)
			if err != nil {
				t.Fatalf("Query(%q) error = %v", tt.query, err)
			}
			got := results(hits)
			// overlap scores are rounded to 2 decimals.
			approx := cmp.Comparer(func(a, b float64) bool { return a-b < 0.006 && b-a < 0.006 })
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Query(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestIndex_Query_Phrase(t *testing.T) {
	x := Build(active())
	want := []string{"BTCUSD", "ETHUSD", "EURUSD", "GBPUSD", "USDJPY", "XAUUSD"}

	for _, q := range []string{`"us dollar"`, `dollar us`, `dollar AND us`} {
		hits, err := x.Query(q, 10)
		if err != nil {
			t.Fatalf("Query(%q) error = %v", q, err)
		}
		var got []string
		for _, h := range hits {
			got = append(got, h.Instrument.Symbol)
		}
		slices.Sort(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Query(%q) mismatch (-want +got):\n%s", q, diff)
		}
	}

	hits, err := x.Query(`"dollar us"`, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("Query(\"dollar us\") = %v, want no hits: phrase tokens must be consecutive", results(hits))
	}
}

func TestIndex_Query_Limit(t *testing.T) {
	x := Build(active())
	hits, err := x.Query("us", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []result{{"US500", 80}, {"USDJPY", 80}}
	if diff := cmp.Diff(want, results(hits)); diff != "" {
		t.Errorf("Query(us, 2) mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_Query_Errors(t *testing.T) {
	x := Build(active())
	for _, q := range []string{`"eur`, `eur "usd`, "eur OR", "OR eur", "eur AND", "eur AND OR usd", "eur OR OR usd", "eur -", "- eur"} {
		if _, err := x.Query(q, 10); !errors.Is(err, instrument.ErrInvalidArgument) {
			t.Errorf("Query(%q) error = %v, want ErrInvalidArgument", q, err)
		}
	}
	for _, limit := range []int{0, -1} {
		if _, err := x.Query("eur", limit); !errors.Is(err, instrument.ErrInvalidArgument) {
			t.Errorf("Query(eur, %d) error = %v, want ErrInvalidArgument", limit, err)
		}
	}
}

func TestIndex_TieBreakByID(t *testing.T) {
	// same symbol, different ids: only possible with inactive instruments.
	x := Build(instrumenttest.Instruments())
	hits, err := x.Query("eurusd", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || hits[0].Instrument.ID != instrumenttest.EURUSD.ID || hits[1].Instrument.ID != instrumenttest.EURUSDOld.ID {
		t.Errorf("Query(eurusd) = %v, want fx-eurusd then fx-eurusd-2019", hits)
	}
}

func TestIndex_Deterministic(t *testing.T) {
	a, b := Build(active()), Build(active())
	for _, q := range []string{"us", "eur OR gold", "dollar"} {
		ha, _ := a.Query(q, 20)
		hb, _ := b.Query(q, 20)
		if diff := cmp.Diff(results(ha), results(hb)); diff != "" {
			t.Errorf("Query(%q) differs between two builds:\n%s", q, diff)
		}
	}
}

func TestIndex_Concurrent(t *testing.T) {
	x := Build(active())
	want, _ := x.Query("us", 20)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := x.Query("us", 20)
				if err != nil || len(got) != len(want) {
					t.Errorf("concurrent Query(us) = %d hits, %v, want %d", len(got), err, len(want))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTokenize(t *testing.T) {
	got := Tokenize("S&P 500 / EUR_usd")
	want := []string{"s", "p", "500", "eur", "usd"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}
