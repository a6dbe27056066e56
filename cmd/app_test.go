package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/instrument"
	"github.com/etnz/instrument/instrumenttest"
	"github.com/google/subcommands"
)

// setup writes the test catalog into a temporary folder and points the
// global flags to it. Output is captured as raw markdown.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c, m := instrumenttest.Catalog()
	if err := instrument.EncodeCatalog(dir, c, m); err != nil {
		t.Fatalf("EncodeCatalog() error = %v", err)
	}
	t.Setenv(EnvCatalogDir, "")
	t.Setenv(EnvSQLite, "")

	oldDir, oldSQLite, oldBroker, oldLimit, oldMetrics, oldRaw, oldStdout := *catalogDir, *sqlitePath, *brokerID, *limit, *metricsTextfile, *raw, stdout
	t.Cleanup(func() {
		*catalogDir, *sqlitePath, *brokerID, *limit, *metricsTextfile, *raw, stdout = oldDir, oldSQLite, oldBroker, oldLimit, oldMetrics, oldRaw, oldStdout
	})
	*catalogDir, *sqlitePath, *brokerID, *limit, *metricsTextfile, *raw = dir, "", "", 0, "", true
	return dir
}

// run executes 'cmd' with 'args' and returns its status and output.
func run(t *testing.T, cmd subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s: cannot parse %q: %v", cmd.Name(), args, err)
	}
	var b bytes.Buffer
	stdout = &b
	status := cmd.Execute(context.Background(), f)
	return status, b.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name   string
		broker string
		cmd    subcommands.Command
		args   []string
		want   []string
		reject []string
	}{
		{
			name:   "resolve broker symbol",
			broker: "oanda",
			cmd:    &resolveCmd{},
			args:   []string{"XAU_USD"},
			want:   []string{"| 1 | XAUUSD | Gold / US Dollar | COMMODITY | BROKER_MAP | 90.00 | cm-xauusd |"},
		},
		{
			name: "resolve exact",
			cmd:  &resolveCmd{},
			args: []string{"EURUSD"},
			want: []string{"| 1 | EURUSD | Euro / US Dollar | FOREX | EXACT | 100.00 | fx-eurusd |"},
		},
		{
			name: "resolve empty",
			cmd:  &resolveCmd{},
			want: []string{"No instrument matches."},
		},
		{
			name: "search",
			cmd:  &searchCmd{},
			args: []string{"gold"},
			want: []string{"| 1 | XAUUSD | Gold / US Dollar | COMMODITY | FUZZY |"},
		},
		{
			name: "show symbol",
			cmd:  &showCmd{},
			args: []string{"EURUSD"},
			want: []string{"# EURUSD: Euro / US Dollar", "id `fx-eurusd`", "| USD | 0.0001 | 10 | 100000 | 5 |"},
		},
		{
			name: "show inactive id",
			cmd:  &showCmd{},
			args: []string{"fx-eurusd-2019"},
			want: []string{"*FOREX*, inactive, id `fx-eurusd-2019`"},
		},
		{
			name:   "show query",
			cmd:    &showCmd{},
			args:   []string{"crude", "oil"},
			want:   []string{"# USOIL: WTI Crude Oil", "Also known as: WTI, OIL"},
			reject: []string{"## Broker Symbols"},
		},
		{
			name:   "list active",
			cmd:    &listCmd{},
			want:   []string{"| AAPL | st-aapl |", "| USOIL | cm-usoil |"},
			reject: []string{"fx-eurusd-2019"},
		},
		{
			name: "list all",
			cmd:  &listCmd{},
			args: []string{"-status", "all"},
			want: []string{"| EURUSD | fx-eurusd-2019 |"},
		},
		{
			name:   "list class",
			cmd:    &listCmd{},
			args:   []string{"-class", "index"},
			want:   []string{"| NAS100 |", "| US500 |"},
			reject: []string{"EURUSD"},
		},
		{
			name: "list category",
			cmd:  &listCmd{},
			args: []string{"-category", "nowhere"},
			want: []string{"No instrument."},
		},
		{
			name: "brokers",
			cmd:  &brokersCmd{},
			want: []string{"| oanda | OANDA | csv | 3 |", "| xm | XM | mt5 | 1 |", "## Symbol Patterns"},
		},
		{
			name: "pnl",
			cmd:  &pnlCmd{},
			args: []string{"-side", "buy", "-entry", "1.2000", "-exit", "1.2050", "EURUSD"},
			want: []string{"# P&L on EURUSD", "| Movement | 50.00 pips |", "**+$50.00**"},
		},
		{
			name: "pnl with costs",
			cmd:  &pnlCmd{},
			args: []string{"-side", "short", "-entry", "2000", "-exit", "1990", "-qty", "0.5", "-commission", "7", "XAUUSD"},
			want: []string{"| Gross P&L | +$500.00 |", "**+$493.00**"},
		},
		{
			name: "exit",
			cmd:  &exitCmd{},
			args: []string{"-side", "sell", "-entry", "1.2000", "-target", "100", "-qty", "3", "EURUSD"},
			want: []string{"exit at **1.19667**", "| Movement | 33.33 pips |"},
		},
		{
			name:   "map report",
			broker: "oanda",
			cmd:    &mapReportCmd{},
			args:   []string{"EUR_USD", "DOGEUSDT"},
			want:   []string{"# Mapping Report for oanda", "| 2 | 1 | 0 | 1 | 50.0% |", "* DOGEUSDT"},
		},
		{
			name: "topic",
			cmd:  &topicCmd{},
			args: []string{"pnl"},
			want: []string{"pips"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			*brokerID = tt.broker
			status, got := run(t, tt.cmd, tt.args...)
			if status != subcommands.ExitSuccess {
				t.Fatalf("%s %q = %v, want ExitSuccess", tt.cmd.Name(), tt.args, status)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%s %q does not print %q:\n%s", tt.cmd.Name(), tt.args, w, got)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(got, r) {
					t.Errorf("%s %q prints %q:\n%s", tt.cmd.Name(), tt.args, r, got)
				}
			}
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
	}{
		{"search without query", &searchCmd{}, nil, subcommands.ExitUsageError},
		{"search unterminated quote", &searchCmd{}, []string{`"us dollar`}, subcommands.ExitUsageError},
		{"resolve malformed query", &resolveCmd{}, []string{"euro", "OR"}, subcommands.ExitUsageError},
		{"show without instrument", &showCmd{}, nil, subcommands.ExitUsageError},
		{"show unknown", &showCmd{}, []string{"zzzzzz"}, subcommands.ExitFailure},
		{"list unknown class", &listCmd{}, []string{"-class", "bond"}, subcommands.ExitUsageError},
		{"list unknown status", &listCmd{}, []string{"-status", "dead"}, subcommands.ExitUsageError},
		{"pnl zero quantity", &pnlCmd{}, []string{"-entry", "1.2", "-exit", "1.3", "-qty", "0", "EURUSD"}, subcommands.ExitUsageError},
		{"pnl unknown side", &pnlCmd{}, []string{"-side", "up", "-entry", "1.2", "-exit", "1.3", "EURUSD"}, subcommands.ExitUsageError},
		{"pnl without entry", &pnlCmd{}, []string{"-exit", "1.3", "EURUSD"}, subcommands.ExitUsageError},
		{"exit unreachable target", &exitCmd{}, []string{"-side", "sell", "-entry", "1.2", "-target", "20000", "EURUSD"}, subcommands.ExitUsageError},
		{"map report without symbols", &mapReportCmd{}, nil, subcommands.ExitUsageError},
		{"import without file", &importCmd{}, nil, subcommands.ExitUsageError},
		{"topic unknown", &topicCmd{}, []string{"nope"}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			if status, out := run(t, tt.cmd, tt.args...); status != tt.want {
				t.Errorf("%s %q = %v, want %v\n%s", tt.cmd.Name(), tt.args, status, tt.want, out)
			}
		})
	}
}

func TestResolve_EmptyCatalog(t *testing.T) {
	setup(t)
	*catalogDir = t.TempDir()
	if status, _ := run(t, &resolveCmd{}, "EURUSD"); status != subcommands.ExitFailure {
		t.Errorf("resolve on an empty catalog = %v, want ExitFailure", status)
	}
}

func TestImport(t *testing.T) {
	const export = `{"rows": [
  {"symbol": "USDCHF", "name": "US Dollar / Swiss Franc", "type": "forex", "pip": "0.0001", "pipValue": 10, "lotSize": 100000, "currency": "CHF"},
  {"symbol": "DE40", "name": "Germany 40", "pointValue": 1, "currency": "EUR"}
]}`
	for _, backend := range []string{"folder", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := setup(t)
			if backend == "sqlite" {
				*sqlitePath = filepath.Join(t.TempDir(), "catalog.db")
			}
			file := filepath.Join(dir, "export.json")
			if err := os.WriteFile(file, []byte(export), 0644); err != nil {
				t.Fatal(err)
			}

			// a dry run does not change the catalog.
			if status, _ := run(t, &importCmd{}, "-path", "$.rows[*]", "-class", "index", "-n", file); status != subcommands.ExitSuccess {
				t.Fatalf("import -n = %v, want ExitSuccess", status)
			}
			if _, got := run(t, &listCmd{}, "-status", "all"); strings.Contains(got, "USDCHF") {
				t.Errorf("import -n changed the catalog:\n%s", got)
			}

			if status, _ := run(t, &importCmd{}, "-path", "$.rows[*]", "-class", "index", "-category", "Imported", file); status != subcommands.ExitSuccess {
				t.Fatalf("import = %v, want ExitSuccess", status)
			}
			_, got := run(t, &listCmd{}, "-category", "imported")
			for _, want := range []string{"| DE40 | DE40 | Germany 40 | INDEX | Imported | active |"} {
				if !strings.Contains(got, want) {
					t.Errorf("list after import does not print %q:\n%s", want, got)
				}
			}
			_, got = run(t, &showCmd{}, "USDCHF")
			if !strings.Contains(got, "| CHF | 0.0001 | 100 | 100000 | 4 |") {
				t.Errorf("show USDCHF after import:\n%s", got)
			}
		})
	}
}

func TestImport_Invalid(t *testing.T) {
	dir := setup(t)
	file := filepath.Join(dir, "export.json")
	// FOREX without a pip size.
	if err := os.WriteFile(file, []byte(`[{"symbol": "USDCHF", "class": "fx"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(filepath.Join(dir, instrument.InstrumentsFile))
	if err != nil {
		t.Fatal(err)
	}
	if status, _ := run(t, &importCmd{}, file); status != subcommands.ExitFailure {
		t.Errorf("import = %v, want ExitFailure", status)
	}
	after, err := os.ReadFile(filepath.Join(dir, instrument.InstrumentsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("invalid import changed the catalog")
	}
}

func TestFmt(t *testing.T) {
	dir := setup(t)
	filename := filepath.Join(dir, instrument.InstrumentsFile)
	want, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	// shuffle the lines: fmt restores the canonical order.
	lines := strings.SplitAfter(strings.TrimSpace(string(want)), "\n")
	lines[0], lines[len(lines)-1] = lines[len(lines)-1]+"\n", strings.TrimSuffix(lines[0], "\n")
	if err := os.WriteFile(filename, []byte(strings.Join(lines, "")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if status, _ := run(t, &fmtCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("fmt = %v, want ExitSuccess", status)
	}
	got, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("fmt output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestMetricsTextfile(t *testing.T) {
	setup(t)
	*brokerID = "oanda"
	*metricsTextfile = filepath.Join(t.TempDir(), "ics.prom")
	if status, _ := run(t, &resolveCmd{}, "XAU_USD"); status != subcommands.ExitSuccess {
		t.Fatalf("resolve = %v, want ExitSuccess", status)
	}
	content, err := os.ReadFile(*metricsTextfile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`instrument_resolutions_total{match_type="BROKER_MAP"} 1`,
		`instrument_catalog_instruments{state="active"} 11`,
		`instrument_catalog_aliases 7`,
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("metrics do not contain %q:\n%s", want, content)
		}
	}
}

func TestCatalogDir(t *testing.T) {
	setup(t)
	*catalogDir = ""
	if got := CatalogDir(); got != DefaultCatalogDir {
		t.Errorf("CatalogDir() = %q, want %q", got, DefaultCatalogDir)
	}
	t.Setenv(EnvCatalogDir, "/from/env")
	if got := CatalogDir(); got != "/from/env" {
		t.Errorf("CatalogDir() = %q, want /from/env", got)
	}
	*catalogDir = "/from/flag"
	if got := CatalogDir(); got != "/from/flag" {
		t.Errorf("CatalogDir() = %q, want /from/flag", got)
	}

	t.Setenv(EnvSQLite, "env.db")
	if got := SQLitePath(); got != "env.db" {
		t.Errorf("SQLitePath() = %q, want env.db", got)
	}
}

func TestPrintMarkdown_Terminal(t *testing.T) {
	setup(t)
	*raw = false
	status, got := run(t, &topicCmd{}, "readme")
	if status != subcommands.ExitSuccess {
		t.Fatalf("topic = %v, want ExitSuccess", status)
	}
	if strings.TrimSpace(got) == "" {
		t.Errorf("topic printed nothing")
	}
}
