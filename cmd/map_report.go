package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/instrument/renderer"
	"github.com/google/subcommands"
)

type mapReportCmd struct {
	file string
}

func (*mapReportCmd) Name() string { return "map-report" }
func (*mapReportCmd) Synopsis() string {
	return "report how well broker symbols map to the catalog"
}
func (*mapReportCmd) Usage() string {
	return `ics [-broker <id>] map-report [-f <file>] [<symbol>...]

  Resolves every broker symbol, typically the ones found in a broker export
  before an import, and reports the mapped ones, the low confidence guesses
  and the unmapped ones. Symbols are read from the arguments, or one per line
  from -f ("-" for stdin).
`
}

func (c *mapReportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "File listing one broker symbol per line, \"-\" for stdin.")
}

func (c *mapReportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if c.file != "" {
		list, err := readSymbols(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading symbols: %v\n", err)
			return subcommands.ExitFailure
		}
		symbols = append(symbols, list...)
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one broker symbol is required.")
		return subcommands.ExitUsageError
	}

	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	report, err := s.resolver.Report(symbols, *brokerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error mapping symbols: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderReport(renderer.NewReport(report)))
	return subcommands.ExitSuccess
}

// readSymbols reads one symbol per line from 'file', "-" being stdin.
func readSymbols(file string) ([]string, error) {
	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var list []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		list = append(list, scanner.Text())
	}
	return list, scanner.Err()
}
