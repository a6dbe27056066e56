package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/instrument"
)

// RenderBrokers renders broker profiles, with their alias counts.
func RenderBrokers(brokers []instrument.Broker, aliases []instrument.Alias) string {
	counts := make(map[string]int)
	for _, a := range aliases {
		counts[a.Broker]++
	}

	r := &brokersRenderer{Builder: &strings.Builder{}}
	r.Printf("# Brokers\n\n")
	if len(brokers) == 0 {
		r.Printf("No broker profile.\n")
		return r.String()
	}
	r.Printf("| ID | Name | Formats | Aliases |\n")
	r.Printf("|:---|:---|:---|---:|\n")
	for _, b := range brokers {
		r.Printf("| %s | %s | %s | %d |\n", cell(b.ID), cell(b.Name), cell(strings.Join(b.ImportFormats, ", ")), counts[b.ID])
	}

	ConditionalBlock(r, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Symbol Patterns\n\n")
		fmt.Fprintf(w, "| Broker | Pattern | Canonical |\n")
		fmt.Fprintf(w, "|:---|:---|:---|\n")
		found := false
		for _, b := range brokers {
			for _, p := range b.Patterns {
				found = true
				fmt.Fprintf(w, "| %s | `%s` | `%s` |\n", cell(b.ID), cell(p.Expr), cell(p.Canonical))
			}
		}
		return found
	})
	return r.String()
}

// brokersRenderer formats the brokers into a markdown string.
type brokersRenderer struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *brokersRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}
