// Package renderer renders instruments, resolutions and trade economics as
// markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// Templates are named after what they render. A partial is named after its
// assembly: "matches_table.md" is a partial of "matches.md".
//
//go:embed *.md
var templates embed.FS

// RenderMatches renders the resolution of a query.
func RenderMatches(m *Matches) string {
	partials := map[string]string{
		"matches_title": "matches_title.md",
		"matches_table": "matches_table.md",
	}
	return renderTemplate("matches", "matches.md", partials, m)
}

// RenderInstrument renders the full record of an instrument.
func RenderInstrument(d *InstrumentDetail) string {
	partials := map[string]string{
		"instrument_economics": "instrument_economics.md",
		"instrument_aliases":   "instrument_aliases.md",
	}
	return renderTemplate("instrument", "instrument.md", partials, d)
}

// RenderList renders a list of instruments.
func RenderList(l *List) string {
	return renderTemplate("list", "list.md", nil, l)
}

// PnLRenderOptions holds configuration for rendering a P&L.
type PnLRenderOptions struct {
	SkipTrade bool // Do not render the trade section.
}

// RenderPnL renders the economics of a trade.
func RenderPnL(p *PnL, opts PnLRenderOptions) string {
	partials := map[string]string{
		"pnl_result": "pnl_result.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipTrade {
		partials["pnl_trade"] = "pnl_trade.md"
	} else {
		partials["pnl_trade"] = ""
	}
	return renderTemplate("pnl", "pnl.md", partials, p)
}

// RenderExit renders the exit price realizing a target.
func RenderExit(e *Exit) string {
	return renderTemplate("exit", "exit.md", nil, e)
}

// RenderReport renders a broker mapping report.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_summary": "report_summary.md",
		"report_symbols": "report_symbols.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
