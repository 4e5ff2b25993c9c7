// Package renderer turns accounting reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/tradebook"
	"github.com/shopspring/decimal"
)

//go:embed *.md
var templates embed.FS

// RenderOptions holds configuration for rendering a full report.
type RenderOptions struct {
	SkipTrades   bool // Do not render the trades section.
	SkipClosed   bool // Do not render closed positions.
	SkipAnalysis bool // Do not render the concentration section.
}

// Report renders a full accounting report: summary, positions, concentration and trades.
func Report(r *tradebook.Report, opts RenderOptions) string {
	partials := map[string]string{
		"summary":       "summary.md",
		"positions":     "positions.md",
		"concentration": "concentration.md",
		"trades":        "trades.md",
	}
	// An empty file name results in an empty template.
	if opts.SkipTrades {
		partials["trades"] = ""
	}
	if opts.SkipAnalysis {
		partials["concentration"] = ""
	}
	data := struct {
		Summary       tradebook.Summary
		Positions     positionsView
		Concentration tradebook.Concentration
		Trades        []tradebook.EnrichedTrade
	}{r.Summary, newPositionsView(r.Positions, !opts.SkipClosed), r.Concentration, r.Trades}
	return renderTemplate("report", "report.md", partials, data)
}

// Summary renders the portfolio summary.
func Summary(s tradebook.Summary) string {
	return renderTemplate("summary", "summary.md", nil, s)
}

// Positions renders open positions, and closed ones when closed is true.
func Positions(positions []tradebook.Position, closed bool) string {
	return renderTemplate("positions", "positions.md", nil, newPositionsView(positions, closed))
}

// Trades renders enriched trades, in the given order.
func Trades(trades []tradebook.EnrichedTrade) string {
	return renderTemplate("trades", "trades.md", nil, trades)
}

// Concentration renders the concentration analysis.
func Concentration(c tradebook.Concentration) string {
	return renderTemplate("concentration", "concentration.md", nil, c)
}

// FeeQuote renders the fee breakdown of a single trade.
func FeeQuote(s tradebook.FeeSchedule, q tradebook.FeeQuote) string {
	data := struct {
		Schedule tradebook.FeeSchedule
		Quote    tradebook.FeeQuote
		Ratio    tradebook.Percent
	}{s, q, tradebook.PercentOf(q.Total, q.Gross)}
	return renderTemplate("fee_quote", "fee_quote.md", nil, data)
}

// positionsView splits positions by state.
type positionsView struct {
	Open     []tradebook.Position
	Oversold []tradebook.Position
	Closed   []tradebook.Position
}

func newPositionsView(positions []tradebook.Position, closed bool) positionsView {
	var v positionsView
	for _, p := range positions {
		switch {
		case p.Open():
			v.Open = append(v.Open, p)
		case p.Oversold():
			v.Oversold = append(v.Oversold, p)
		case closed:
			v.Closed = append(v.Closed, p)
		}
	}
	return v
}

var funcs = template.FuncMap{
	// rate prints a ratio as a percentage: 0.006 is "0.60%".
	"rate": func(r decimal.Decimal) string { return r.Shift(2).StringFixed(2) + "%" },
	// cell escapes text for a table cell.
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
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
