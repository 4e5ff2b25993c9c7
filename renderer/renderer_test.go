package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline is the structure of a markdown document.
type outline struct {
	headings []string
	rows     []int // body rows of each table
}

func parse(t *testing.T, md string) outline {
	t.Helper()
	source := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var o outline
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			o.headings = append(o.headings, strings.Repeat("#", n.Level)+" "+nodeText(n, source))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			rows := 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					rows++
				}
			}
			o.rows = append(o.rows, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return o
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func MAD(v float64) tradebook.Money { return tradebook.M(v, tradebook.DefaultCurrency) }

// sample computes a report with a closed, two open and an oversold position.
func sample(t *testing.T) *tradebook.Report {
	t.Helper()
	on := date.MustParse("2024-01-10")
	trades := []tradebook.Trade{
		tradebook.NewBuy(on, "ATW", tradebook.Q(100), MAD(50), "first | lot"),
		tradebook.NewSell(on.Add(30), "ATW", tradebook.Q(100), MAD(60), ""),
		tradebook.NewBuy(on.Add(1), "IAM", tradebook.Q(20), MAD(90), ""),
		tradebook.NewBuy(on.Add(2), "BCP", tradebook.Q(30), MAD(250), ""),
		tradebook.NewSell(on.Add(3), "CIH", tradebook.Q(5), MAD(300), ""),
	}
	prices := tradebook.Prices{"IAM": MAD(100), "BCP": MAD(260)}
	r, err := tradebook.Compute(trades, prices)
	require.NoError(t, err)
	return r
}

func TestPositions(t *testing.T) {
	r := sample(t)

	o := parse(t, Positions(r.Positions, false))
	assert.Equal(t, []string{"# Positions", "## Oversold Positions"}, o.headings)
	assert.Equal(t, []int{2, 1}, o.rows)

	o = parse(t, Positions(r.Positions, true))
	assert.Equal(t, []string{"# Positions", "## Oversold Positions", "## Closed Positions"}, o.headings)
	assert.Equal(t, []int{2, 1, 1}, o.rows)

	md := Positions(nil, true)
	assert.Contains(t, md, "No open positions.")
	assert.Equal(t, []string{"# Positions"}, parse(t, md).headings)
}

func TestSummary(t *testing.T) {
	r := sample(t)
	o := parse(t, Summary(r.Summary))
	assert.Equal(t, []string{"# Portfolio Summary", "## Trading Statistics"}, o.headings)
	assert.Equal(t, []int{11, 7}, o.rows)

	o = parse(t, Summary(tradebook.Summary{}))
	assert.Equal(t, []string{"# Portfolio Summary"}, o.headings, "no statistics without sells")
}

func TestTrades(t *testing.T) {
	r := sample(t)
	md := Trades(r.Trades)
	o := parse(t, md)
	assert.Equal(t, []string{"# Trades"}, o.headings)
	assert.Equal(t, []int{5}, o.rows)
	assert.Contains(t, md, `first \| lot`)
	assert.Contains(t, md, "(oversold)")

	assert.Contains(t, Trades(nil), "No trades.")
}

func TestConcentration(t *testing.T) {
	r := sample(t)
	md := Concentration(r.Concentration)
	o := parse(t, md)
	assert.Equal(t, []string{"# Concentration"}, o.headings)
	assert.Equal(t, []int{7}, o.rows)
	assert.Contains(t, md, "| Risk | "+r.Concentration.Tier.String()+" |")

	assert.Contains(t, Concentration(tradebook.Concentration{}), "No priced open positions.")
}

func TestFeeQuote(t *testing.T) {
	s := tradebook.DefaultSchedule()
	md := FeeQuote(s, s.Quote(tradebook.Q(100), MAD(50)))
	o := parse(t, md)
	assert.Equal(t, []string{"# Fee Quote"}, o.headings)
	assert.Equal(t, []int{6}, o.rows)
	assert.Contains(t, md, "| Brokerage | 0.60% |")
	assert.Contains(t, md, "| Settlement | 0.20% |")
	assert.Contains(t, md, "| VAT | 10.00% |")
	assert.Contains(t, md, "| **Total** | 0.88% |")
	assert.Contains(t, md, "taxed at 15.00%")
}

func TestReport(t *testing.T) {
	r := sample(t)

	o := parse(t, Report(r, RenderOptions{}))
	assert.Equal(t, []string{
		"# Portfolio Summary", "## Trading Statistics",
		"# Positions", "## Oversold Positions", "## Closed Positions",
		"# Concentration",
		"# Trades",
	}, o.headings)

	o = parse(t, Report(r, RenderOptions{SkipTrades: true, SkipClosed: true, SkipAnalysis: true}))
	assert.Equal(t, []string{
		"# Portfolio Summary", "## Trading Statistics",
		"# Positions", "## Oversold Positions",
	}, o.headings)
}
