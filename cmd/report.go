package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	period string
	start  string
	date   string
	ticker string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list trades with their fees, tax and gains" }
func (*txCmd) Usage() string {
	return `tb tx [-p <period> | -s <start_date>] [-d <end_date>] [-t <ticker>]

  Lists the trades of the book, in chronological order, with the amounts computed
  by the ledger. Without date flags every trade is listed.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Predefined period (day, week, month, quarter, year) ending on -d.")
	f.StringVar(&c.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&c.date, "d", "", "The end date for the range.")
	f.StringVar(&c.ticker, "t", "", "Only list trades of this ticker.")
}

// dateRange returns the range selected by the flags, open when no flag is set.
func (c *txCmd) dateRange() (date.Range, error) {
	var r date.Range
	if c.start == "" && c.date == "" && c.period == "" {
		return r, nil
	}
	end := date.Today()
	if c.date != "" {
		d, err := date.Parse(c.date)
		if err != nil {
			return r, err
		}
		end = d
	}
	switch {
	case c.start != "":
		start, err := date.Parse(c.start)
		if err != nil {
			return r, err
		}
		return date.Range{From: start, To: end}, nil
	case c.period != "":
		period, err := date.ParsePeriod(c.period)
		if err != nil {
			return r, err
		}
		return date.NewRange(end, period), nil
	default:
		return date.Range{To: end}, nil
	}
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.dateRange()
	if err != nil {
		return usagef("%v", err)
	}
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	ticker := strings.ToUpper(c.ticker)
	var trades []tradebook.EnrichedTrade
	for _, t := range report.Trades {
		if !r.Contains(t.Date) || (ticker != "" && t.Ticker != ticker) {
			continue
		}
		trades = append(trades, t)
	}
	printMarkdown(renderer.Trades(trades))
	return subcommands.ExitSuccess
}

type holdingCmd struct {
	closed bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display positions" }
func (*holdingCmd) Usage() string {
	return `tb holding [-closed]

  Displays the open positions valued at the current prices, and the oversold ones.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.closed, "closed", false, "Also display closed positions")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(renderer.Positions(report.Positions, c.closed))
	return subcommands.ExitSuccess
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary and trading statistics" }
func (*summaryCmd) Usage() string {
	return `tb summary

  Displays portfolio totals, realized gains and the win/loss statistics.
`
}

func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (*summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(renderer.Summary(report.Summary))
	return subcommands.ExitSuccess
}

type riskCmd struct{}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "display the concentration risk of open positions" }
func (*riskCmd) Usage() string {
	return `tb risk

  Displays the Herfindahl-Hirschman index of the open positions and their largest weights.
`
}

func (*riskCmd) SetFlags(f *flag.FlagSet) {}

func (*riskCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(renderer.Concentration(report.Concentration))
	return subcommands.ExitSuccess
}

type reportCmd struct {
	opts renderer.RenderOptions
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the full portfolio report" }
func (*reportCmd) Usage() string {
	return `tb report [-no-trades] [-no-closed] [-no-risk]

  Displays the summary, the positions, the concentration and the trades.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.opts.SkipTrades, "no-trades", false, "Do not display trades")
	f.BoolVar(&c.opts.SkipClosed, "no-closed", false, "Do not display closed positions")
	f.BoolVar(&c.opts.SkipAnalysis, "no-risk", false, "Do not display the concentration")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(renderer.Report(report, c.opts))
	return subcommands.ExitSuccess
}
