package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type feeCmd struct {
	quantity string
	price    string
}

func (*feeCmd) Name() string     { return "fee" }
func (*feeCmd) Synopsis() string { return "compute the fees of a trade" }
func (*feeCmd) Usage() string {
	return `tb fee -q <quantity> -p <price>

  Displays the fee breakdown of trading quantity shares at price, with the
  current fee schedule.
`
}

func (c *feeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.quantity, "q", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Unit price")
}

func (c *feeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := decimal.NewFromString(c.quantity)
	if err != nil || !q.IsPositive() {
		return usagef("invalid quantity %q", c.quantity)
	}
	p, err := decimal.NewFromString(c.price)
	if err != nil || !p.IsPositive() {
		return usagef("invalid price %q", c.price)
	}
	schedule, err := DecodeSchedule()
	if err != nil {
		return failf("%v", err)
	}
	quote := schedule.Quote(tradebook.Q(q), tradebook.M(p, schedule.Currency))
	printMarkdown(renderer.FeeQuote(schedule, quote))
	return subcommands.ExitSuccess
}
