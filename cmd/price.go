package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type priceCmd struct {
	ticker string
	price  string
	from   string
	path   string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "set or update current prices" }
func (*priceCmd) Usage() string {
	return `tb price -t <ticker> -p <price>
tb price -from <quotes.json|url> -path <jsonpath>
tb price

  Sets the current price of a ticker, or extracts the price of every ticker of the
  book from a market data document, a local file or an http(s) URL. {ticker} in the JSONPath expression stands for
  the ticker. Without flags, prints the known prices.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker to set")
	f.StringVar(&c.price, "p", "", "Current unit price")
	f.StringVar(&c.from, "from", "", "JSON market data document, file or URL")
	f.StringVar(&c.path, "path", "", "JSONPath expression extracting the price of {ticker}")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	setting := c.ticker != "" || c.price != ""
	extracting := c.from != "" || c.path != ""
	switch {
	case setting && extracting:
		return usagef("-t/-p and -from/-path cannot be used together")
	case setting && (c.ticker == "" || c.price == ""):
		return usagef("-t and -p are both required")
	case extracting && (c.from == "" || c.path == ""):
		return usagef("-from and -path are both required")
	}

	schedule, err := DecodeSchedule()
	if err != nil {
		return failf("%v", err)
	}
	prices, err := DecodePrices(schedule.Currency)
	if err != nil {
		return failf("%v", err)
	}

	var updates tradebook.Prices
	switch {
	case setting:
		p, err := decimal.NewFromString(c.price)
		if err != nil || !p.IsPositive() {
			return usagef("invalid price %q", c.price)
		}
		updates = tradebook.Prices{strings.ToUpper(c.ticker): tradebook.M(p, schedule.Currency)}
	case extracting:
		if updates, err = c.extract(ctx, schedule.Currency); updates == nil {
			return failf("%v", err)
		}
		if err != nil {
			log := logger()
			log.Warn().Err(err).Str("file", c.from).Msg("some prices are missing")
		}
	default:
		if err := tradebook.EncodePrices(stdout, prices); err != nil {
			return failf("%v", err)
		}
		return subcommands.ExitSuccess
	}

	maps.Copy(prices, updates)
	if err := EncodePrices(prices); err != nil {
		return failf("%v", err)
	}
	for _, ticker := range updates.Tickers() {
		fmt.Fprintf(stdout, "%s: %s\n", ticker, updates[ticker])
	}
	return subcommands.ExitSuccess
}

// extract reads the prices of the book tickers from the market data document.
// It returns nil prices when nothing could be read at all.
func (c *priceCmd) extract(ctx context.Context, cur string) (tradebook.Prices, error) {
	book, err := DecodeBook()
	if err != nil {
		return nil, err
	}
	in, err := tradebook.OpenQuotes(ctx, c.from, logger())
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return tradebook.ExtractPrices(in, book.Tickers(), c.path, cur)
}
