package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeFlags are the flags describing a trade.
type tradeFlags struct {
	date     string
	ticker   string
	quantity string
	price    string
	note     string
}

func (t *tradeFlags) setFlags(f *flag.FlagSet, day string) {
	f.StringVar(&t.date, "d", day, "Trade date. See the user manual for supported date formats.")
	f.StringVar(&t.ticker, "t", "", "Ticker of the instrument")
	f.StringVar(&t.quantity, "q", "", "Number of shares")
	f.StringVar(&t.price, "p", "", "Unit price")
	f.StringVar(&t.note, "n", "", "Free text note")
}

// apply overrides the fields of t that have been set.
func (t *tradeFlags) apply(tr tradebook.Trade, cur string) (tradebook.Trade, error) {
	if t.date != "" {
		on, err := date.Parse(t.date)
		if err != nil {
			return tr, fmt.Errorf("invalid date: %w", err)
		}
		tr.Date = on
	}
	if t.ticker != "" {
		tr.Ticker = strings.ToUpper(strings.TrimSpace(t.ticker))
	}
	if t.quantity != "" {
		q, err := decimal.NewFromString(t.quantity)
		if err != nil {
			return tr, fmt.Errorf("invalid quantity %q: %w", t.quantity, err)
		}
		tr.Quantity = tradebook.Q(q)
	}
	if t.price != "" {
		p, err := decimal.NewFromString(t.price)
		if err != nil {
			return tr, fmt.Errorf("invalid price %q: %w", t.price, err)
		}
		tr.Price = tradebook.M(p, cur)
	}
	if t.note != "" {
		tr.Note = t.note
	}
	return tr, nil
}

// addCmd records a buy or a sell.
type addCmd struct {
	side tradebook.Side
	tradeFlags
}

func (c *addCmd) Name() string { return c.side.String() }
func (c *addCmd) Synopsis() string {
	return fmt.Sprintf("record a %s trade", c.side)
}
func (c *addCmd) Usage() string {
	return fmt.Sprintf(`tb %s -t <ticker> -q <quantity> -p <price> [-d <date>] [-n <note>]

  Records a %s trade in the book. Nothing is recorded if the trade is invalid.
`, c.side, c.side)
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, date.Today().String())
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	schedule, err := DecodeSchedule()
	if err != nil {
		return failf("%v", err)
	}
	t, err := c.apply(tradebook.Trade{Side: c.side}, schedule.Currency)
	if err != nil {
		return usagef("%v", err)
	}
	book, err := DecodeBook()
	if err != nil {
		return failf("%v", err)
	}
	t, err = book.Add(t)
	if err != nil {
		return failf("%v", err)
	}
	if err := EncodeBook(book); err != nil {
		return failf("%v", err)
	}
	fee := schedule.Fee(t.Quantity, t.Price)
	fmt.Fprintf(stdout, "Recorded %s: %s (fees %s)\n", t.ID, t, fee)
	return subcommands.ExitSuccess
}

// editCmd replaces the values of a recorded trade.
type editCmd struct {
	id   string
	side string
	tradeFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit a recorded trade" }
func (*editCmd) Usage() string {
	return `tb edit -id <id> [-side buy|sell] [-d <date>] [-t <ticker>] [-q <quantity>] [-p <price>] [-n <note>]

  Replaces the fields set on the command line, the others are kept.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "ID of the trade to edit")
	f.StringVar(&c.side, "side", "", "Trade side (buy, sell)")
	c.setFlags(f, "")
}

func (c *editCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return usagef("-id is required")
	}
	schedule, err := DecodeSchedule()
	if err != nil {
		return failf("%v", err)
	}
	book, err := DecodeBook()
	if err != nil {
		return failf("%v", err)
	}
	t, err := book.Get(c.id)
	if err != nil {
		return failf("%v", err)
	}
	if c.side != "" {
		if t.Side, err = tradebook.ParseSide(c.side); err != nil {
			return usagef("%v", err)
		}
	}
	if t, err = c.apply(t, schedule.Currency); err != nil {
		return usagef("%v", err)
	}
	if err := book.Replace(c.id, t); err != nil {
		return failf("%v", err)
	}
	if err := EncodeBook(book); err != nil {
		return failf("%v", err)
	}
	fmt.Fprintf(stdout, "Updated %s: %s\n", c.id, t)
	return subcommands.ExitSuccess
}

// rmCmd removes a recorded trade.
type rmCmd struct {
	id string
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove a recorded trade" }
func (*rmCmd) Usage() string {
	return `tb rm -id <id>

  Removes a trade from the book.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "ID of the trade to remove")
}

func (c *rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return usagef("-id is required")
	}
	book, err := DecodeBook()
	if err != nil {
		return failf("%v", err)
	}
	if err := book.Remove(c.id); err != nil {
		return failf("%v", err)
	}
	if err := EncodeBook(book); err != nil {
		return failf("%v", err)
	}
	fmt.Fprintf(stdout, "Removed %s\n", c.id)
	return subcommands.ExitSuccess
}
