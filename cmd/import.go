package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import trades from a broker CSV statement" }
func (*importCmd) Usage() string {
	return `tb import -f <file.csv>

  Adds the trades of a CSV statement to the book. Invalid lines are reported and
  skipped, the valid ones are imported anyway. Lines that are not trades (deposits,
  dividends) are skipped with a warning.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV file to import")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		return usagef("-f is required")
	}
	in, err := os.Open(c.file)
	if err != nil {
		return failf("%v", err)
	}
	defer in.Close()

	book, err := DecodeBook()
	if err != nil {
		return failf("%v", err)
	}

	log := logger()
	trades, errs := tradebook.ImportCSV(in)
	failed := 0
	for _, err := range errs {
		if errors.Is(err, tradebook.ErrNotATrade) {
			log.Warn().Str("file", c.file).Msg(err.Error())
			continue
		}
		log.Error().Str("file", c.file).Msg(err.Error())
		failed++
	}

	n, err := book.Import(trades)
	if err != nil {
		log.Error().Err(err).Msg("some trades are invalid")
		failed += len(trades) - n
	}
	if n > 0 {
		if err := EncodeBook(book); err != nil {
			return failf("%v", err)
		}
	}
	fmt.Fprintf(stdout, "Imported %d trades from %s\n", n, c.file)
	if failed > 0 {
		return failf("%d lines could not be imported", failed)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	file string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export trades with their computed amounts as CSV" }
func (*exportCmd) Usage() string {
	return `tb export [-f <file.csv>]

  Writes every trade with its fees, tax, net amount and realized gain. The output
  is printed if no file is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV file to write, stdout otherwise")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := compute()
	if err != nil {
		return failf("%v", err)
	}
	encode := func(w io.Writer) error { return tradebook.ExportCSV(w, report.Trades) }
	if c.file == "" {
		err = encode(stdout)
	} else {
		err = writeFile(c.file, encode)
	}
	if err != nil {
		return failf("%v", err)
	}
	return subcommands.ExitSuccess
}
