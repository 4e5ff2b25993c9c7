// Package cmd implements the tb CLI application to manage a trade book.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{side: tradebook.Buy}, "trades")
	c.Register(&addCmd{side: tradebook.Sell}, "trades")
	c.Register(&editCmd{}, "trades")
	c.Register(&rmCmd{}, "trades")
	c.Register(&importCmd{}, "trades")
	c.Register(&exportCmd{}, "trades")
	c.Register(&priceCmd{}, "trades")

	c.Register(&txCmd{}, "reports")
	c.Register(&holdingCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&riskCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")
	c.Register(&feeCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// Has reports whether name is a subcommand registered in c.
func Has(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	bookFile   = flag.String("book", envOr(EnvBookFile, "trades.jsonl"), "Path to the trade book (JSONL format)")
	pricesFile = flag.String("prices", envOr(EnvPricesFile, "prices.json"), "Path to the current prices file (JSON format)")
	feesFile   = flag.String("fees", os.Getenv(EnvFeesFile), "Path to a fee schedule (TOML format), the default schedule otherwise")
	Verbose    = flag.Bool("v", envBool(EnvVerbose), "Verbose logging")
	raw        = flag.Bool("raw", false, "Print raw markdown instead of formatted text")
)

// stdout and stderr can be redirected in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func envOr(key, value string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return value
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// logger returns the console logger of the application.
func logger() zerolog.Logger {
	lvl := zerolog.InfoLevel
	if *Verbose {
		lvl = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly, NoColor: stderr != os.Stderr}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

// DecodeBook decodes the trade book file. A missing file is an empty book.
func DecodeBook() (*tradebook.Book, error) {
	f, err := os.Open(*bookFile)
	if errors.Is(err, fs.ErrNotExist) {
		log := logger()
		log.Debug().Str("file", *bookFile).Msg("trade book does not exist, starting an empty one")
		return tradebook.NewBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open trade book: %w", err)
	}
	defer f.Close()
	book, err := tradebook.DecodeBook(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode trade book %q: %w", *bookFile, err)
	}
	return book, nil
}

// EncodeBook rewrites the trade book file.
func EncodeBook(book *tradebook.Book) error {
	return writeFile(*bookFile, func(w io.Writer) error { return tradebook.EncodeBook(w, book) })
}

// DecodeSchedule decodes the fee schedule file, or returns the default schedule.
func DecodeSchedule() (tradebook.FeeSchedule, error) {
	if *feesFile == "" {
		return tradebook.DefaultSchedule(), nil
	}
	f, err := os.Open(*feesFile)
	if errors.Is(err, fs.ErrNotExist) {
		log := logger()
		log.Warn().Str("file", *feesFile).Msg("fee schedule does not exist, using the default schedule")
		return tradebook.DefaultSchedule(), nil
	}
	if err != nil {
		return tradebook.FeeSchedule{}, fmt.Errorf("cannot open fee schedule: %w", err)
	}
	defer f.Close()
	s, err := tradebook.DecodeFeeSchedule(f)
	if err != nil {
		return tradebook.FeeSchedule{}, fmt.Errorf("cannot decode fee schedule %q: %w", *feesFile, err)
	}
	return s, nil
}

// DecodePrices decodes the prices file. A missing file means no price is known.
func DecodePrices(cur string) (tradebook.Prices, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return tradebook.Prices{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open prices: %w", err)
	}
	defer f.Close()
	prices, err := tradebook.DecodePrices(f, cur)
	if err != nil {
		return nil, fmt.Errorf("cannot decode prices %q: %w", *pricesFile, err)
	}
	return prices, nil
}

// EncodePrices rewrites the prices file.
func EncodePrices(prices tradebook.Prices) error {
	return writeFile(*pricesFile, func(w io.Writer) error { return tradebook.EncodePrices(w, prices) })
}

// writeFile writes name through a temporary file, so that a failed encoding leaves it untouched.
func writeFile(name string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())
	if err := encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	return os.Rename(tmp.Name(), name)
}

// compute loads the book, the schedule and the prices, and runs the accounting engine.
func compute() (*tradebook.Report, error) {
	schedule, err := DecodeSchedule()
	if err != nil {
		return nil, err
	}
	book, err := DecodeBook()
	if err != nil {
		return nil, err
	}
	prices, err := DecodePrices(schedule.Currency)
	if err != nil {
		return nil, err
	}
	// invalid trades are logged and skipped by the engine.
	report, _ := tradebook.ComputeLenient(book.Trades(), prices, tradebook.WithSchedule(schedule), tradebook.WithLogger(logger()))
	return report, nil
}

// printMarkdown prints md on stdout, formatted for the terminal unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// failf prints an error message on stderr and returns ExitFailure.
func failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// usagef prints an error message on stderr and returns ExitUsageError.
func usagef(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
