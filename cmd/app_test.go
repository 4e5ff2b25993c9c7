package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the global flags to a temporary directory and captures stderr.
func setup(t *testing.T) (dir string, errOut *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	saved := []string{*bookFile, *pricesFile, *feesFile}
	savedRaw, savedVerbose := *raw, *Verbose
	savedOut, savedErr := stdout, stderr
	t.Cleanup(func() {
		*bookFile, *pricesFile, *feesFile = saved[0], saved[1], saved[2]
		*raw, *Verbose = savedRaw, savedVerbose
		stdout, stderr = savedOut, savedErr
	})

	*bookFile = filepath.Join(dir, "trades.jsonl")
	*pricesFile = filepath.Join(dir, "prices.json")
	*feesFile = ""
	*raw, *Verbose = true, false
	errOut = new(bytes.Buffer)
	stderr = errOut
	return dir, errOut
}

// run executes c with args and returns its status and output.
func run(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	var out bytes.Buffer
	stdout = &out
	status := c.Execute(context.Background(), f)
	return status, out.String()
}

func buy() *addCmd  { return &addCmd{side: tradebook.Buy} }
func sell() *addCmd { return &addCmd{side: tradebook.Sell} }

// readBook decodes the book written by the commands.
func readBook(t *testing.T) *tradebook.Book {
	t.Helper()
	book, err := DecodeBook()
	require.NoError(t, err)
	return book
}

func TestDecodeMissingFiles(t *testing.T) {
	dir, _ := setup(t)
	*feesFile = filepath.Join(dir, "fees.toml")

	book, err := DecodeBook()
	require.NoError(t, err)
	assert.Equal(t, 0, book.Len())

	schedule, err := DecodeSchedule()
	require.NoError(t, err)
	assert.Equal(t, tradebook.DefaultCurrency, schedule.Currency)

	prices, err := DecodePrices(schedule.Currency)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestDecodeSchedule(t *testing.T) {
	dir, _ := setup(t)
	*feesFile = filepath.Join(dir, "fees.toml")
	require.NoError(t, os.WriteFile(*feesFile, []byte("vat_rate = 0.2\n"), 0644))

	schedule, err := DecodeSchedule()
	require.NoError(t, err)
	assert.Equal(t, "0.2", schedule.VATRate.String())
	assert.Equal(t, "0.15", schedule.CapitalGainsRate.String())

	require.NoError(t, os.WriteFile(*feesFile, []byte("vat_rate = -1\n"), 0644))
	_, err = DecodeSchedule()
	assert.Error(t, err)
}

func TestWriteFileKeepsOriginalOnError(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(name, []byte("original"), 0644))

	err := writeFile(name, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)

	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be removed")
}

func TestRegister(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("tb", flag.ContinueOnError), "tb")
	Register(commander)

	completion := Completion()
	var names []string
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		names = append(names, c.Name())
		assert.Contains(t, completion.Sub, c.Name(), "command %q has no completion", c.Name())
	})
	assert.Contains(t, names, "buy")
	assert.Contains(t, names, "sell")
	assert.True(t, Has(commander, "holding"))
	assert.False(t, Has(commander, "hello"))
}
