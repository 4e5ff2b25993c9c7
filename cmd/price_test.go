package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPrices(t *testing.T) tradebook.Prices {
	t.Helper()
	prices, err := DecodePrices(tradebook.DefaultCurrency)
	require.NoError(t, err)
	return prices
}

func TestPriceSet(t *testing.T) {
	setup(t)
	status, _ := run(t, &priceCmd{}, "-t", "atw", "-p", "512.3")
	require.Equal(t, subcommands.ExitSuccess, status)
	status, _ = run(t, &priceCmd{}, "-t", "IAM", "-p", "98.9")
	require.Equal(t, subcommands.ExitSuccess, status)
	status, _ = run(t, &priceCmd{}, "-t", "ATW", "-p", "515")
	require.Equal(t, subcommands.ExitSuccess, status)

	prices := readPrices(t)
	assert.Equal(t, []string{"ATW", "IAM"}, prices.Tickers())
	assert.Equal(t, "515", prices["ATW"].Decimal().String())
	assert.Equal(t, "98.9", prices["IAM"].Decimal().String())

	status, out := run(t, &priceCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, `"ATW": 515`)
}

func TestPriceUsage(t *testing.T) {
	setup(t)
	for _, args := range [][]string{
		{"-t", "ATW"},
		{"-p", "10"},
		{"-t", "ATW", "-p", "-3"},
		{"-from", "quotes.json"},
		{"-t", "ATW", "-p", "10", "-from", "quotes.json", "-path", "$.x"},
	} {
		status, _ := run(t, &priceCmd{}, args...)
		assert.Equal(t, subcommands.ExitUsageError, status, "args %v", args)
	}
}

func TestPriceExtract(t *testing.T) {
	dir, errOut := setup(t)
	run(t, buy(), "-d", "2024-01-10", "-t", "ATW", "-q", "10", "-p", "500")
	run(t, buy(), "-d", "2024-01-10", "-t", "IAM", "-q", "10", "-p", "95")
	run(t, buy(), "-d", "2024-01-10", "-t", "BCP", "-q", "10", "-p", "250")

	quotes := filepath.Join(dir, "quotes.json")
	doc := `{"data": [{"symbol": "ATW", "last": 512.3}, {"symbol": "IAM", "last": "98,90"}]}`
	require.NoError(t, os.WriteFile(quotes, []byte(doc), 0644))

	status, out := run(t, &priceCmd{}, "-from", quotes, "-path", "$.data[?(@.symbol == {ticker})].last")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "ATW")
	assert.Contains(t, errOut.String(), "BCP", "missing prices are reported")

	prices := readPrices(t)
	assert.Equal(t, "512.3", prices["ATW"].Decimal().String())
	assert.Equal(t, "98.9", prices["IAM"].Decimal().String())
	_, ok := prices.Lookup("BCP")
	assert.False(t, ok)
}
