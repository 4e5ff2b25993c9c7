// Package tradebook provides the accounting engine of a personal trading ledger
// for a single-market equity portfolio. It is local-first and stateless: every
// figure is recomputed from the full trade history on each pass.
//
// The core functionalities include:
//   - Trade Book: recording buy and sell trades in a chronological, human-readable
//     JSONL file, importing broker statements from CSV.
//   - Fees and Taxes: reproducing the market fee schedule (brokerage, settlement,
//     VAT, with minimums) and the capital-gains tax, configurable from TOML.
//   - Accounting Engine: folding trades into positions with a moving weighted
//     average cost, yielding realized and unrealized gains, break-even prices and
//     trading statistics (win rate, profit factor, Kelly criterion, expectancy).
//   - Risk: measuring the portfolio concentration with the Herfindahl-Hirschman index.
//
// Amounts are exact decimals. Rounding only happens where the market rules say
// so: per trade fee and tax, and summary totals.
//
// This package serves as the foundational logic for the `tb` command-line tool.
package tradebook
