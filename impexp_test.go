package tradebook

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100", "100", true},
		{"100.00", "100", true},
		{"12,5", "12.5", true},
		{"1,000", "1000", true},
		{"1,234.56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"1,000,000", "1000000", true},
		{"1.000.000", "1000000", true},
		{"-1,010.00 MAD", "-1010", true},
		{"1 010,00 MAD", "1010", true},
		{"-", "0", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.ok || !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parseNumber(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestImportCSV(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"standard", "Date,Company,ISIN,Operation,Ticker,Qty,Price,Total\n2023-01-01,Test Company,MA123456,Achat,TEST,10,100.00,-1010.00\n"},
		{"day first date", "Date,Company,ISIN,Operation,Ticker,Qty,Price,Total\n01/01/23,Test Company,MA123456,Achat,TEST,10,100.00,-1010.00\n"},
		{"amount with delimiter", "Date,Company,ISIN,Operation,Ticker,Qty,Price,Total\n2023-01-01,Test Company,MA123456,Achat,TEST,10,100.00,-1,010.00 MAD\n"},
		{"semicolon", "Date;Company;ISIN;Operation;Ticker;Qty;Price;Total\n2023-01-01;Test Company;MA123456;Achat;TEST;10;100,00;-1.010,00\n"},
		{"tab", "Date\tType\tTicker\tQuantity\tUnit_Price\tMemo\n2023-01-01\tBUY\ttest\t10\t100\tTest Company\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, errs := ImportCSV(strings.NewReader(tt.csv))
			if len(errs) > 0 {
				t.Fatalf("ImportCSV() errors: %v", errs)
			}
			if len(trades) != 1 {
				t.Fatalf("ImportCSV() = %d trades, want 1", len(trades))
			}
			tr := trades[0]
			if tr.Date != day("2023-01-01") || tr.Side != Buy || tr.Ticker != "TEST" || tr.Note != "Test Company" {
				t.Errorf("ImportCSV() = %+v", tr)
			}
			if !tr.Quantity.Equal(Q(10)) {
				t.Errorf("quantity = %s, want 10", tr.Quantity)
			}
			checkMoney(t, "price", tr.Price, "100")
			if err := tr.Validate(); err != nil {
				t.Errorf("imported trade is invalid: %v", err)
			}
		})
	}
}

func TestImportCSV_errors(t *testing.T) {
	csv := `Date,Operation,Ticker,Qty,Price
2023-01-01,Achat,ATW,10,100
2023-01-02,Depot,,0,0
2023-31-31,Vente,ATW,10,100
2023-01-04,Vente,ATW,ten,100
2023-01-05,Vente,ATW,5
2023-01-06,Vente,ATW,5,110
`
	trades, errs := ImportCSV(strings.NewReader(csv))
	if len(trades) != 2 {
		t.Errorf("ImportCSV() = %d trades, want 2", len(trades))
	}
	if len(errs) != 4 {
		t.Fatalf("ImportCSV() = %d errors, want 4: %v", len(errs), errs)
	}
	var ierr *ImportError
	if !errors.As(errs[0], &ierr) || ierr.Line != 3 || !errors.Is(errs[0], ErrNotATrade) {
		t.Errorf("first error = %v, want a non trade on line 3", errs[0])
	}
	for i, line := range []int{4, 5, 6} {
		if !errors.As(errs[i+1], &ierr) || ierr.Line != line || errors.Is(errs[i+1], ErrNotATrade) {
			t.Errorf("error #%d = %v, want a failure on line %d", i+1, errs[i+1], line)
		}
	}
}

func TestImportCSV_invalid(t *testing.T) {
	for name, csv := range map[string]string{
		"empty":          "",
		"missing column": "Date,Operation,Ticker,Qty\n2023-01-01,Achat,ATW,10\n",
	} {
		trades, errs := ImportCSV(strings.NewReader(csv))
		if len(trades) != 0 || len(errs) != 1 {
			t.Errorf("%s: ImportCSV() = %v, %v; want a single error", name, trades, errs)
		}
	}
}

func TestExportCSV(t *testing.T) {
	r, err := Compute([]Trade{
		buy("b1", "2025-01-02", "ATW", 100, 50),
		sell("s1", "2025-02-03", "ATW", 100, 60),
	}, nil)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	var b bytes.Buffer
	if err := ExportCSV(&b, r.Trades); err != nil {
		t.Fatalf("ExportCSV() error: %v", err)
	}
	want := `Date,Type,Ticker,Qty,Price,Fees,Tax,Net Amount,Realized P&L
2025-01-02,BUY,ATW,100,50,44.00,0.00,-5044.00,
2025-02-03,SELL,ATW,100,60,52.80,135.48,5947.20,767.72
`
	if got := b.String(); got != want {
		t.Errorf("ExportCSV() =\n%s\nwant\n%s", got, want)
	}

	trades, errs := ImportCSV(&b)
	if len(errs) > 0 {
		t.Fatalf("ImportCSV() of an export: %v", errs)
	}
	if len(trades) != 2 || trades[0].Side != Buy || trades[1].Side != Sell || !trades[1].Price.Equal(MAD(60)) {
		t.Errorf("ImportCSV() of an export = %v", trades)
	}
}
