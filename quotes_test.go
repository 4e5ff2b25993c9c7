package tradebook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestDailyCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ATW": 512.3}`)
	}))
	defer srv.Close()

	client := dailyClient(t.TempDir(), zerolog.Nop())
	for i := 0; i < 3; i++ {
		body, err := fetch(context.Background(), client, srv.URL+"/quotes")
		if err != nil {
			t.Fatalf("fetch() #%d error: %v", i, err)
		}
		content, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != `{"ATW": 512.3}` {
			t.Errorf("fetch() #%d = %q", i, content)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server was hit %d times, want 1", got)
	}

	// errors are not cached
	for i := 0; i < 2; i++ {
		if _, err := fetch(context.Background(), client, srv.URL+"/missing"); err == nil {
			t.Error("fetch() of a missing document should fail")
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server was hit %d times, want 3", got)
	}
}

func TestOpenQuotesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "quotes.json")
	if err := os.WriteFile(file, []byte(`{"data": [{"symbol": "ATW", "last": 512.3}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := OpenQuotes(context.Background(), file, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenQuotes() error: %v", err)
	}
	defer r.Close()
	prices, err := ExtractPrices(r, []string{"ATW"}, "$.data[?(@.symbol == {ticker})].last", DefaultCurrency)
	if err != nil {
		t.Fatalf("ExtractPrices() error: %v", err)
	}
	checkMoney(t, "ATW", prices["ATW"], "512.3")

	if _, err := OpenQuotes(context.Background(), filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop()); err == nil {
		t.Error("OpenQuotes() of a missing file should fail")
	}
}
