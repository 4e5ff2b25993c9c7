package tradebook

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
)

// OpenQuotes opens a market data document for ExtractPrices.
//
// src is a local file or an http(s) URL. Remote documents are cached on disk for the day,
// so that repeated price updates hit the provider once.
func OpenQuotes(ctx context.Context, src string, log zerolog.Logger) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.Open(src)
	}
	return fetch(ctx, dailyClient(os.TempDir(), log), src)
}

// dailyCache is an http.RoundTripper caching successful responses on disk.
// The cache key includes the current date, so entries expire every day.
type dailyCache struct {
	base http.RoundTripper
	dir  string
	log  zerolog.Logger
}

func dailyClient(dir string, log zerolog.Logger) *http.Client {
	return &http.Client{Transport: &dailyCache{base: http.DefaultTransport, dir: dir, log: log}}
}

func (c *dailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, req.URL)
	file := filepath.Join(c.dir, fmt.Sprintf("tb-%x", sha1.Sum([]byte(key))))

	if resp, err := c.get(file, req); err == nil {
		c.log.Debug().Str("url", req.URL.String()).Msg("quotes served from cache")
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("quotes fetched")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(file, resp); err != nil {
		c.log.Warn().Err(err).Msg("cannot cache quotes")
	}
	return resp, nil
}

func (c *dailyCache) get(file string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp in file. DumpResponse leaves resp.Body readable.
func (c *dailyCache) put(file string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(file, content, 0600)
}

// fetch GETs addr and returns the response body.
func fetch(ctx context.Context, client *http.Client, addr string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cannot GET %s: %s", addr, resp.Status)
	}
	return resp.Body, nil
}
