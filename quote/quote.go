// Package quote fetches last-close prices from a JSON quote API. It is a
// collaborator of the accounting engine: the engine only ever sees the
// resulting symbol-to-price map.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/cenkalti/backoff/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// closePath extracts the last close from a quote response.
const closePath = "$.close"

// Client fetches quotes with bounded retries and an in-process cache, so a
// recalculation burst does not hammer the provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.Cache
	logger  *zap.Logger

	maxTries    uint
	concurrency int
}

// New returns a quote client for the given API endpoint. A nil logger
// disables logging.
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		http:        &http.Client{Timeout: 10 * time.Second},
		cache:       cache.New(5*time.Minute, 10*time.Minute),
		logger:      logger,
		maxTries:    3,
		concurrency: 4,
	}
}

// Last returns the last close price for one symbol, from cache when fresh.
func (c *Client) Last(ctx context.Context, symbol string) (float64, error) {
	if cached, ok := c.cache.Get(symbol); ok {
		return cached.(float64), nil
	}

	operation := func() (float64, error) {
		return c.fetch(ctx, symbol)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Info("retrying quote fetch", zap.String("symbol", symbol), zap.Duration("backoff", wait), zap.Error(err))
	}

	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return 0, fmt.Errorf("cannot fetch quote for %q: %w", symbol, err)
	}

	c.cache.Set(symbol, price, cache.DefaultExpiration)
	return price, nil
}

// LastAll fetches last close prices for all symbols with bounded concurrency.
// Symbols that fail are absent from the map and logged; a partial snapshot is
// still useful (the engine treats a missing price as zero).
func (c *Client) LastAll(ctx context.Context, symbols []string) map[string]float64 {
	var mu sync.Mutex
	prices := make(map[string]float64, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, symbol := range symbols {
		g.Go(func() error {
			price, err := c.Last(ctx, symbol)
			if err != nil {
				c.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return prices
}

// fetch performs one GET against the quote endpoint and extracts the close.
func (c *Client) fetch(ctx context.Context, symbol string) (float64, error) {
	addr := fmt.Sprintf("%s/quote?symbol=%s&api_token=%s", c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return 0, err
	}

	jval, err := jsonpath.Get(closePath, jobj)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("error parsing quote for %q: %q %w", symbol, closePath, err))
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	price, ok := jval.(float64)
	if !ok {
		return 0, backoff.Permanent(fmt.Errorf("quote close for %q is not a number: %v", symbol, jval))
	}
	return price, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return backoff.Permanent(fmt.Errorf("cannot http GET %v: %v", resp.Request.URL.Path, resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v: %v", resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
