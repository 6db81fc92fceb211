package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func quoteServer(t *testing.T, hits *atomic.Int64, prices map[string]float64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		symbol := r.URL.Query().Get("symbol")
		price, ok := prices[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"symbol": %q, "close": %v}`, symbol, price)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Last(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits, map[string]float64{"AAPL": 190.5})
	client := New(server.URL, "token", nil)

	price, err := client.Last(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Last() error = %v", err)
	}
	if price != 190.5 {
		t.Errorf("Last() = %v, want 190.5", price)
	}
}

func TestClient_Last_CacheHit(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits, map[string]float64{"AAPL": 190.5})
	client := New(server.URL, "token", nil)

	for i := 0; i < 3; i++ {
		if _, err := client.Last(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Last() call %d error = %v", i+1, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1: repeat lookups must come from cache", got)
	}
}

func TestClient_Last_NotFoundIsPermanent(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits, nil)
	client := New(server.URL, "token", nil)

	if _, err := client.Last(context.Background(), "NOPE"); err == nil {
		t.Fatal("Last() on unknown symbol returned no error")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1: a 404 must not be retried", got)
	}
}

func TestClient_Last_MalformedClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"close": "not a number"}`)
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, "token", nil)

	if _, err := client.Last(context.Background(), "AAPL"); err == nil {
		t.Error("Last() accepted a non-numeric close")
	}
}

func TestClient_LastAll(t *testing.T) {
	var hits atomic.Int64
	server := quoteServer(t, &hits, map[string]float64{"AAPL": 190.5, "MSFT": 410})
	client := New(server.URL, "token", nil)

	prices := client.LastAll(context.Background(), []string{"AAPL", "MSFT", "NOPE"})

	if len(prices) != 2 {
		t.Fatalf("got %d prices, want 2 (failed symbol absent, not fatal)", len(prices))
	}
	if prices["AAPL"] != 190.5 || prices["MSFT"] != 410 {
		t.Errorf("prices = %v", prices)
	}
	if _, ok := prices["NOPE"]; ok {
		t.Error("failed symbol present in the map")
	}
}
