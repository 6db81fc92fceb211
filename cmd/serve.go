package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/pnlbook/pnlbook"
	"github.com/pnlbook/pnlbook/store"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	config string
	addr   string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve P&L results over HTTP" }
func (*serveCmd) Usage() string {
	return `pbk serve [-c <config>] [-addr <host:port>]

  Serves the computed result set as JSON. Every request recomputes from the
  current trade ledger and price snapshot; the engine itself holds no state.

    GET /api/pnl[?date=YYYY-MM-DD]
    GET /api/pnl/{symbol}[?date=YYYY-MM-DD]
    GET /api/snapshots
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "c", "", "Config file (default pnlbook.yaml if present)")
	f.StringVar(&c.addr, "addr", ":8080", "Listen address")
}

// server recomputes results per request. The mutex guarantees at most one
// in-flight calculation while the trade and price files are being re-read.
type server struct {
	cfg    *Config
	logger *zap.Logger
	mu     sync.Mutex
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(c.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	s := &server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Get("/pnl", s.handlePnL)
		r.Get("/pnl/{symbol}", s.handleSymbol)
		r.Get("/snapshots", s.handleSnapshots)
	})

	logger.Info("listening", zap.String("addr", c.addr))
	if err := http.ListenAndServe(c.addr, r); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// compute re-reads the inputs and runs the engine for the requested date.
func (s *server) compute(asOf pnlbook.Date) ([]pnlbook.InstrumentRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades, anomalies, err := loadTrades(s.cfg, "")
	if err != nil {
		return nil, err
	}
	logAnomalies(s.logger, anomalies)

	income, incomeAnomalies, err := loadIncome(s.cfg)
	if err != nil {
		return nil, err
	}
	logAnomalies(s.logger, incomeAnomalies)

	prices, err := loadPrices(s.cfg, "")
	if err != nil {
		return nil, err
	}

	results, computeAnomalies, err := pnlbook.ComputePnL(trades, prices, asOf, income)
	if err != nil {
		return nil, err
	}
	logAnomalies(s.logger, computeAnomalies)
	return results, nil
}

func (s *server) asOf(r *http.Request) (pnlbook.Date, error) {
	return parseAsOf(r.URL.Query().Get("date"))
}

func (s *server) handlePnL(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	results, err := s.compute(asOf)
	if err != nil {
		s.logger.Error("calculation failed", zap.Error(err))
		http.Error(w, "calculation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

func (s *server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	results, err := s.compute(asOf)
	if err != nil {
		s.logger.Error("calculation failed", zap.Error(err))
		http.Error(w, "calculation failed", http.StatusInternalServerError)
		return
	}
	symbol := chi.URLParam(r, "symbol")
	for _, result := range results {
		if result.Symbol == symbol {
			writeJSON(w, result)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	db, err := store.Open(s.cfg.DBPath, s.logger)
	if err != nil {
		s.logger.Error("cannot open snapshot store", zap.Error(err))
		http.Error(w, "snapshot store unavailable", http.StatusInternalServerError)
		return
	}
	defer db.Close()
	dates, err := db.Dates()
	if err != nil {
		s.logger.Error("cannot list snapshots", zap.Error(err))
		http.Error(w, "snapshot store unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dates)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
