// Package pnlbook tracks a brokerage account's realized and unrealized
// profit and loss from a ledger of buy/sell trades plus a price snapshot.
//
// The core is [ComputePnL]: given the full trade tape, a per-symbol price map,
// an as-of date and optional dividend/interest records, it evaluates every
// instrument under four accounting conventions (the hybrid "real" method,
// average cost, FIFO and LIFO), handles option expiration relative to the
// as-of date, folds each option's P&L into its underlying's result, and
// returns one rollup per stock/ETF instrument.
//
// The engine is synchronous and side-effect-free: it reads an immutable
// snapshot and returns fresh results, so it is safe to call concurrently as
// long as each call gets its own inputs. Ingestion (ImportTrades), persistence
// (the store package) and presentation (the renderer package) live at the
// boundary and never leak into the calculation.
package pnlbook
