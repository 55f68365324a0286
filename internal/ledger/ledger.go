// Package ledger is the in-memory record of holdings, trade history and the
// simulated cash balance for one run. It is single-writer: only the decision
// engine mutates it, and only after a confirmed order.
package ledger

import "ml-trading-bot/internal/types"

type Ledger struct {
	balance   float64
	positions map[string]int
	trades    []types.Trade
}

func New(initialBalance float64) *Ledger {
	return &Ledger{
		balance:   initialBalance,
		positions: make(map[string]int),
	}
}

// Quantity returns the held quantity for a ticker, 0 if unseen.
func (l *Ledger) Quantity(ticker string) int {
	return l.positions[ticker]
}

// Balance is the simulated cash balance. Meaningful in DRY_RUN mode only; in
// LIVE mode the broker's currency position is authoritative.
func (l *Ledger) Balance() float64 {
	return l.balance
}

// RecordTrade appends a confirmed trade and applies it to the position. A BUY
// adds the quantity and debits its cost; a SELL liquidates the whole position
// and credits the revenue. Partial sells are not modeled.
func (l *Ledger) RecordTrade(t types.Trade) {
	l.trades = append(l.trades, t)
	switch t.Action {
	case types.ActionBuy:
		l.positions[t.Ticker] += t.Quantity
		l.balance -= float64(t.Quantity) * t.Price
	case types.ActionSell:
		l.positions[t.Ticker] = 0
		l.balance += float64(t.Quantity) * t.Price
	}
}

func (l *Ledger) TradeCount() int {
	return len(l.trades)
}

// Trades returns a copy of the full trade history.
func (l *Ledger) Trades() []types.Trade {
	out := make([]types.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// LastTrades returns up to n most recent trades, oldest first.
func (l *Ledger) LastTrades(n int) []types.Trade {
	if n <= 0 || len(l.trades) == 0 {
		return nil
	}
	if n > len(l.trades) {
		n = len(l.trades)
	}
	out := make([]types.Trade, n)
	copy(out, l.trades[len(l.trades)-n:])
	return out
}
