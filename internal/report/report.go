// Package report aggregates the run's trade history into summary statistics
// and an end-of-run CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ml-trading-bot/internal/types"
)

type Summary struct {
	Trades      int
	BuyQty      int
	BuyValue    float64
	SellQty     int
	SellValue   float64
	RealizedPnL float64
}

// Summarize folds the trade history into per-side totals. Realized PnL is
// sell proceeds minus buy cost, meaningful because sells always liquidate the
// full position.
func Summarize(trades []types.Trade) Summary {
	var s Summary
	s.Trades = len(trades)
	for _, t := range trades {
		value := float64(t.Quantity) * t.Price
		switch t.Action {
		case types.ActionBuy:
			s.BuyQty += t.Quantity
			s.BuyValue += value
		case types.ActionSell:
			s.SellQty += t.Quantity
			s.SellValue += value
		}
	}
	s.RealizedPnL = s.SellValue - s.BuyValue
	return s
}

func summaryDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return filepath.Join(v, "summary")
	}
	return filepath.Join("logs", "summary")
}

// WriteCSV writes the run's trades and summary row to a dated CSV file and
// returns its path. No trades, no file.
func WriteCSV(trades []types.Trade) (string, error) {
	if len(trades) == 0 {
		return "", nil
	}
	dir := summaryDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "ticker", "action", "quantity", "price", "expected_change", "order_id"}); err != nil {
		return "", err
	}
	for _, t := range trades {
		rec := []string{
			t.Ts.UTC().Format("2006-01-02 15:04:05"),
			t.Ticker,
			t.Action,
			strconv.Itoa(t.Quantity),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%.4f", t.ExpectedChange),
			t.OrderID,
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	s := Summarize(trades)
	if err := w.Write([]string{
		"TOTAL", "", "",
		strconv.Itoa(s.BuyQty + s.SellQty),
		"", fmt.Sprintf("%.2f", s.RealizedPnL), "",
	}); err != nil {
		return "", err
	}

	w.Flush()
	return path, w.Error()
}
