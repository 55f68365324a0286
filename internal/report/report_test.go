package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-trading-bot/internal/types"
)

func TestSummarize(t *testing.T) {
	trades := []types.Trade{
		{Action: types.ActionBuy, Quantity: 10, Price: 100},
		{Action: types.ActionSell, Quantity: 10, Price: 110},
		{Action: types.ActionBuy, Quantity: 5, Price: 90},
	}

	s := Summarize(trades)
	assert.Equal(t, 3, s.Trades)
	assert.Equal(t, 15, s.BuyQty)
	assert.Equal(t, 10, s.SellQty)
	assert.Equal(t, 1450.0, s.BuyValue)
	assert.Equal(t, 1100.0, s.SellValue)
	assert.InDelta(t, -350.0, s.RealizedPnL, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Trades)
	assert.Equal(t, 0.0, s.RealizedPnL)
}

func TestWriteCSV(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	trades := []types.Trade{
		{Ts: time.Now(), Action: types.ActionBuy, Ticker: "SBER", Quantity: 10, Price: 100, ExpectedChange: 0.03, OrderID: "ord-1"},
	}

	path, err := WriteCSV(trades)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "SBER")
	assert.Contains(t, content, "BUY")
	assert.Contains(t, content, "TOTAL")
	assert.Equal(t, 3, strings.Count(content, "\n"), "header + trade + total rows")
}

func TestWriteCSVNoTrades(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	path, err := WriteCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, path)
}
