package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-trading-bot/internal/ledger"
	"ml-trading-bot/internal/store"
	"ml-trading-bot/internal/types"
)

// fakeBroker confirms or rejects orders according to placeOrder and counts
// submissions.
type fakeBroker struct {
	placeOrder func(ticker string, quantity int, direction string) (types.OrderResp, error)
	submitted  []types.OrderReq
	balance    float64
}

func (f *fakeBroker) AccountInfo(ctx context.Context) (types.Account, error) {
	return types.Account{Name: "test"}, nil
}

func (f *fakeBroker) ResolveInstrument(ctx context.Context, ticker string) (types.Instrument, error) {
	return types.Instrument{Ticker: ticker, FIGI: "FIGI-" + ticker}, nil
}

func (f *fakeBroker) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	return 0, types.ErrUnavailable
}

func (f *fakeBroker) Candles(ctx context.Context, ticker, interval string, lookbackDays int) ([]types.Candle, error) {
	return nil, types.ErrUnavailable
}

func (f *fakeBroker) PlaceMarketOrder(ctx context.Context, ticker string, quantity int, direction string) (types.OrderResp, error) {
	f.submitted = append(f.submitted, types.OrderReq{FIGI: ticker, Quantity: quantity, Direction: direction})
	return f.placeOrder(ticker, quantity, direction)
}

func (f *fakeBroker) Portfolio(ctx context.Context) (types.Portfolio, error) {
	return types.Portfolio{}, nil
}

func (f *fakeBroker) Balance(ctx context.Context) (float64, error) {
	return f.balance, nil
}

func (f *fakeBroker) Orders(ctx context.Context) ([]types.Order, error) { return nil, nil }

func (f *fakeBroker) CancelOrder(ctx context.Context, orderID string) error { return nil }

func (f *fakeBroker) Operations(ctx context.Context, days int) ([]types.Operation, error) {
	return nil, nil
}

func confirmAll(ticker string, quantity int, direction string) (types.OrderResp, error) {
	return types.OrderResp{OrderID: "ord-1", Status: "FILLED"}, nil
}

func rejectAll(ticker string, quantity int, direction string) (types.OrderResp, error) {
	return types.OrderResp{}, fmt.Errorf("%w: endpoint returned 400", types.ErrRejected)
}

func testConfig(t *testing.T) *store.Config {
	t.Helper()
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	cfg := &store.Config{
		Mode:                "DRY_RUN",
		Symbol:              "SBER",
		MaxPositionSize:     0.1,
		PredictionThreshold: 0.02,
	}
	return cfg
}

func TestBuySignalSizesPositionFromBalance(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	ldg := ledger.New(10000)
	eng := New(cfg, brk, ldg)

	// expectedChange = 0.03 > 0.02: investment 1000, quantity floor(1000/100) = 10
	res, err := eng.Step(context.Background(), 100, 103)
	require.NoError(t, err)

	assert.Equal(t, types.ActionBuy, res.Action)
	assert.Equal(t, 10, res.Quantity)
	assert.InDelta(t, 0.03, res.ExpectedChange, 1e-9)
	assert.Equal(t, "ord-1", res.OrderID)

	assert.Equal(t, 10, ldg.Quantity("SBER"))
	assert.Equal(t, 9000.0, ldg.Balance())
	assert.Equal(t, 1, ldg.TradeCount())

	require.Len(t, brk.submitted, 1)
	assert.Equal(t, types.ActionBuy, brk.submitted[0].Direction)
	assert.Equal(t, 10, brk.submitted[0].Quantity)
	// cost never exceeds the sized investment
	assert.LessOrEqual(t, float64(res.Quantity)*res.CurrentPrice, 10000*cfg.MaxPositionSize)
}

func TestHoldInsideThresholdBand(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	ldg := ledger.New(10000)
	eng := New(cfg, brk, ldg)

	for _, predicted := range []float64{101, 99, 100, 101.9, 98.1} {
		res, err := eng.Step(context.Background(), 100, predicted)
		require.NoError(t, err)
		assert.Equal(t, types.ActionHold, res.Action, "predicted=%v", predicted)
	}

	assert.Empty(t, brk.submitted)
	assert.Equal(t, 0, ldg.TradeCount())
	assert.Equal(t, 10000.0, ldg.Balance())
}

func TestNoBuyWhenAlreadyHolding(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	ldg := ledger.New(10000)
	ldg.RecordTrade(types.Trade{Action: types.ActionBuy, Ticker: "SBER", Quantity: 10, Price: 100})
	eng := New(cfg, brk, ldg)

	res, err := eng.Step(context.Background(), 100, 103)
	require.NoError(t, err)

	assert.Equal(t, types.ActionHold, res.Action)
	assert.Empty(t, brk.submitted)
	assert.Equal(t, 10, ldg.Quantity("SBER"))
}

func TestSellLiquidatesFullPosition(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	ldg := ledger.New(10000)
	ldg.RecordTrade(types.Trade{Action: types.ActionBuy, Ticker: "SBER", Quantity: 10, Price: 100})
	eng := New(cfg, brk, ldg)

	// expectedChange ≈ -0.11 < -0.02
	res, err := eng.Step(context.Background(), 90, 80)
	require.NoError(t, err)

	assert.Equal(t, types.ActionSell, res.Action)
	assert.Equal(t, 10, res.Quantity)
	assert.Equal(t, 0, ldg.Quantity("SBER"))

	require.Len(t, brk.submitted, 1)
	assert.Equal(t, types.ActionSell, brk.submitted[0].Direction)
	assert.Equal(t, 10, brk.submitted[0].Quantity)
}

func TestNoSellWhenFlat(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	eng := New(cfg, brk, ledger.New(10000))

	res, err := eng.Step(context.Background(), 90, 80)
	require.NoError(t, err)

	assert.Equal(t, types.ActionHold, res.Action)
	assert.Empty(t, brk.submitted)
}

func TestRejectedBuyIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: rejectAll}
	ldg := ledger.New(10000)
	eng := New(cfg, brk, ldg)

	for i := 0; i < 2; i++ {
		res, err := eng.Step(context.Background(), 100, 103)
		require.NoError(t, err)
		assert.Equal(t, types.ActionBuy, res.Action)
		assert.Equal(t, 10, res.Quantity, "same decision on replay")
		assert.Empty(t, res.OrderID)
	}

	assert.Equal(t, 0, ldg.TradeCount())
	assert.Equal(t, 0, ldg.Quantity("SBER"))
	assert.Equal(t, 10000.0, ldg.Balance())

	// once the broker recovers, the identical decision goes through
	brk.placeOrder = confirmAll
	res, err := eng.Step(context.Background(), 100, 103)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Quantity)
	assert.Equal(t, 1, ldg.TradeCount())
}

func TestRejectedSellRetainsPosition(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: rejectAll}
	ldg := ledger.New(10000)
	ldg.RecordTrade(types.Trade{Action: types.ActionBuy, Ticker: "SBER", Quantity: 10, Price: 100})
	eng := New(cfg, brk, ldg)

	res, err := eng.Step(context.Background(), 90, 80)
	require.NoError(t, err)

	assert.Equal(t, types.ActionSell, res.Action)
	assert.Equal(t, 10, ldg.Quantity("SBER"), "rejection leaves the position unchanged")
	assert.Equal(t, 1, ldg.TradeCount())
}

func TestTradeHistoryMatchesConfirmedOrders(t *testing.T) {
	cfg := testConfig(t)
	rejected := true
	brk := &fakeBroker{}
	brk.placeOrder = func(ticker string, quantity int, direction string) (types.OrderResp, error) {
		// alternate rejected and confirmed submissions
		rejected = !rejected
		if rejected {
			return rejectAll(ticker, quantity, direction)
		}
		return confirmAll(ticker, quantity, direction)
	}
	ldg := ledger.New(100000)
	eng := New(cfg, brk, ldg)

	confirmedBuys := 0
	for i := 0; i < 6; i++ {
		res, err := eng.Step(context.Background(), 100, 103)
		require.NoError(t, err)
		if res.OrderID != "" {
			confirmedBuys++
			// liquidate so the next cycle can buy again
			_, err := eng.Step(context.Background(), 100, 90)
			require.NoError(t, err)
		}
	}

	trades := ldg.Trades()
	for _, tr := range trades {
		assert.Contains(t, []string{types.ActionBuy, types.ActionSell}, tr.Action)
		assert.Greater(t, tr.Quantity, 0)
	}
	assert.GreaterOrEqual(t, confirmedBuys, 1)
	// every history entry corresponds to a confirmed order
	assert.Equal(t, 2*confirmedBuys, ldg.TradeCount())
}

func TestInsufficientFundsPlacesNoOrder(t *testing.T) {
	cfg := testConfig(t)
	brk := &fakeBroker{placeOrder: confirmAll}
	ldg := ledger.New(500) // investment 50 < price
	eng := New(cfg, brk, ldg)

	res, err := eng.Step(context.Background(), 100, 103)
	require.NoError(t, err)

	assert.Equal(t, types.ActionHold, res.Action)
	assert.Empty(t, brk.submitted)
}

func TestInvalidPricesAbortCycle(t *testing.T) {
	cfg := testConfig(t)
	eng := New(cfg, &fakeBroker{placeOrder: confirmAll}, ledger.New(10000))

	_, err := eng.Step(context.Background(), 0, 103)
	assert.Error(t, err)

	_, err = eng.Step(context.Background(), 100, -1)
	assert.Error(t, err)
}

func TestLiveModeUsesBrokerBalance(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = "LIVE"
	brk := &fakeBroker{placeOrder: confirmAll, balance: 20000}
	ldg := ledger.New(0)
	eng := New(cfg, brk, ldg)

	res, err := eng.Step(context.Background(), 100, 103)
	require.NoError(t, err)

	// investment 2000 from broker balance, quantity 20
	assert.Equal(t, 20, res.Quantity)
}
