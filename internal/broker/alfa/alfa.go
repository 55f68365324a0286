// Package alfa is the broker client: it translates domain operations into
// authenticated REST calls against the Alfa Invest API gateway and normalizes
// faults into the shared error taxonomy.
package alfa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/types"
)

type Params struct {
	Mode              string // DRY_RUN or LIVE
	BaseURL           string
	Token             string
	AccountID         string
	BaseCurrency      string
	Timeout           time.Duration
	RequestsPerSecond float64
	InstrumentTTL     time.Duration
}

type Client struct {
	p           Params
	req         *requester
	instruments *instrumentCache
}

var _ interfaces.Broker = (*Client)(nil)

func New(p Params) *Client {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.InstrumentTTL == 0 {
		p.InstrumentTTL = 12 * time.Hour
	}
	return &Client{
		p:           p,
		req:         newRequester(p.BaseURL, p.Token, p.Timeout, p.RequestsPerSecond),
		instruments: newInstrumentCache(p.InstrumentTTL),
	}
}

func (c *Client) AccountInfo(ctx context.Context) (types.Account, error) {
	data, err := c.req.get(ctx, "/accounts/"+c.p.AccountID, nil)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch account info", err, "account_id", c.p.AccountID)
		return types.Account{}, fmt.Errorf("%w: account info: %v", types.ErrUnavailable, err)
	}
	var acc types.Account
	if err := json.Unmarshal(data, &acc); err != nil {
		return types.Account{}, fmt.Errorf("%w: decode account info: %v", types.ErrUnavailable, err)
	}
	return acc, nil
}

type searchResponse struct {
	Instruments []struct {
		Ticker string `json:"ticker"`
		FIGI   string `json:"figi"`
		Name   string `json:"name"`
	} `json:"instruments"`
}

// ResolveInstrument maps a ticker to a broker instrument via the search
// endpoint. The match is case-sensitive and exact; the first exact hit wins
// and is cached until its TTL expires. Failed lookups are never cached.
func (c *Client) ResolveInstrument(ctx context.Context, ticker string) (types.Instrument, error) {
	if inst, ok := c.instruments.get(ticker); ok {
		return inst, nil
	}

	data, err := c.req.get(ctx, "/instruments/search", url.Values{"query": {ticker}})
	if err != nil {
		logger.ErrorWithErr(ctx, "Instrument search failed", err, "ticker", ticker)
		return types.Instrument{}, fmt.Errorf("%w: instrument search for %s: %v", types.ErrUnavailable, ticker, err)
	}

	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return types.Instrument{}, fmt.Errorf("%w: decode instrument search: %v", types.ErrUnavailable, err)
	}

	for _, hit := range sr.Instruments {
		if hit.Ticker == ticker {
			inst := types.Instrument{Ticker: hit.Ticker, FIGI: hit.FIGI, Name: hit.Name}
			c.instruments.set(ticker, inst)
			logger.Debug(ctx, "Instrument resolved", "ticker", ticker, "figi", inst.FIGI)
			return inst, nil
		}
	}

	logger.Warn(ctx, "No exact instrument match", "ticker", ticker, "candidates", len(sr.Instruments))
	return types.Instrument{}, fmt.Errorf("%w: %s", types.ErrNotFound, ticker)
}

type lastPricesResponse struct {
	LastPrices []struct {
		FIGI  string  `json:"figi"`
		Price float64 `json:"price"`
	} `json:"last_prices"`
}

func (c *Client) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	inst, err := c.ResolveInstrument(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("%w: current price for %s: unresolved instrument", types.ErrUnavailable, ticker)
	}

	data, err := c.req.get(ctx, "/market-data/last-prices", url.Values{"figis": {inst.FIGI}})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch last price", err, "ticker", ticker, "figi", inst.FIGI)
		return 0, fmt.Errorf("%w: last price for %s: %v", types.ErrUnavailable, ticker, err)
	}

	var lr lastPricesResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		return 0, fmt.Errorf("%w: decode last prices: %v", types.ErrUnavailable, err)
	}
	if len(lr.LastPrices) == 0 {
		logger.Warn(ctx, "Empty last-price response", "ticker", ticker)
		return 0, fmt.Errorf("%w: no price entries for %s", types.ErrUnavailable, ticker)
	}
	return lr.LastPrices[0].Price, nil
}

type candlesResponse struct {
	Candles []struct {
		Time   string  `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"candles"`
}

// Candles fetches bars over the [now-lookbackDays, now] window. Zero candles
// from the broker is a valid empty result, not a fault.
func (c *Client) Candles(ctx context.Context, ticker, interval string, lookbackDays int) ([]types.Candle, error) {
	inst, err := c.ResolveInstrument(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: candles for %s: unresolved instrument", types.ErrUnavailable, ticker)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)
	params := url.Values{
		"figi":     {inst.FIGI},
		"interval": {interval},
		"from":     {start.Format(time.RFC3339)},
		"to":       {end.Format(time.RFC3339)},
	}

	data, err := c.req.get(ctx, "/market-data/candles", params)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch candles", err, "ticker", ticker, "interval", interval)
		return nil, fmt.Errorf("%w: candles for %s: %v", types.ErrUnavailable, ticker, err)
	}

	var cr candlesResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("%w: decode candles: %v", types.ErrUnavailable, err)
	}

	candles := make([]types.Candle, 0, len(cr.Candles))
	for _, wc := range cr.Candles {
		ts, err := time.Parse(time.RFC3339, wc.Time)
		if err != nil {
			continue
		}
		candles = append(candles, types.Candle{
			Ts:     ts.Unix(),
			Open:   wc.Open,
			High:   wc.High,
			Low:    wc.Low,
			Close:  wc.Close,
			Volume: wc.Volume,
		})
	}
	logger.Debug(ctx, "Candles fetched", "ticker", ticker, "count", len(candles))
	return candles, nil
}

// PlaceMarketOrder submits a market order. Quantity is coerced to its
// absolute value before transmission. In DRY_RUN mode the order is confirmed
// locally without touching the broker.
func (c *Client) PlaceMarketOrder(ctx context.Context, ticker string, quantity int, direction string) (types.OrderResp, error) {
	if quantity < 0 {
		quantity = -quantity
	}

	if c.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}

	inst, err := c.ResolveInstrument(ctx, ticker)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order rejected: unresolved instrument", err, "ticker", ticker)
		return types.OrderResp{}, fmt.Errorf("%w: %s: unresolved instrument", types.ErrRejected, ticker)
	}

	body, err := json.Marshal(types.OrderReq{
		FIGI:      inst.FIGI,
		Quantity:  quantity,
		Direction: direction,
		AccountID: c.p.AccountID,
		OrderType: "ORDER_TYPE_MARKET",
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("%w: marshal order: %v", types.ErrRejected, err)
	}

	logger.Info(ctx, "Placing market order", "ticker", ticker, "direction", direction, "quantity", quantity)

	data, err := c.req.post(ctx, "/orders", body)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order placement failed", err, "ticker", ticker, "direction", direction)
		return types.OrderResp{}, fmt.Errorf("%w: %s %s: %v", types.ErrRejected, direction, ticker, err)
	}

	var resp types.OrderResp
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.OrderResp{}, fmt.Errorf("%w: decode order response: %v", types.ErrRejected, err)
	}
	logger.Info(ctx, "Order placed", "ticker", ticker, "order_id", resp.OrderID, "status", resp.Status)
	return resp, nil
}

func (c *Client) Portfolio(ctx context.Context) (types.Portfolio, error) {
	data, err := c.req.get(ctx, "/accounts/"+c.p.AccountID+"/portfolio", nil)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch portfolio", err, "account_id", c.p.AccountID)
		return types.Portfolio{}, fmt.Errorf("%w: portfolio: %v", types.ErrUnavailable, err)
	}
	var pf types.Portfolio
	if err := json.Unmarshal(data, &pf); err != nil {
		return types.Portfolio{}, fmt.Errorf("%w: decode portfolio: %v", types.ErrUnavailable, err)
	}
	return pf, nil
}

// Balance extracts the base-currency cash position from the portfolio.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	pf, err := c.Portfolio(ctx)
	if err != nil {
		return 0, err
	}
	for _, pos := range pf.Positions {
		if pos.InstrumentType == "currency" && pos.Ticker == c.p.BaseCurrency {
			return pos.Balance, nil
		}
	}
	logger.Warn(ctx, "No base-currency position in portfolio", "currency", c.p.BaseCurrency)
	return 0, fmt.Errorf("%w: no %s balance in portfolio", types.ErrUnavailable, c.p.BaseCurrency)
}

type ordersResponse struct {
	Orders []types.Order `json:"orders"`
}

func (c *Client) Orders(ctx context.Context) ([]types.Order, error) {
	data, err := c.req.get(ctx, "/accounts/"+c.p.AccountID+"/orders", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", types.ErrUnavailable, err)
	}
	var or ordersResponse
	if err := json.Unmarshal(data, &or); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", types.ErrUnavailable, err)
	}
	return or.Orders, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if _, err := c.req.post(ctx, "/orders/"+orderID+"/cancel", nil); err != nil {
		logger.ErrorWithErr(ctx, "Failed to cancel order", err, "order_id", orderID)
		return fmt.Errorf("%w: cancel order %s: %v", types.ErrRejected, orderID, err)
	}
	logger.Info(ctx, "Order cancelled", "order_id", orderID)
	return nil
}

type operationsResponse struct {
	Operations []types.Operation `json:"operations"`
}

func (c *Client) Operations(ctx context.Context, days int) ([]types.Operation, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	params := url.Values{
		"account_id": {c.p.AccountID},
		"from":       {start.Format(time.RFC3339)},
		"to":         {end.Format(time.RFC3339)},
	}
	data, err := c.req.get(ctx, "/operations", params)
	if err != nil {
		return nil, fmt.Errorf("%w: operations for last %d days: %v", types.ErrUnavailable, days, err)
	}
	var opr operationsResponse
	if err := json.Unmarshal(data, &opr); err != nil {
		return nil, fmt.Errorf("%w: decode operations: %v", types.ErrUnavailable, err)
	}
	return opr.Operations, nil
}
