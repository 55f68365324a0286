// Package marketdata is the fallback data source: a Yahoo-style chart API
// used when the broker cannot serve historical candles.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/types"
)

type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.DataProvider = (*YahooProvider)(nil)

func NewYahooProvider(baseURL string) *YahooProvider {
	return &YahooProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooProvider) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := y.fetchChart(ctx, symbol, "1d", "1m")
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("%w: no intraday data for %s", types.ErrUnavailable, symbol)
	}
	return candles[len(candles)-1].Close, nil
}

func (y *YahooProvider) PreviousClose(ctx context.Context, symbol string) (float64, error) {
	candles, err := y.fetchChart(ctx, symbol, "5d", "1d")
	if err != nil {
		return 0, err
	}
	if len(candles) < 2 {
		return 0, fmt.Errorf("%w: not enough daily data for previous close of %s", types.ErrUnavailable, symbol)
	}
	return candles[len(candles)-2].Close, nil
}

func (y *YahooProvider) HistoricalCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error) {
	return y.fetchChart(ctx, symbol, rangeForDays(days), "1d")
}

func rangeForDays(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (y *YahooProvider) fetchChart(ctx context.Context, symbol, rng, interval string) ([]types.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol),
		url.Values{"range": {rng}, "interval": {interval}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Chart request failed", err, "symbol", symbol, "range", rng)
		return nil, fmt.Errorf("%w: chart for %s: %v", types.ErrUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: chart for %s: status %d", types.ErrUnavailable, symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read chart body: %v", types.ErrUnavailable, err)
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("%w: decode chart for %s: %v", types.ErrUnavailable, symbol, err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("%w: chart for %s: %s", types.ErrUnavailable, symbol, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty chart result for %s", types.ErrUnavailable, symbol)
	}

	res := cr.Chart.Result[0]
	q := res.Indicators.Quote[0]
	candles := make([]types.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) || q.Close[i] == 0 {
			continue
		}
		candles = append(candles, types.Candle{
			Ts:     ts,
			Open:   q.Open[i],
			High:   q.High[i],
			Low:    q.Low[i],
			Close:  q.Close[i],
			Volume: q.Volume[i],
		})
	}
	logger.Debug(ctx, "Chart fetched", "symbol", symbol, "range", rng, "candles", len(candles))
	return candles, nil
}
