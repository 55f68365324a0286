package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-trading-bot/internal/types"
)

func chartJSON(timestamps []int64, closes []float64) string {
	ts, cl := "", ""
	for i := range timestamps {
		if i > 0 {
			ts += ","
			cl += ","
		}
		ts += fmt.Sprint(timestamps[i])
		cl += fmt.Sprint(closes[i])
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%s],
				"indicators": {"quote": [{
					"open": [%s], "high": [%s], "low": [%s],
					"close": [%s],
					"volume": [%s]
				}]}
			}],
			"error": null
		}
	}`, ts, cl, cl, cl, cl, ts)
}

func TestHistoricalCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SBER", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartJSON(
			[]int64{1700000000, 1700086400, 1700172800},
			[]float64{280, 0, 285}, // zero close marks a holiday gap
		))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	candles, err := p.HistoricalCandles(context.Background(), "SBER", 365)
	require.NoError(t, err)

	// the zero-close row is dropped
	require.Len(t, candles, 2)
	assert.Equal(t, 280.0, candles[0].Close)
	assert.Equal(t, 285.0, candles[1].Close)
	assert.Equal(t, int64(1700172800), candles[1].Ts)
}

func TestCurrentPriceUsesLastIntradayBar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartJSON([]int64{1, 2, 3}, []float64{284, 284.5, 285.25}))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	price, err := p.CurrentPrice(context.Background(), "SBER")
	require.NoError(t, err)
	assert.Equal(t, 285.25, price)
}

func TestPreviousCloseUsesSecondToLastDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartJSON([]int64{1, 2, 3}, []float64{280, 282, 285}))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	price, err := p.PreviousClose(context.Background(), "SBER")
	require.NoError(t, err)
	assert.Equal(t, 282.0, price)
}

func TestChartErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	_, err := p.HistoricalCandles(context.Background(), "GONE", 90)
	require.ErrorIs(t, err, types.ErrUnavailable)
	assert.Contains(t, err.Error(), "delisted")
}

func TestChartHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL)
	_, err := p.CurrentPrice(context.Background(), "SBER")
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestRangeForDays(t *testing.T) {
	assert.Equal(t, "5d", rangeForDays(3))
	assert.Equal(t, "1mo", rangeForDays(30))
	assert.Equal(t, "3mo", rangeForDays(90))
	assert.Equal(t, "6mo", rangeForDays(120))
	assert.Equal(t, "1y", rangeForDays(365))
	assert.Equal(t, "2y", rangeForDays(400))
}
