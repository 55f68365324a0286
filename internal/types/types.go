package types

import "time"

// Candle is one OHLCV bar. Sequences are chronological and immutable once
// fetched.
type Candle struct {
	Ts                     int64
	Open, High, Low, Close float64
	Volume                 int64
}

// Instrument is a broker-resolved tradable. FIGI is the broker-internal
// identifier required by price and order endpoints.
type Instrument struct {
	Ticker string
	FIGI   string
	Name   string
}

// Quote is an ephemeral last-price observation.
type Quote struct {
	Ticker string
	Price  float64
	Ts     time.Time
}

type Trade struct {
	Ts             time.Time `json:"ts"`
	Action         string    `json:"action"` // BUY or SELL
	Ticker         string    `json:"ticker"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	ExpectedChange float64   `json:"expected_change"`
	OrderID        string    `json:"order_id,omitempty"`
}

// PortfolioPosition is one holding reported by the broker. Currency
// positions carry the account cash balance.
type PortfolioPosition struct {
	Ticker         string  `json:"ticker"`
	InstrumentType string  `json:"instrument_type"`
	Balance        float64 `json:"balance"`
}

type Portfolio struct {
	Positions []PortfolioPosition `json:"positions"`
}

type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrderReq struct {
	FIGI      string `json:"figi"`
	Quantity  int    `json:"quantity"`
	Direction string `json:"direction"`
	AccountID string `json:"account_id"`
	OrderType string `json:"order_type"`
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Order struct {
	OrderID   string  `json:"order_id"`
	FIGI      string  `json:"figi"`
	Direction string  `json:"direction"`
	Quantity  int     `json:"quantity"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
}

type Operation struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	FIGI   string  `json:"figi"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// StepResult is what one engine step produced, for status reporting.
type StepResult struct {
	Ticker         string  `json:"ticker"`
	Action         string  `json:"action"`
	ExpectedChange float64 `json:"expected_change"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
	Quantity       int     `json:"quantity,omitempty"`
	OrderID        string  `json:"order_id,omitempty"`
}

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)
