package kite

import "time"

// Session holds the tokens issued after the login exchange.
type Session struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	PublicToken string `json:"public_token"`
}

// Instrument is one row of the Kite instrument dump.
type Instrument struct {
	InstrumentToken string
	ExchangeToken   string
	TradingSymbol   string
	Name            string
	LastPrice       float64
	Expiry          string
	Strike          float64
	TickSize        float64
	LotSize         int64
	InstrumentType  string
	Segment         string
	Exchange        string
}

// HistoricalRequest selects a candle range for one instrument.
type HistoricalRequest struct {
	InstrumentToken string
	Interval        string
	From            time.Time
	To              time.Time
}
