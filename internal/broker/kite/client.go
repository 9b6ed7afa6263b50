// Package kite is a REST client for the Zerodha Kite Connect v3 API,
// covering the session exchange, historical candles, last traded prices
// and the instrument dump.
package kite

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paperkite/paperkite/internal/domain/candle"
	"github.com/paperkite/paperkite/pkg/errors"
)

const (
	defaultBaseURL = "https://api.kite.trade"
	kiteVersion    = "3"
	dateLayout     = "2006-01-02 15:04:05"
)

// Config carries the Kite API credentials and endpoint.
type Config struct {
	APIKey      string        `env:"API_KEY"`
	APISecret   string        `env:"API_SECRET"`
	AccessToken string        `env:"ACCESS_TOKEN"`
	BaseURL     string        `env:"BASE_URL" envDefault:"https://api.kite.trade"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Client talks to the Kite Connect REST API.
type Client struct {
	config Config
	http   *http.Client
}

var _ Broker = (*Client)(nil)

// NewClient creates a Kite client. The access token may be set later via
// GenerateSession.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// GenerateSession exchanges a request token for an access token and
// stores it on the client for subsequent calls.
func (c *Client) GenerateSession(ctx context.Context, requestToken string) (*Session, error) {
	checksum := sha256.Sum256([]byte(c.config.APIKey + requestToken + c.config.APISecret))

	form := url.Values{}
	form.Set("api_key", c.config.APIKey)
	form.Set("request_token", requestToken)
	form.Set("checksum", hex.EncodeToString(checksum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/session/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req)

	var payload struct {
		Data Session `json:"data"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	c.config.AccessToken = payload.Data.AccessToken
	return &payload.Data, nil
}

// GetHistoricalData fetches candles for one instrument and interval.
// Kite returns candles as positional arrays [timestamp, o, h, l, c, v].
func (c *Client) GetHistoricalData(ctx context.Context, histReq HistoricalRequest) (candle.Series, error) {
	endpoint := fmt.Sprintf("%s/instruments/historical/%s/%s",
		c.config.BaseURL, url.PathEscape(histReq.InstrumentToken), url.PathEscape(histReq.Interval))

	query := url.Values{}
	query.Set("from", histReq.From.Format(dateLayout))
	query.Set("to", histReq.To.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	c.setHeaders(req)

	var payload struct {
		Data struct {
			Candles [][]json.RawMessage `json:"candles"`
		} `json:"data"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	series := make(candle.Series, 0, len(payload.Data.Candles))
	for _, raw := range payload.Data.Candles {
		parsed, err := parseCandle(raw)
		if err != nil {
			return nil, err
		}
		series = append(series, parsed)
	}
	return series, nil
}

// GetLTP fetches last traded prices for instruments given as
// "EXCHANGE:TRADINGSYMBOL" identifiers.
func (c *Client) GetLTP(ctx context.Context, instruments ...string) (map[string]float64, error) {
	query := url.Values{}
	for _, instrument := range instruments {
		query.Add("i", instrument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/quote/ltp?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	c.setHeaders(req)

	var payload struct {
		Data map[string]struct {
			LastPrice float64 `json:"last_price"`
		} `json:"data"`
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(payload.Data))
	for instrument, quote := range payload.Data {
		out[instrument] = quote.LastPrice
	}
	return out, nil
}

// GetInstruments downloads and parses the CSV instrument dump for one
// exchange.
func (c *Client) GetInstruments(ctx context.Context, exchange string) ([]Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/instruments/"+url.PathEscape(exchange), nil)
	if err != nil {
		return nil, errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	return parseInstrumentsCSV(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Kite-Version", kiteVersion)
	if c.config.AccessToken != "" {
		req.Header.Set("Authorization", "token "+c.config.APIKey+":"+c.config.AccessToken)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewDomainError(err.Error(), errors.KiteRequestError, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewDomainError("decoding kite response: "+err.Error(), errors.KiteResponseError, "")
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errors.NewDomainError(
		fmt.Sprintf("kite returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		errors.KiteResponseError, "",
	)
}

func parseCandle(raw []json.RawMessage) (candle.Candle, error) {
	if len(raw) < 6 {
		return candle.Candle{}, errors.NewDomainError("short candle row", errors.KiteResponseError, "candles")
	}

	var ts string
	if err := json.Unmarshal(raw[0], &ts); err != nil {
		return candle.Candle{}, errors.NewDomainError("candle timestamp: "+err.Error(), errors.KiteResponseError, "candles")
	}
	periodStart, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return candle.Candle{}, errors.NewDomainError("candle timestamp: "+err.Error(), errors.KiteResponseError, "candles")
	}

	nums := make([]float64, 5)
	for i := 0; i < 5; i++ {
		if err := json.Unmarshal(raw[i+1], &nums[i]); err != nil {
			return candle.Candle{}, errors.NewDomainError("candle fields: "+err.Error(), errors.KiteResponseError, "candles")
		}
	}

	return candle.Candle{
		PeriodStart: periodStart,
		Open:        nums[0],
		High:        nums[1],
		Low:         nums[2],
		Close:       nums[3],
		Volume:      int64(nums[4]),
	}, nil
}

func parseInstrumentsCSV(r io.Reader) ([]Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewDomainError("parsing instrument dump: "+err.Error(), errors.KiteResponseError, "")
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	out := make([]Instrument, 0, len(records)-1)
	for _, row := range records[1:] {
		lastPrice, _ := strconv.ParseFloat(field(row, "last_price"), 64)
		strike, _ := strconv.ParseFloat(field(row, "strike"), 64)
		tickSize, _ := strconv.ParseFloat(field(row, "tick_size"), 64)
		lotSize, _ := strconv.ParseInt(field(row, "lot_size"), 10, 64)

		out = append(out, Instrument{
			InstrumentToken: field(row, "instrument_token"),
			ExchangeToken:   field(row, "exchange_token"),
			TradingSymbol:   field(row, "tradingsymbol"),
			Name:            field(row, "name"),
			LastPrice:       lastPrice,
			Expiry:          field(row, "expiry"),
			Strike:          strike,
			TickSize:        tickSize,
			LotSize:         lotSize,
			InstrumentType:  field(row, "instrument_type"),
			Segment:         field(row, "segment"),
			Exchange:        field(row, "exchange"),
		})
	}
	return out, nil
}
