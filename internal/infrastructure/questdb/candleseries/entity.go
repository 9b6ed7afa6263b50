package candleseries

import (
	"time"

	"github.com/paperkite/paperkite/internal/domain/candle"
)

// Row is one cached candle as stored in QuestDB.
type Row struct {
	PeriodStart time.Time
	Symbol      string
	Timeframe   string
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      int64
}

// Filter selects a cached range for one symbol and timeframe.
type Filter struct {
	Symbol    string
	Timeframe string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// FromSeries converts a candle series to storage rows.
func FromSeries(symbol, tf string, series candle.Series) []*Row {
	rows := make([]*Row, len(series))
	for i, c := range series {
		rows[i] = &Row{
			PeriodStart: c.PeriodStart,
			Symbol:      symbol,
			Timeframe:   tf,
			Open:        c.Open,
			High:        c.High,
			Low:         c.Low,
			Close:       c.Close,
			Volume:      c.Volume,
		}
	}
	return rows
}

// ToSeries converts storage rows back to a candle series in row order.
func ToSeries(rows []*Row) candle.Series {
	series := make(candle.Series, len(rows))
	for i, r := range rows {
		series[i] = candle.Candle{
			PeriodStart: r.PeriodStart,
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
		}
	}
	return series
}
