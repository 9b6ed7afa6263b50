package timeframe

import (
	"time"
)

// Key identifies the bucket a tick timestamp falls into. Equality of keys
// is the sole grouping criterion for aggregation; there are no tolerance
// windows. Minute is already floored to the timeframe boundary.
type Key struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// BucketKey calculates the bucket key for a timestamp.
func (tf Timeframe) BucketKey(ts time.Time) Key {
	floored := tf.Floor(ts)
	return Key{
		Year:   floored.Year(),
		Month:  floored.Month(),
		Day:    floored.Day(),
		Hour:   floored.Hour(),
		Minute: floored.Minute(),
	}
}

// Floor calculates the period start of the bucket containing ts. Intraday
// timeframes floor the minute within the hour, so 5-minute candles align
// to :00/:05/:10 regardless of the timestamp's zone offset.
func (tf Timeframe) Floor(ts time.Time) time.Time {
	switch tf.Name {
	case "minute":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), 0, 0, ts.Location())
	case "5minute":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute()/5*5, 0, 0, ts.Location())
	case "15minute":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute()/15*15, 0, 0, ts.Location())
	case "30minute":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute()/30*30, 0, 0, ts.Location())
	case "60minute":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, ts.Location())
	case "day":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	default:
		return ts.Truncate(tf.Duration)
	}
}

// Range returns the start and end time of the bucket containing ts.
func (tf Timeframe) Range(ts time.Time) (start, end time.Time) {
	start = tf.Floor(ts)
	end = start.Add(tf.Duration)
	return start, end
}

// SameBucket checks if two timestamps fall into the same bucket.
func (tf Timeframe) SameBucket(a, b time.Time) bool {
	return tf.BucketKey(a) == tf.BucketKey(b)
}
