package timeframe

import (
	"fmt"
	"time"
)

// Timeframe represents a candle granularity. Names follow the Kite
// historical-data interval names so they can be passed through to the
// broker API unchanged.
type Timeframe struct {
	Name     string
	Duration time.Duration
}

// Supported timeframes.
var (
	Minute    = Timeframe{Name: "minute", Duration: time.Minute}
	Minute5   = Timeframe{Name: "5minute", Duration: 5 * time.Minute}
	Minute15  = Timeframe{Name: "15minute", Duration: 15 * time.Minute}
	Minute30  = Timeframe{Name: "30minute", Duration: 30 * time.Minute}
	Minute60  = Timeframe{Name: "60minute", Duration: time.Hour}
	Day       = Timeframe{Name: "day", Duration: 24 * time.Hour}
)

// All supported timeframes, shortest first.
var All = []Timeframe{Minute, Minute5, Minute15, Minute30, Minute60, Day}

var registry = make(map[string]Timeframe)

func init() {
	for _, tf := range All {
		registry[tf.Name] = tf
	}
}

// Get returns a timeframe by name.
func Get(name string) (Timeframe, error) {
	tf, exists := registry[name]
	if !exists {
		return Timeframe{}, fmt.Errorf("unsupported timeframe: %s", name)
	}
	return tf, nil
}

// IsValid checks if a timeframe name is supported.
func IsValid(name string) bool {
	_, exists := registry[name]
	return exists
}

// Names returns all supported timeframe names.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, tf := range All {
		names = append(names, tf.Name)
	}
	return names
}
