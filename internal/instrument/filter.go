package instrument

import (
	"context"
	"strings"

	"github.com/paperkite/paperkite/internal/broker/kite"
)

// Status summarizes what is cached for one exchange.
type Status struct {
	Exchange string `json:"exchange"`
	Count    int64  `json:"count"`
	Ready    bool   `json:"ready"`
}

// FilterOptionChain keeps only the option contracts (CE/PE) of the given
// underlying name. The dump carries every segment of the exchange; the
// simulator only ever quotes one underlying's chain.
func FilterOptionChain(instruments []kite.Instrument, underlying string) []kite.Instrument {
	out := make([]kite.Instrument, 0, len(instruments))
	for _, instrument := range instruments {
		if !strings.EqualFold(instrument.Name, underlying) {
			continue
		}
		if instrument.InstrumentType != "CE" && instrument.InstrumentType != "PE" {
			continue
		}
		out = append(out, instrument)
	}
	return out
}

// Status reports how many instruments are cached for an exchange.
func (c *Cache) Status(ctx context.Context, exchange string) (Status, error) {
	raw, err := c.client.HGetAll(ctx, c.key(exchange))
	if err != nil {
		return Status{Exchange: exchange}, err
	}
	return Status{
		Exchange: exchange,
		Count:    int64(len(raw)),
		Ready:    len(raw) > 0,
	}, nil
}
