// Package instrument caches the broker instrument dump in Redis so token
// lookups (trading symbol to instrument token) do not re-download the
// multi-megabyte CSV on every session.
package instrument

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paperkite/paperkite/internal/broker/kite"
	"github.com/paperkite/paperkite/pkg/errors"
	"github.com/paperkite/paperkite/pkg/logger"
	"github.com/paperkite/paperkite/pkg/redis"
)

// Cache stores instrument metadata as one Redis hash per exchange,
// keyed by trading symbol.
type Cache struct {
	log    logger.Interface
	client redis.Client
	prefix string
}

// NewCache creates an instrument cache on the given Redis client.
func NewCache(log logger.Interface, client redis.Client, prefix string) *Cache {
	return &Cache{
		log:    log,
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(exchange string) string {
	return fmt.Sprintf("%sinstruments:%s", c.prefix, exchange)
}

// Populate writes an instrument dump into the exchange's hash, replacing
// any previous dump for that exchange.
func (c *Cache) Populate(ctx context.Context, exchange string, instruments []kite.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}

	key := c.key(exchange)
	if _, err := c.client.Del(ctx, key); err != nil {
		return err
	}

	values := make(map[string]any, len(instruments))
	for _, instrument := range instruments {
		encoded, err := json.Marshal(instrument)
		if err != nil {
			return errors.NewDomainError("encoding instrument: "+err.Error(), errors.RedisHSetError, instrument.TradingSymbol)
		}
		values[instrument.TradingSymbol] = string(encoded)
	}

	if _, err := c.client.HSet(ctx, key, values); err != nil {
		return err
	}

	c.log.Info("instrument cache populated",
		logger.NewField("exchange", exchange),
		logger.NewField("count", len(instruments)),
	)
	return nil
}

// Lookup fetches one instrument by trading symbol. The second return is
// false when the symbol is not cached.
func (c *Cache) Lookup(ctx context.Context, exchange, tradingSymbol string) (*kite.Instrument, bool, error) {
	raw, err := c.client.HGet(ctx, c.key(exchange), tradingSymbol)
	if err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}

	var instrument kite.Instrument
	if err := json.Unmarshal([]byte(raw), &instrument); err != nil {
		return nil, false, errors.NewDomainError("decoding instrument: "+err.Error(), errors.RedisHGetError, tradingSymbol)
	}
	return &instrument, true, nil
}

// All returns every cached instrument for an exchange.
func (c *Cache) All(ctx context.Context, exchange string) ([]kite.Instrument, error) {
	raw, err := c.client.HGetAll(ctx, c.key(exchange))
	if err != nil {
		return nil, err
	}

	out := make([]kite.Instrument, 0, len(raw))
	for symbol, encoded := range raw {
		var instrument kite.Instrument
		if err := json.Unmarshal([]byte(encoded), &instrument); err != nil {
			c.log.Warn("skipping undecodable cached instrument",
				logger.NewField("symbol", symbol),
				logger.NewField("error", err.Error()),
			)
			continue
		}
		out = append(out, instrument)
	}
	return out, nil
}
