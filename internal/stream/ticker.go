package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/pkg/errors"
	"github.com/paperkite/paperkite/pkg/logger"
)

// TickerConfig holds the upstream feed connection settings.
type TickerConfig struct {
	URL                 string        `env:"URL"`
	ReadTimeout         time.Duration `env:"READ_TIMEOUT" envDefault:"60s"`
	PingInterval        time.Duration `env:"PING_INTERVAL" envDefault:"20s"`
	ReconnectMaxRetries int           `env:"RECONNECT_MAX_RETRIES" envDefault:"5"`
	ReconnectBackoff    time.Duration `env:"RECONNECT_BACKOFF" envDefault:"2s"`
}

// Handler receives each raw tick frame in arrival order.
type Handler func(tick.Raw)

// TickerClient maintains a websocket subscription to the upstream tick
// feed and hands every JSON frame to a handler. Dropped connections are
// redialed with linear backoff; frames that fail to decode are skipped.
type TickerClient struct {
	log    logger.Interface
	config TickerConfig
}

// NewTickerClient creates a ticker client for the configured feed.
func NewTickerClient(log logger.Interface, config TickerConfig) *TickerClient {
	return &TickerClient{log: log, config: config}
}

// Run consumes the feed until the context is cancelled or the redial
// budget is exhausted. A successful read resets the retry counter.
func (c *TickerClient) Run(ctx context.Context, handler Handler) error {
	retries := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := c.dial(ctx)
		if err != nil {
			retries++
			if retries > c.config.ReconnectMaxRetries {
				c.log.Error(err, logger.NewField("url", c.config.URL))
				return errors.NewDomainError("tick feed unreachable after retries", errors.StreamConnectionError, "url")
			}

			c.log.Warn("tick feed dial failed, retrying",
				logger.NewField("attempt", retries),
				logger.NewField("error", err.Error()),
			)
			if !sleepCtx(ctx, time.Duration(retries)*c.config.ReconnectBackoff) {
				return nil
			}
			continue
		}

		c.log.Info("tick feed connected", logger.NewField("url", c.config.URL))
		retries = 0

		err = c.readLoop(ctx, conn, handler)
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("tick feed disconnected", logger.NewField("error", err.Error()))
	}
}

func (c *TickerClient) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.config.URL, nil)
	return conn, err
}

func (c *TickerClient) readLoop(ctx context.Context, conn *websocket.Conn, handler Handler) error {
	conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(ctx, conn, stopPing)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		var raw tick.Raw
		if err := json.Unmarshal(payload, &raw); err != nil {
			c.log.Warn("tick frame is not valid JSON, skipping", logger.NewField("error", err.Error()))
			continue
		}
		handler(raw)
	}
}

func (c *TickerClient) pingLoop(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
