// Package consumer reads raw ticks from a Kafka topic. It is the
// alternative ingress to the websocket feed, for deployments where the
// broker ticks are already relayed through a message bus.
package consumer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/paperkite/paperkite/internal/domain/tick"
	"github.com/paperkite/paperkite/pkg/config"
	"github.com/paperkite/paperkite/pkg/logger"
)

// Handler receives each decoded tick in topic order.
type Handler func(tick.Raw)

// TickConsumer is the consumer for the raw tick topic.
type TickConsumer struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface

	handler Handler
	msgChan chan kafka.Message
}

// NewTickConsumer creates a new TickConsumer.
func NewTickConsumer(config config.TickKafkaConfig, logger logger.Interface, handler Handler) *TickConsumer {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		GroupID:     config.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &TickConsumer{
		kafkaReader: kafkaReader,
		logger:      logger,
		handler:     handler,
		msgChan:     make(chan kafka.Message),
	}
}

// Start reads from the topic until the context is cancelled.
func (c *TickConsumer) Start(ctx context.Context) {
	c.logger.Info("starting tick consumer", logger.Field{
		Key:   "action",
		Value: "tick_consumer_start",
	})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("context done", logger.Field{
				Key:   "action",
				Value: "tick_consumer_stop",
			})
			close(c.msgChan)
			return
		default:
			msg, err := c.kafkaReader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					close(c.msgChan)
					return
				}
				c.logger.Error(err, logger.Field{
					Key:   "action",
					Value: "read_message",
				})
				continue
			}

			c.msgChan <- msg
		}
	}
}

// Stop stops the TickConsumer.
func (c *TickConsumer) Stop() error {
	c.logger.Info("stopping tick consumer", logger.Field{
		Key:   "action",
		Value: "tick_consumer_stop",
	})
	return c.kafkaReader.Close()
}

// Subscribe drains buffered messages through the handler and commits
// each offset. Undecodable payloads are committed and skipped so a
// poison message cannot wedge the group.
func (c *TickConsumer) Subscribe(ctx context.Context) {
	c.logger.Info("subscribing to tick consumer", logger.Field{
		Key:   "action",
		Value: "tick_consumer_subscribe",
	})

	for msg := range c.msgChan {
		var raw tick.Raw
		if err := json.Unmarshal(msg.Value, &raw); err != nil {
			c.logger.Error(err, logger.Field{
				Key:   "action",
				Value: "unmarshal_tick",
			})
		} else {
			c.handler(raw)
		}

		if err := c.kafkaReader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error(err, logger.Field{
				Key:   "action",
				Value: "commit_message",
			})
		}
	}
}
