package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded search event.
type EventHandler func(ctx context.Context, event SearchEvent) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads search events until the context is canceled or the
// handler fails. Payloads that do not decode are logged and skipped so
// one malformed message cannot wedge the consumer group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := dispatch(ctx, msg, handler); err != nil {
			return err
		}
	}
}

func dispatch(ctx context.Context, msg kafka.Message, handler EventHandler) error {
	var event SearchEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("skip malformed search event at offset %d: %v", msg.Offset, err)
		return nil
	}
	return handler(ctx, event)
}
