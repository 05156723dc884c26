// Package queue wraps the Kafka publisher and consumer used for asynchronous
// notification delivery. Offsets are committed only after a message has been
// fully processed, so a crash mid-processing leaves it redelivered.
package queue

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher writes notification payloads to a named topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
	}
}

// Publish sends one message keyed by key.
func (p *Publisher) Publish(ctx context.Context, key string, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Message is a fetched queue message pending acknowledgement.
type Message struct {
	Key   []byte
	Value []byte

	raw kafka.Message
}

// Consumer pulls messages one at a time from a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

// Fetch blocks until the next message is available. The message is not
// acknowledged until Ack is called.
func (c *Consumer) Fetch(ctx context.Context) (*Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	return &Message{Key: msg.Key, Value: msg.Value, raw: msg}, nil
}

// Ack commits the message offset, marking it processed.
func (c *Consumer) Ack(ctx context.Context, m *Message) error {
	if err := c.reader.CommitMessages(ctx, m.raw); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
