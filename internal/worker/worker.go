package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"todo-tracker/internal/config"
	"todo-tracker/internal/models"
	"todo-tracker/pkg/logger"
)

// Consumer reads todo commands from the inbox topic and applies them.
type Consumer struct {
	reader *kafka.Reader
	store  Store
}

func NewConsumer(cfg config.SyncConfig, store Store) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.KafkaBrokers,
			Topic:       cfg.KafkaTopic,
			GroupID:     cfg.KafkaGroup,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     500 * time.Millisecond,
			StartOffset: kafka.FirstOffset,
		}),
		store: store,
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	logger.Info(ctx, "Kafka consumer started", "topic", c.reader.Config().Topic)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		c.handle(ctx, msg)
	}
}

// joinTimeout bounds the first fetch of a drain, which also waits for the
// consumer group join and partition assignment.
const joinTimeout = 30 * time.Second

func fetchTimeout(first bool, idle time.Duration) time.Duration {
	if first {
		return max(idle, joinTimeout)
	}
	return idle
}

// Drain consumes until no message arrives for idle, then returns how many
// commands were applied.
func (c *Consumer) Drain(ctx context.Context, idle time.Duration) (int, error) {
	applied := 0
	for first := true; ; first = false {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout(first, idle))
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return applied, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return applied, nil
			}
			return applied, err
		}
		if c.handle(ctx, msg) {
			applied++
		}
	}
}

// handle applies one message and commits it either way so a poison message
// never blocks the partition.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	ok := true
	var cmd models.TodoCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		logger.Error(ctx, "Worker decode failed", "error", err, "payload", string(msg.Value))
		ok = false
	} else if err := Apply(ctx, c.store, cmd); err != nil {
		logger.Error(ctx, "Worker apply failed", "error", err, "event_id", cmd.EventID, "action", cmd.Action)
		ok = false
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Worker commit failed", "error", err)
	}
	return ok
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
