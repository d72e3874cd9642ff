package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"todo-tracker/internal/config"
	"todo-tracker/internal/models"
	"todo-tracker/pkg/logger"
)

// EnsureTopic creates the command topic with the configured partitions. An
// existing topic is not an error.
func EnsureTopic(ctx context.Context, cfg config.SyncConfig) error {
	if !cfg.KafkaEnabled() {
		return nil
	}
	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
	if err != nil {
		return fmt.Errorf("kafka dial %s: %w", cfg.KafkaBrokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller lookup: %w", err)
	}
	ctrlConn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("kafka controller dial: %w", err)
	}
	defer ctrlConn.Close()

	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka create topic %s: %w", cfg.KafkaTopic, err)
	}
	logger.Debug(ctx, "Kafka topic ensured", "topic", cfg.KafkaTopic, "partitions", cfg.KafkaPartitions)
	return nil
}

// Producer publishes todo commands to the inbox topic.
type Producer struct {
	writer *kafka.Writer
	now    func() time.Time
}

// NewProducer returns a synchronous producer so callers learn about delivery
// failures before they exit.
func NewProducer(cfg config.SyncConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

// Publish stamps cmd with an event id and request time when missing and
// writes it keyed by action.
func (p *Producer) Publish(ctx context.Context, cmd *models.TodoCommand) error {
	if cmd.EventID == "" {
		cmd.EventID = uuid.New().String()
	}
	if cmd.RequestedAt.IsZero() {
		cmd.RequestedAt = p.now().UTC()
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding todo command: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(cmd.Action),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing todo command: %w", err)
	}
	logger.Info(ctx, "Todo command queued", "event_id", cmd.EventID, "action", cmd.Action)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
