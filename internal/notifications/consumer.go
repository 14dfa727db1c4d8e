package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"skybook/internal/bookings"
	"skybook/pkg/logger"

	"github.com/IBM/sarama"
)

// ConsumerConfig contains configuration for the booking event consumer group
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

// DefaultConsumerConfig returns a default consumer configuration
func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          brokers,
		GroupID:          groupID,
		Topics:           []string{topic},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

// KafkaBookingConsumer consumes booking lifecycle events and hands them to
// the notifier.
type KafkaBookingConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	notifier      *Notifier
	cancel        context.CancelFunc
	log           *logger.Logger
}

// NewKafkaBookingConsumer creates a new booking event consumer group
func NewKafkaBookingConsumer(config *ConsumerConfig, notifier *Notifier) (*KafkaBookingConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaBookingConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		notifier:      notifier,
		log:           logger.GetDefault(),
	}, nil
}

// Start begins consuming in a background goroutine until Stop or context
// cancellation.
func (c *KafkaBookingConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.log.Error("booking consumer error", slog.Any("error", err))
		}
	}()

	go func() {
		handler := &bookingEventHandler{notifier: c.notifier, log: c.log}
		for {
			if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
				c.log.Error("booking consumer session failed", slog.Any("error", err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

// Stop shuts the consumer group down.
func (c *KafkaBookingConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.consumerGroup.Close()
}

type bookingEventHandler struct {
	notifier *Notifier
	log      *logger.Logger
}

func (h *bookingEventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *bookingEventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *bookingEventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event bookings.BookingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			// Malformed messages are skipped, not retried.
			h.log.Warn("skipping malformed booking event",
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.notifier.Notify(session.Context(), event); err != nil {
			h.log.Error("booking notification failed",
				slog.String("booking_id", event.BookingID),
				slog.Any("error", err),
			)
		}
		session.MarkMessage(message, "")
	}
	return nil
}
